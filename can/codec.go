package can

import (
	"fmt"
	"math"

	einride "go.einride.tech/can"
)

// EncodeFrame packs values (keyed by signal name, defaulting to each
// signal's Default when absent) into the wire payload for frameName and
// returns it as an einride can.Frame ready to transmit.
func (m *Map) EncodeFrame(frameName string, values map[string]float64) (einride.Frame, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return einride.Frame{}, err
	}
	if fd.DLC <= 0 || fd.DLC > 8 {
		return einride.Frame{}, fmt.Errorf("can: frame %s has invalid DLC %d", fd.Name, fd.DLC)
	}

	var data [8]byte
	for _, s := range fd.Signals {
		v, ok := values[s.Name]
		if !ok {
			v = s.Default
		}
		v = clamp(v, s.Min, s.Max)

		raw := int64(math.Round((v - s.Offset) / s.Factor))
		raw = clampRaw(raw, s.BitLength, s.Signed)
		u := rawToUnsigned(raw, s.BitLength)

		if s.Endianness == "big" {
			setBitsBE(data[:], s.StartBit, s.BitLength, u)
		} else {
			setBitsLE(data[:], s.StartBit, s.BitLength, u)
		}
	}

	var f einride.Frame
	f.ID = fd.ID
	f.Length = uint8(fd.DLC)
	copy(f.Data[:fd.DLC], data[:fd.DLC])
	return f, nil
}

// DecodeFrame unpacks f's payload into a map of signal name to physical
// value, using the frame definition registered under f.ID.
func (m *Map) DecodeFrame(f einride.Frame) (map[string]float64, error) {
	fd, err := m.FrameByID(f.ID)
	if err != nil {
		return nil, err
	}
	if int(f.Length) < fd.DLC {
		return nil, fmt.Errorf("can: frame 0x%X expects DLC %d, got %d", f.ID, fd.DLC, f.Length)
	}

	out := make(map[string]float64, len(fd.Signals))
	for _, s := range fd.Signals {
		var u uint64
		if s.Endianness == "big" {
			u = getBitsBE(f.Data[:fd.DLC], s.StartBit, s.BitLength)
		} else {
			u = getBitsLE(f.Data[:fd.DLC], s.StartBit, s.BitLength)
		}
		raw := unsignedToRawInt64(u, s.BitLength, s.Signed)
		out[s.Name] = float64(raw)*s.Factor + s.Offset
	}
	return out, nil
}

// getBitsLE and setBitsLE implement Intel/little-endian bit numbering: bit 0
// is the LSB of data[0], and a signal's bits run upward through the payload
// least-significant-first, the same packing CAN tooling calls "Intel".
func getBitsLE(data []byte, startBit, bitLen int) uint64 {
	if bitLen <= 0 || bitLen > 64 {
		return 0
	}
	var payload uint64
	for i := 0; i < len(data) && i < 8; i++ {
		payload |= uint64(data[i]) << (8 * i)
	}
	mask := uint64((1 << bitLen) - 1)
	return (payload >> startBit) & mask
}

func setBitsLE(data []byte, startBit, bitLen int, value uint64) {
	if bitLen <= 0 || bitLen > 64 {
		return
	}
	var payload uint64
	for i := 0; i < len(data) && i < 8; i++ {
		payload |= uint64(data[i]) << (8 * i)
	}
	mask := uint64((1 << bitLen) - 1)
	payload &^= mask << startBit
	payload |= (value & mask) << startBit
	for i := 0; i < len(data) && i < 8; i++ {
		data[i] = byte(payload >> (8 * i))
	}
}

// getBitsBE and setBitsBE implement Motorola/big-endian bit numbering: bit 0
// is the MSB of data[0], and a signal's bits run toward the LSB of the frame
// contiguously across byte boundaries, most-significant-bit first.
func getBitsBE(data []byte, startBit, bitLen int) uint64 {
	if bitLen <= 0 || bitLen > 64 {
		return 0
	}
	var v uint64
	for i := 0; i < bitLen; i++ {
		bitPos := startBit + i
		byteIdx := bitPos / 8
		if byteIdx >= len(data) {
			break
		}
		bitInByte := 7 - (bitPos % 8)
		bit := (uint64(data[byteIdx]) >> bitInByte) & 1
		v = (v << 1) | bit
	}
	return v
}

func setBitsBE(data []byte, startBit, bitLen int, value uint64) {
	if bitLen <= 0 || bitLen > 64 {
		return
	}
	for i := 0; i < bitLen; i++ {
		bitPos := startBit + i
		byteIdx := bitPos / 8
		if byteIdx >= len(data) {
			break
		}
		bitInByte := 7 - (bitPos % 8)
		bit := (value >> (bitLen - 1 - i)) & 1
		if bit != 0 {
			data[byteIdx] |= 1 << bitInByte
		} else {
			data[byteIdx] &^= 1 << bitInByte
		}
	}
}

func unsignedToRawInt64(u uint64, bitLen int, signed bool) int64 {
	if !signed {
		return int64(u)
	}
	signBit := uint64(1) << (bitLen - 1)
	if u&signBit == 0 {
		return int64(u)
	}
	fullMask := uint64((1 << bitLen) - 1)
	twos := (^u + 1) & fullMask
	return -int64(twos)
}

func rawToUnsigned(raw int64, bitLen int) uint64 {
	if raw >= 0 {
		return uint64(raw)
	}
	fullMask := uint64((1 << bitLen) - 1)
	u := uint64(-raw)
	twos := (^u + 1) & fullMask
	return twos
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampRaw(raw int64, bitLen int, signed bool) int64 {
	if bitLen <= 0 || bitLen > 63 {
		return raw
	}
	if !signed {
		max := int64((1 << bitLen) - 1)
		if raw < 0 {
			return 0
		}
		if raw > max {
			return max
		}
		return raw
	}
	min := -int64(1 << (bitLen - 1))
	max := int64((1 << (bitLen - 1)) - 1)
	if raw < min {
		return min
	}
	if raw > max {
		return max
	}
	return raw
}
