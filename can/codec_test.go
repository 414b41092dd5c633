package can

import (
	"math"
	"testing"

	einride "go.einride.tech/can"
)

func testMap() *Map {
	fd := &FrameDef{
		ID:        0x200,
		Name:      "ETC_THROTTLE",
		DLC:       8,
		Direction: DirectionTX,
		CycleMS:   10,
		Signals: []SignalDef{
			{Name: "he1_travel", StartBit: 0, BitLength: 16, Factor: 0.0000152590, Min: 0, Max: 1},
			{Name: "he2_travel", StartBit: 16, BitLength: 16, Factor: 0.0000152590, Min: 0, Max: 1},
			{Name: "pedal_travel", StartBit: 32, BitLength: 16, Factor: 0.0000152590, Min: 0, Max: 1},
			{Name: "torque_demand", StartBit: 48, BitLength: 16, Factor: 1, Min: 0, Max: 100},
		},
	}
	return &Map{
		ByID:   map[uint32]*FrameDef{fd.ID: fd},
		ByName: map[string]*FrameDef{fd.Name: fd},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := testMap()

	f, err := m.EncodeFrame("ETC_THROTTLE", map[string]float64{
		"he1_travel":    0.5,
		"he2_travel":    0.75,
		"pedal_travel":  0.625,
		"torque_demand": 42,
	})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if f.ID != 0x200 || f.Length != 8 {
		t.Fatalf("frame header = {ID:0x%X, Length:%d}, want {0x200, 8}", f.ID, f.Length)
	}

	decoded, err := m.DecodeFrame(f)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}

	check := func(name string, want float64) {
		got := decoded[name]
		if math.Abs(got-want) > 1e-3 {
			t.Errorf("%s = %v, want ~%v", name, got, want)
		}
	}
	check("he1_travel", 0.5)
	check("he2_travel", 0.75)
	check("pedal_travel", 0.625)
	check("torque_demand", 42)
}

func TestEncodeFrameClampsOutOfRange(t *testing.T) {
	m := testMap()
	f, err := m.EncodeFrame("ETC_THROTTLE", map[string]float64{
		"torque_demand": 1000,
	})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	decoded, err := m.DecodeFrame(f)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if decoded["torque_demand"] != 100 {
		t.Errorf("torque_demand = %v, want clamped to 100", decoded["torque_demand"])
	}
}

func TestEncodeFrameUnknownName(t *testing.T) {
	m := testMap()
	if _, err := m.EncodeFrame("NO_SUCH_FRAME", nil); err == nil {
		t.Fatal("expected error for unknown frame name")
	}
}

func TestDecodeFrameUnknownID(t *testing.T) {
	m := testMap()
	f := einride.Frame{ID: 0xFFF, Length: 8}
	if _, err := m.DecodeFrame(f); err == nil {
		t.Fatal("expected error for unknown frame id")
	}
}

func bigEndianMap() *Map {
	fd := &FrameDef{
		ID:        0x300,
		Name:      "BE_FRAME",
		DLC:       8,
		Direction: DirectionTX,
		Signals: []SignalDef{
			{Name: "a", StartBit: 0, BitLength: 8, Endianness: "big", Factor: 1, Min: 0, Max: 255},
			{Name: "b", StartBit: 8, BitLength: 16, Endianness: "big", Factor: 1, Min: 0, Max: 65535},
		},
	}
	return &Map{
		ByID:   map[uint32]*FrameDef{fd.ID: fd},
		ByName: map[string]*FrameDef{fd.Name: fd},
	}
}

func TestEncodeDecodeBigEndianRoundTrip(t *testing.T) {
	m := bigEndianMap()

	f, err := m.EncodeFrame("BE_FRAME", map[string]float64{"a": 0xAB, "b": 0x1234})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if f.Data[0] != 0xAB || f.Data[1] != 0x12 || f.Data[2] != 0x34 {
		t.Fatalf("Data[0:3] = %02X %02X %02X, want AB 12 34", f.Data[0], f.Data[1], f.Data[2])
	}

	decoded, err := m.DecodeFrame(f)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if decoded["a"] != 0xAB {
		t.Errorf("a = %v, want %v", decoded["a"], float64(0xAB))
	}
	if decoded["b"] != 0x1234 {
		t.Errorf("b = %v, want %v", decoded["b"], float64(0x1234))
	}
}
