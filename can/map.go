// Package can owns everything the ETC core is deliberately blind to: frame
// IDs, signal bit layouts, transport selection, and the periodic-transmit /
// event-dispatch loop that drives an etc.Controller from the vehicle bus.
package can

import "sort"

// SignalDef describes one physical signal packed into a frame's payload.
type SignalDef struct {
	Name       string
	StartBit   int
	BitLength  int
	Signed     bool
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Default    float64
	Unit       string
	Comment    string
	Endianness string // "little" (Intel) or "big" (Motorola); LoadMap defaults empty to "little"
}

// Direction is which way a frame crosses the bus relative to this firmware.
type Direction string

const (
	DirectionTX Direction = "tx"
	DirectionRX Direction = "rx"
)

// FrameDef describes one CAN frame: its identity, its cycle time if it is
// periodically transmitted, and the signals packed into its payload.
type FrameDef struct {
	ID        uint32
	Name      string
	DLC       int
	Direction Direction
	CycleMS   int
	Signals   []SignalDef
}

// Map is a parsed frame/signal dictionary, indexed for lookup by both ID and
// name.
type Map struct {
	ByID   map[uint32]*FrameDef
	ByName map[string]*FrameDef
}

// FrameNames returns every frame name in the map, sorted.
func (m *Map) FrameNames() []string {
	out := make([]string, 0, len(m.ByName))
	for k := range m.ByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TXFrames returns every frame this firmware transmits, sorted by name.
func (m *Map) TXFrames() []*FrameDef {
	return m.framesByDirection(DirectionTX)
}

// RXFrames returns every frame this firmware receives, sorted by name.
func (m *Map) RXFrames() []*FrameDef {
	return m.framesByDirection(DirectionRX)
}

func (m *Map) framesByDirection(dir Direction) []*FrameDef {
	var out []*FrameDef
	for _, name := range m.FrameNames() {
		fd := m.ByName[name]
		if fd.Direction == dir {
			out = append(out, fd)
		}
	}
	return out
}
