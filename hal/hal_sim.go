//go:build !tinygo

package hal

import (
	"math"
	"sync/atomic"
)

// SimAnalogReader is an AnalogReader whose value the console can set at
// runtime, used when this firmware is built for a desktop host instead of a
// target board.
type SimAnalogReader struct {
	bits atomic.Uint64
}

// NewSimAnalogReader returns a SimAnalogReader initialized to 0.
func NewSimAnalogReader() *SimAnalogReader {
	return &SimAnalogReader{}
}

func (r *SimAnalogReader) Read() (float64, error) {
	return math.Float64frombits(r.bits.Load()), nil
}

// Set stores the value the next Read will return.
func (r *SimAnalogReader) Set(v float64) {
	r.bits.Store(math.Float64bits(v))
}

// SimDigitalOut is a DigitalOut whose last-written level can be read back
// with High, used on desktop builds in place of a real GPIO pin.
type SimDigitalOut struct {
	high atomic.Bool
}

// NewSimDigitalOut returns a SimDigitalOut initialized low.
func NewSimDigitalOut() *SimDigitalOut {
	return &SimDigitalOut{}
}

func (d *SimDigitalOut) Set(high bool) {
	d.high.Store(high)
}

// High reports the level last written by Set.
func (d *SimDigitalOut) High() bool {
	return d.high.Load()
}
