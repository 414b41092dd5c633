// Package hal decouples the ETC core from the two pieces of board-specific
// hardware it touches: the pair of analog Hall-effect pedal sensors and the
// RTDS digital output pin. Board bring-up, clock configuration, and pin
// assignment are mechanical and out of scope; this package only defines the
// seam a target-specific driver plugs into, following the
// register-a-driver-singleton pattern used throughout this firmware family
// for peripherals that vary by target (ADC channels, PWM channels, ...).
package hal

import "fmt"

// AnalogReader reads a single normalized analog input in [0, 1].
type AnalogReader interface {
	Read() (float64, error)
}

// DigitalOut drives a single digital output pin.
type DigitalOut interface {
	Set(high bool)
}

var (
	analogReaders = map[string]AnalogReader{}
	digitalOuts   = map[string]DigitalOut{}
)

// SetAnalogReader registers the driver for a named analog input (e.g. "he1",
// "he2"). Target-specific setup code calls this once during init.
func SetAnalogReader(name string, r AnalogReader) {
	analogReaders[name] = r
}

// SetDigitalOut registers the driver for a named digital output (e.g.
// "rtds").
func SetDigitalOut(name string, d DigitalOut) {
	digitalOuts[name] = d
}

// MustAnalogReader returns the registered analog reader for name, panicking
// if none has been registered. A missing driver at this point means target
// setup code never ran, not a runtime condition the core can recover from.
func MustAnalogReader(name string) AnalogReader {
	r, ok := analogReaders[name]
	if !ok {
		panic(fmt.Sprintf("hal: no analog reader registered for %q", name))
	}
	return r
}

// MustDigitalOut returns the registered digital output for name, panicking
// if none has been registered.
func MustDigitalOut(name string) DigitalOut {
	d, ok := digitalOuts[name]
	if !ok {
		panic(fmt.Sprintf("hal: no digital output registered for %q", name))
	}
	return d
}
