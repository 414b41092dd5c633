//go:build tinygo

package hal

import "machine"

// TinygoAnalogReader reads a machine.ADC and normalizes its 16-bit sample to
// [0, 1].
type TinygoAnalogReader struct {
	adc machine.ADC
}

// NewTinygoAnalogReader configures pin as an ADC input and returns a reader
// for it.
func NewTinygoAnalogReader(pin machine.Pin) *TinygoAnalogReader {
	adc := machine.ADC{Pin: pin}
	adc.Configure(machine.ADCConfig{})
	return &TinygoAnalogReader{adc: adc}
}

func (r *TinygoAnalogReader) Read() (float64, error) {
	return float64(r.adc.Get()) / float64(0xffff), nil
}

// TinygoDigitalOut drives a machine.Pin configured as a push-pull output.
type TinygoDigitalOut struct {
	pin machine.Pin
}

// NewTinygoDigitalOut configures pin as an output and returns a driver for
// it.
func NewTinygoDigitalOut(pin machine.Pin) *TinygoDigitalOut {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &TinygoDigitalOut{pin: pin}
}

func (d *TinygoDigitalOut) Set(high bool) {
	d.pin.Set(high)
}
