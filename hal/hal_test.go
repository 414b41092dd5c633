package hal

import "testing"

func TestMustAnalogReaderPanicsWhenUnregistered(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered analog reader")
		}
	}()
	MustAnalogReader("no-such-reader")
}

func TestMustDigitalOutPanicsWhenUnregistered(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered digital output")
		}
	}()
	MustDigitalOut("no-such-output")
}

func TestSetAndMustAnalogReaderRoundTrip(t *testing.T) {
	SetAnalogReader("test-he", NewSimAnalogReader())
	r := MustAnalogReader("test-he")
	sim, ok := r.(*SimAnalogReader)
	if !ok {
		t.Fatalf("MustAnalogReader returned %T, want *SimAnalogReader", r)
	}
	sim.Set(0.42)
	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != 0.42 {
		t.Errorf("Read() = %v, want 0.42", got)
	}
}

func TestSimDigitalOut(t *testing.T) {
	d := NewSimDigitalOut()
	if d.High() {
		t.Fatal("new SimDigitalOut should start low")
	}
	d.Set(true)
	if !d.High() {
		t.Fatal("Set(true) did not take effect")
	}
	d.Set(false)
	if d.High() {
		t.Fatal("Set(false) did not take effect")
	}
}
