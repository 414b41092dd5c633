package console

import (
	"bytes"
	"strings"
	"testing"

	"etc-firmware/etc"
)

// fakeSerial is an io.ReadWriter over an in-memory byte queue, standing in
// for a real serial port in tests.
type fakeSerial struct {
	in  *bytes.Buffer
	out bytes.Buffer
}

func newFakeSerial(input string) *fakeSerial {
	return &fakeSerial{in: bytes.NewBufferString(input)}
}

func (f *fakeSerial) Read(p []byte) (int, error) {
	return f.in.Read(p)
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	return f.out.Write(p)
}

func feedLine(t *testing.T, c *Console, line string) string {
	t.Helper()
	for {
		done := c.Read()
		if done {
			return c.GetInput()
		}
	}
}

func TestConsoleAssemblesLine(t *testing.T) {
	serial := newFakeSerial("hello\n")
	c := New(serial)
	got := feedLine(t, c, "hello\n")
	if got != "hello" {
		t.Fatalf("GetInput() = %q, want %q", got, "hello")
	}
}

func TestConsoleBackspaceRemovesLastCharacter(t *testing.T) {
	serial := newFakeSerial("hexlo\b\n")
	c := New(serial)
	got := feedLine(t, c, "hexlo\b\n")
	if got != "hexl" {
		t.Fatalf("GetInput() = %q, want %q", got, "hexl")
	}
}

func TestConsoleBackspaceOnEmptyBufferIsNoOp(t *testing.T) {
	serial := newFakeSerial("\b\bok\n")
	c := New(serial)
	got := feedLine(t, c, "\b\bok\n")
	if got != "ok" {
		t.Fatalf("GetInput() = %q, want %q", got, "ok")
	}
}

func TestConsoleBufferOverflowTruncates(t *testing.T) {
	long := strings.Repeat("x", inputBufferSize+50) + "\n"
	serial := newFakeSerial(long)
	c := New(serial)
	got := feedLine(t, c, long)
	if len(got) != inputBufferSize-1 {
		t.Fatalf("len(GetInput()) = %d, want %d", len(got), inputBufferSize-1)
	}
}

func TestConsoleGetInputResetsBuffer(t *testing.T) {
	serial := newFakeSerial("abc\ndef\n")
	c := New(serial)
	first := feedLine(t, c, "abc\n")
	second := feedLine(t, c, "def\n")
	if first != "abc" || second != "def" {
		t.Fatalf("got %q then %q, want %q then %q", first, second, "abc", "def")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	c := New(newFakeSerial(""))
	d := NewDispatcher(c, etc.New(nil), nil)
	got := d.Dispatch("frobnicate")
	want := "error: unknown command. see 'help' for more information"
	if got != want {
		t.Fatalf("Dispatch(frobnicate) = %q, want %q", got, want)
	}
}

func TestDispatchStartInjectsInterlockConditions(t *testing.T) {
	c := New(newFakeSerial(""))
	ctrl := etc.New(nil)
	d := NewDispatcher(c, ctrl, nil)
	d.Dispatch("start")
	if !ctrl.IsMotorEnabled() {
		t.Fatal("start did not enable the motor after injecting ts_ready and brakes_read")
	}
}

func TestDispatchResetClearsOverride(t *testing.T) {
	c := New(newFakeSerial(""))
	ctrl := etc.New(nil)
	d := NewDispatcher(c, ctrl, nil)
	d.Dispatch("setv 2.5")
	if !d.HardwareOverridden() {
		t.Fatal("setv did not set the override flag")
	}
	d.Dispatch("reset")
	if d.HardwareOverridden() {
		t.Fatal("reset did not clear the override flag")
	}
}
