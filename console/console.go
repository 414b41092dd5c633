// Package console implements the firmware's line-buffered serial REPL: a
// byte-at-a-time reader with backspace handling feeding a small command
// table (see commands.go).
package console

import "io"

const inputBufferSize = 256

const (
	delete = "\b \b"
	ret    = "\n\r"
)

// Console is a non-blocking, byte-at-a-time line editor over a serial
// connection. It mirrors the source firmware's Read/Write contract:
// Read never blocks waiting for input, and a submitted line is retrieved
// once with GetInput.
type Console struct {
	rw             io.ReadWriter
	inputBuffer    []byte
	charactersRead int
	debugEnabled   bool
}

// New wraps rw (typically a go.bug.st/serial port, or any io.ReadWriter in
// tests) as a Console.
func New(rw io.ReadWriter) *Console {
	return &Console{
		rw:          rw,
		inputBuffer: make([]byte, 0, inputBufferSize),
	}
}

// Read consumes at most one byte from the underlying connection. It returns
// true when that byte completed a line (CR or LF), at which point GetInput
// retrieves it. A read that yields no data (nothing waiting) is not an
// error: it simply returns false.
func (c *Console) Read() bool {
	buf := [1]byte{}
	n, err := c.rw.Read(buf[:])
	if n == 0 || err != nil {
		return false
	}
	ch := buf[0]

	switch {
	case ch == '\n' || ch == '\r':
		c.rw.Write([]byte(ret))
		return true

	case ch == '\b' || ch == 0x7f:
		if c.charactersRead > 0 {
			c.rw.Write([]byte(delete))
			c.charactersRead--
			c.inputBuffer = c.inputBuffer[:c.charactersRead]
		}
		return false

	default:
		if c.charactersRead < inputBufferSize-1 {
			c.rw.Write(buf[:])
			c.inputBuffer = append(c.inputBuffer, ch)
			c.charactersRead++
		}
		return false
	}
}

// Write sends message, followed by "\n\r" unless addNewline is false.
func (c *Console) Write(message string, addNewline bool) {
	c.rw.Write([]byte(message))
	if addNewline {
		c.rw.Write([]byte(ret))
	}
}

// WriteDebug is Write gated on the debug flag toggled by ToggleDebug.
func (c *Console) WriteDebug(message string, addNewline bool) {
	if c.debugEnabled {
		c.Write(message, addNewline)
	}
}

// ToggleDebug flips the verbose-output flag.
func (c *Console) ToggleDebug() {
	c.debugEnabled = !c.debugEnabled
}

// IsDebugEnabled reports the verbose-output flag.
func (c *Console) IsDebugEnabled() bool {
	return c.debugEnabled
}

// GetInput returns the line assembled since the last call and resets the
// buffer for the next one.
func (c *Console) GetInput() string {
	line := string(c.inputBuffer)
	c.inputBuffer = c.inputBuffer[:0]
	c.charactersRead = 0
	return line
}
