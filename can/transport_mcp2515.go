//go:build tinygo

package can

import (
	"context"
	"runtime"

	einride "go.einride.tech/can"
	"tinygo.org/x/drivers/mcp2515"
)

// MCP2515Transport drives an MCP2515 CAN controller chip over SPI, for
// builds that target the real board rather than a desktop simulation.
type MCP2515Transport struct {
	dev *mcp2515.Device
}

// NewMCP2515Transport wraps an already-configured mcp2515.Device.
func NewMCP2515Transport(dev *mcp2515.Device) *MCP2515Transport {
	return &MCP2515Transport{dev: dev}
}

func (t *MCP2515Transport) Send(ctx context.Context, f einride.Frame) error {
	return t.dev.Tx(f.ID, f.Length, f.Data[:f.Length])
}

// Recv polls the controller's receive buffer until a frame is ready or ctx
// is canceled. The chip exposes no blocking or interrupt-driven API in this
// driver, so polling with a scheduler yield is the only option.
func (t *MCP2515Transport) Recv(ctx context.Context) (einride.Frame, error) {
	for !t.dev.Received() {
		if err := ctx.Err(); err != nil {
			return einride.Frame{}, err
		}
		runtime.Gosched()
	}
	msg, err := t.dev.Rx()
	if err != nil {
		return einride.Frame{}, err
	}
	var f einride.Frame
	f.ID = msg.ID
	f.Length = uint8(len(msg.Data))
	copy(f.Data[:], msg.Data)
	return f, nil
}

func (t *MCP2515Transport) Close() error {
	return nil
}
