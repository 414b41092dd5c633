//go:build !tinygo

package can

import (
	"context"
	"fmt"
	"net"

	einride "go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

// Transport is the minimal send/receive/close surface Wrapper needs from a
// CAN bus connection, independent of which physical layer backs it.
type Transport interface {
	Send(ctx context.Context, f einride.Frame) error
	Recv(ctx context.Context) (einride.Frame, error)
	Close() error
}

// SocketCANTransport drives a SocketCAN interface (vcan0 in simulation,
// can0 on real hardware wired through a USB-CAN adapter).
type SocketCANTransport struct {
	conn net.Conn
	tx   *socketcan.Transmitter
	rx   *socketcan.Receiver
}

// DialSocketCAN opens ifname (e.g. "can0" or "vcan0") for both transmit and
// receive.
func DialSocketCAN(ctx context.Context, ifname string) (*SocketCANTransport, error) {
	conn, err := socketcan.DialContext(ctx, "can", ifname)
	if err != nil {
		return nil, fmt.Errorf("can: socketcan dial %s: %w", ifname, err)
	}
	return &SocketCANTransport{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
		rx:   socketcan.NewReceiver(conn),
	}, nil
}

func (t *SocketCANTransport) Send(ctx context.Context, f einride.Frame) error {
	return t.tx.TransmitFrame(ctx, f)
}

// Recv blocks until a frame arrives or ctx is canceled. socketcan.Receiver
// itself has no context-aware read, so the blocking call runs on its own
// goroutine and is abandoned (not joined) on cancellation.
func (t *SocketCANTransport) Recv(ctx context.Context) (einride.Frame, error) {
	type result struct {
		frame einride.Frame
		err   error
	}
	done := make(chan result, 1)
	go func() {
		if t.rx.Receive() {
			done <- result{frame: t.rx.Frame()}
			return
		}
		done <- result{err: fmt.Errorf("can: receive failed")}
	}()

	select {
	case <-ctx.Done():
		return einride.Frame{}, ctx.Err()
	case r := <-done:
		return r.frame, r.err
	}
}

func (t *SocketCANTransport) Close() error {
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
