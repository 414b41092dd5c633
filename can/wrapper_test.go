package can

import (
	"context"
	"sync"
	"testing"
	"time"

	einride "go.einride.tech/can"

	"etc-firmware/etc"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent []einride.Frame
	rx   chan einride.Frame
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{rx: make(chan einride.Frame, 8)}
}

func (f *fakeTransport) Send(_ context.Context, frame einride.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeTransport) Recv(ctx context.Context) (einride.Frame, error) {
	select {
	case frame := <-f.rx:
		return frame, nil
	case <-ctx.Done():
		return einride.Frame{}, ctx.Err()
	}
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) sentFrames() []einride.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]einride.Frame, len(f.sent))
	copy(out, f.sent)
	return out
}

func fullMap() *Map {
	m, err := LoadMap("../config/can/can_map.csv")
	if err != nil {
		panic(err)
	}
	return m
}

func TestWrapperTransmitsThrottleFrame(t *testing.T) {
	transport := newFakeTransport()
	m := fullMap()
	ctrl := etc.New(nil)
	ctrl.UpdateStateFromCAN(etc.NewState(etc.WithMotorEnabled(true)))
	ctrl.UpdatePedalTravel(0.4, 0.6)

	w := NewWrapper(transport, m, ctrl, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	found := false
	for _, f := range transport.sentFrames() {
		if f.ID == 0x200 {
			found = true
		}
	}
	if !found {
		t.Fatal("no ETC_THROTTLE frame (0x200) was transmitted within the test window")
	}
}

func TestWrapperAppliesRxFrame(t *testing.T) {
	transport := newFakeTransport()
	m := fullMap()
	ctrl := etc.New(nil)

	f, err := m.EncodeFrame("ETC_RX_CMD", map[string]float64{
		"ts_ready":      1,
		"motor_enabled": 0,
		"motor_forward": 1,
		"cockpit":       1,
		"brakes_read":   0.5,
	})
	if err != nil {
		t.Fatalf("EncodeFrame(ETC_RX_CMD): %v", err)
	}
	transport.rx <- f

	w := NewWrapper(transport, m, ctrl, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	if !ctrl.IsTSReady() {
		t.Error("ts_ready not applied from rx frame")
	}
	if !ctrl.IsCockpit() {
		t.Error("cockpit not applied from rx frame")
	}
	if got := ctrl.GetBrakesRead(); got < 0.49 || got > 0.51 {
		t.Errorf("brakes_read = %v, want ~0.5", got)
	}
}
