package can

import (
	"context"
	"time"

	einride "go.einride.tech/can"

	"etc-firmware/etc"
	"etc-firmware/utils"
)

// Wrapper is the CAN-context collaborator described in the specification:
// it wakes on a set of periodic transmit flags plus an inbound-frame flag,
// and dispatches each to the matching handler against a shared
// etc.Controller. Ordering among flags raised in the same instant is
// unspecified; every flag raised before a wait must be serviced before the
// next one.
type Wrapper struct {
	transport Transport
	frameMap  *Map
	ctrl      *etc.Controller
	log       *utils.Logger
}

// NewWrapper builds a Wrapper over transport, using frameMap to encode and
// decode frames and ctrl as the state it drives and samples.
func NewWrapper(transport Transport, frameMap *Map, ctrl *etc.Controller, log *utils.Logger) *Wrapper {
	return &Wrapper{transport: transport, frameMap: frameMap, ctrl: ctrl, log: log}
}

// Run blocks until ctx is canceled, dispatching on four flags: one ticker
// per periodic TX frame (ETC_THROTTLE, ETC_STATE, ETC_SYNC) and one RX flag
// raised by a dedicated receive goroutine. This is the Go rendering of a
// wait-on-multi-flag event loop: each tick or received frame is one raised
// flag, handled to completion before the loop selects again.
func (w *Wrapper) Run(ctx context.Context) error {
	throttle := w.tickerFor("ETC_THROTTLE")
	state := w.tickerFor("ETC_STATE")
	sync := w.tickerFor("ETC_SYNC")
	defer throttle.Stop()
	defer state.Stop()
	defer sync.Stop()

	rxFrames := make(chan einride.Frame, 4)
	rxErrs := make(chan error, 1)
	go w.receiveLoop(ctx, rxFrames, rxErrs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-throttle.C:
			w.handleThrottleFlag(ctx)
		case <-state.C:
			w.handleStateFlag(ctx)
		case <-sync.C:
			w.handleSyncFlag(ctx)
		case f := <-rxFrames:
			w.handleRxFlag(f)
		case err := <-rxErrs:
			if w.log != nil {
				w.log.Error("can: receive loop stopped: %v", err)
			}
			return err
		}
	}
}

func (w *Wrapper) tickerFor(frameName string) *time.Ticker {
	fd, err := w.frameMap.FrameByName(frameName)
	period := 100 * time.Millisecond
	if err == nil && fd.CycleMS > 0 {
		period = time.Duration(fd.CycleMS) * time.Millisecond
	}
	return time.NewTicker(period)
}

func (w *Wrapper) receiveLoop(ctx context.Context, frames chan<- einride.Frame, errs chan<- error) {
	for {
		f, err := w.transport.Recv(ctx)
		if err != nil {
			errs <- err
			return
		}
		select {
		case frames <- f:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Wrapper) handleThrottleFlag(ctx context.Context) {
	he1, he2, pedal, torque := w.ctrl.SnapshotForThrottleFrame()
	f, err := w.frameMap.EncodeFrame("ETC_THROTTLE", map[string]float64{
		"he1_travel":    he1,
		"he2_travel":    he2,
		"pedal_travel":  pedal,
		"torque_demand": float64(torque),
	})
	if err != nil {
		w.logEncodeError("ETC_THROTTLE", err)
		return
	}
	w.send(ctx, f)
}

func (w *Wrapper) handleStateFlag(ctx context.Context) {
	s := w.ctrl.SnapshotForStateFrame()
	f, err := w.frameMap.EncodeFrame("ETC_STATE", map[string]float64{
		"mbb_alive":     float64(s.MBBAlive),
		"ts_ready":      boolToFloat(s.TSReady),
		"motor_enabled": boolToFloat(s.MotorEnabled),
		"motor_forward": boolToFloat(s.MotorForward),
		"cockpit":       boolToFloat(s.Cockpit),
		"he1_read":      s.HE1Read,
		"he2_read":      s.HE2Read,
		"brakes_read":   s.BrakesRead,
	})
	if err != nil {
		w.logEncodeError("ETC_STATE", err)
		return
	}
	w.send(ctx, f)
}

func (w *Wrapper) handleSyncFlag(ctx context.Context) {
	alive := w.ctrl.SnapshotForSyncFrame()
	f, err := w.frameMap.EncodeFrame("ETC_SYNC", map[string]float64{
		"mbb_alive": float64(alive),
	})
	if err != nil {
		w.logEncodeError("ETC_SYNC", err)
		return
	}
	w.send(ctx, f)
}

func (w *Wrapper) handleRxFlag(f einride.Frame) {
	values, err := w.frameMap.DecodeFrame(f)
	if err != nil {
		if w.log != nil {
			w.log.Warn("can: dropping unrecognized frame 0x%X: %v", f.ID, err)
		}
		return
	}
	w.ctrl.ApplyRxFrame(etc.NewState(
		etc.WithTSReady(values["ts_ready"] != 0),
		etc.WithMotorEnabled(values["motor_enabled"] != 0),
		etc.WithMotorForward(values["motor_forward"] != 0),
		etc.WithCockpit(values["cockpit"] != 0),
		etc.WithBrakesRead(values["brakes_read"]),
	))
}

func (w *Wrapper) send(ctx context.Context, f einride.Frame) {
	if err := w.transport.Send(ctx, f); err != nil && w.log != nil {
		w.log.Warn("can: send 0x%X failed: %v", f.ID, err)
	}
}

func (w *Wrapper) logEncodeError(frameName string, err error) {
	if w.log != nil {
		w.log.Error("can: encode %s failed: %v", frameName, err)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
