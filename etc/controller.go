package etc

import (
	"math"
	"sync"
	"time"

	"etc-firmware/hal"
)

// Controller owns one State and runs the pedal plausibility state machine
// against it. All methods are safe for concurrent use: the main loop (which
// also runs the console command handler) and the CAN dispatch loop call
// into a Controller from separate goroutines.
type Controller struct {
	mu    sync.Mutex
	state State

	// mismatchStart is nil while he1/he2 agree and the last reading was
	// in range. It is set the instant a fault is first observed and
	// cleared the instant readings agree again; UpdateState disables the
	// motor once it has stood for longer than HEMismatchTimeout.
	mismatchStart *time.Time

	rtdsPin   hal.DigitalOut
	rtdsTimer *time.Timer
}

// New returns a Controller wired to rtdsPin, in the same state ResetState
// leaves it in. rtdsPin may be nil, in which case RTDS pulses are silently
// skipped (useful for tests that don't care about the output pin).
func New(rtdsPin hal.DigitalOut) *Controller {
	c := &Controller{rtdsPin: rtdsPin}
	c.state.MotorForward = true
	return c
}

// UpdateStateFromCAN overwrites the whole state with s, as received in an
// ETC_RX_CMD frame. TorqueDemand is forced to zero whenever the incoming
// frame has the motor disabled, regardless of what the frame itself
// carried in that field.
func (c *Controller) UpdateStateFromCAN(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !s.MotorEnabled {
		s.TorqueDemand = 0
	}
	c.state = s
}

// ApplyRxFrame is an alias for UpdateStateFromCAN, named for the call site
// in the CAN rx dispatcher rather than the data it carries.
func (c *Controller) ApplyRxFrame(s State) {
	c.UpdateStateFromCAN(s)
}

// UpdateState runs one pass of the plausibility state machine against a
// fresh pair of raw Hall-effect readings. Rules are evaluated in order and
// the first match wins:
//
//  1. Voltage-range fault: either reading outside [HEVoltageMin,
//     HEVoltageMax] while the motor is enabled.
//  2. Disagreement fault: |he1_travel - he2_travel| > HEAgreementTol while
//     the motor is enabled.
//  3. Agreement: clear the mismatch timer and recompute pedal_travel.
//
// Rules 1 and 2 only start or check the mismatch timer; the motor is
// disabled only once a fault has stood unresolved for longer than
// HEMismatchTimeout. Rule 3 applies whenever neither fault rule fires,
// including while the motor is already disabled.
func (c *Controller) UpdateState(he1Raw, he2Raw float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateStateLocked(he1Raw, he2Raw, time.Now())
}

func (c *Controller) updateStateLocked(he1Raw, he2Raw float64, now time.Time) {
	c.state.HE1Read = he1Raw
	c.state.HE2Read = he2Raw

	he1Travel := clamp01(he1Raw / VoltScaleHE1)
	he2Travel := clamp01(he2Raw / VoltScaleHE2)
	c.state.HE1Travel = he1Travel
	c.state.HE2Travel = he2Travel

	voltageFault := he1Raw < HEVoltageMin || he1Raw > HEVoltageMax ||
		he2Raw < HEVoltageMin || he2Raw > HEVoltageMax
	disagreement := math.Abs(he1Travel-he2Travel) > HEAgreementTol

	switch {
	case voltageFault && c.state.MotorEnabled:
		c.markFaultLocked(now)
	case disagreement && c.state.MotorEnabled:
		c.markFaultLocked(now)
	default:
		c.mismatchStart = nil
		c.state.PedalTravel = (he1Travel + he2Travel) / 2
	}

	if c.state.MotorEnabled {
		c.state.TorqueDemand = uint32(math.Round(c.state.PedalTravel * TorqueMax))
	} else {
		c.state.TorqueDemand = 0
	}
}

func (c *Controller) markFaultLocked(now time.Time) {
	if c.mismatchStart == nil {
		start := now
		c.mismatchStart = &start
		return
	}
	if now.Sub(*c.mismatchStart) > HEMismatchTimeout {
		c.state.MotorEnabled = false
	}
}

// UpdatePedalTravel recomputes he1_travel, he2_travel and pedal_travel from
// a fresh pair of raw readings without running the fault ladder: no
// mismatch timer is started or cleared, and motor_enabled is left exactly
// as it was. It is the narrow sensor-refresh path used by the main loop's
// per-iteration poll, as opposed to UpdateState's full plausibility check.
func (c *Controller) UpdatePedalTravel(he1Raw, he2Raw float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.HE1Read = he1Raw
	c.state.HE2Read = he2Raw

	he1Travel := clamp01(he1Raw / VoltScaleHE1)
	he2Travel := clamp01(he2Raw / VoltScaleHE2)
	c.state.HE1Travel = he1Travel
	c.state.HE2Travel = he2Travel
	c.state.PedalTravel = (he1Travel + he2Travel) / 2
}

// CheckStartConditions enables the motor and fires the ready-to-drive sound
// once tractive system ready and brakes applied are both observed. It is a
// no-op otherwise; it never disables the motor.
func (c *Controller) CheckStartConditions() {
	c.mu.Lock()
	ready := c.state.TSReady && c.state.BrakesRead >= BrakeTol
	if ready {
		c.state.MotorEnabled = true
	}
	c.mu.Unlock()

	if ready {
		c.RunRTDS()
	}
}

// RunRTDS asserts the RTDS output and schedules it to drop after
// RTDSDuration. Calling it again while already running restarts the
// duration rather than stacking a second timer.
func (c *Controller) RunRTDS() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rtdsPin != nil {
		c.rtdsPin.Set(true)
	}
	if c.rtdsTimer != nil {
		c.rtdsTimer.Stop()
	}
	c.rtdsTimer = time.AfterFunc(RTDSDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.rtdsPin != nil {
			c.rtdsPin.Set(false)
		}
	})
}

// ResetState restores the controller to its power-on state: every field
// zeroed except MotorForward, which defaults true. Any running RTDS timer
// is canceled and the pin driven low.
func (c *Controller) ResetState() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rtdsTimer != nil {
		c.rtdsTimer.Stop()
		c.rtdsTimer = nil
	}
	if c.rtdsPin != nil {
		c.rtdsPin.Set(false)
	}
	c.mismatchStart = nil
	c.state = State{MotorForward: true}
}

// UpdateMBBAlive increments the 4-bit alive counter, wrapping from 15 to 0.
func (c *Controller) UpdateMBBAlive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.MBBAlive = (c.state.MBBAlive + 1) % 16
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Snapshot returns a copy of the whole current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SnapshotForThrottleFrame returns the fields an ETC_THROTTLE CAN frame
// carries.
func (c *Controller) SnapshotForThrottleFrame() (he1Travel, he2Travel, pedalTravel float64, torqueDemand uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HE1Travel, c.state.HE2Travel, c.state.PedalTravel, c.state.TorqueDemand
}

// SnapshotForStateFrame returns the full state for an ETC_STATE CAN frame;
// the frame itself encodes only a subset of these fields.
func (c *Controller) SnapshotForStateFrame() State {
	return c.Snapshot()
}

// SnapshotForSyncFrame increments the alive counter and returns its new
// value, for an ETC_SYNC CAN frame. Incrementing here rather than in a
// separate tick keeps the counter's cadence tied exactly to sync frame
// transmission.
func (c *Controller) SnapshotForSyncFrame() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.MBBAlive = (c.state.MBBAlive + 1) % 16
	return c.state.MBBAlive
}

// GetMBBAlive returns the current alive counter value.
func (c *Controller) GetMBBAlive() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.MBBAlive
}

// GetHE1Read returns the last raw reading from HE1.
func (c *Controller) GetHE1Read() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HE1Read
}

// GetHE2Read returns the last raw reading from HE2.
func (c *Controller) GetHE2Read() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HE2Read
}

// GetHE1Travel returns HE1's normalized travel.
func (c *Controller) GetHE1Travel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HE1Travel
}

// GetHE2Travel returns HE2's normalized travel.
func (c *Controller) GetHE2Travel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HE2Travel
}

// GetPedalTravel returns the agreed normalized pedal position.
func (c *Controller) GetPedalTravel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.PedalTravel
}

// GetBrakesRead returns the last normalized brake pressure reading.
func (c *Controller) GetBrakesRead() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.BrakesRead
}

// SetBrakesRead stores a new normalized brake pressure reading, fed from
// either a local sensor or an incoming CAN frame.
func (c *Controller) SetBrakesRead(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.BrakesRead = v
}

// SetTSReady stores the tractive system ready flag.
func (c *Controller) SetTSReady(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.TSReady = v
}

// IsTSReady reports the tractive system ready flag.
func (c *Controller) IsTSReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.TSReady
}

// IsMotorEnabled reports whether the motor is currently enabled.
func (c *Controller) IsMotorEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.MotorEnabled
}

// IsMotorForward reports the motor direction flag.
func (c *Controller) IsMotorForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.MotorForward
}

// SetMotorForward stores the motor direction flag.
func (c *Controller) SetMotorForward(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.MotorForward = v
}

// IsCockpit reports the cockpit switch flag.
func (c *Controller) IsCockpit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Cockpit
}

// SetCockpit stores the cockpit switch flag.
func (c *Controller) SetCockpit(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Cockpit = v
}

// GetTorqueDemand returns the last computed torque demand.
func (c *Controller) GetTorqueDemand() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.TorqueDemand
}
