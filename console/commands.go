package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"etc-firmware/etc"
)

// AnalogOverride is the narrow surface Dispatcher needs to inject a
// console-supplied reading in place of a real sensor; hal.SimAnalogReader
// satisfies it.
type AnalogOverride interface {
	Set(v float64)
}

// Command is one REPL verb: a name to match against the submitted line and
// a handler given the rest of the line as its argument.
type Command struct {
	Name string
	Run  func(d *Dispatcher, args string) string
}

// Dispatcher wires a Console to the controller and sensor override it
// drives. he2Sim is nil unless the target exposes a hal.SimAnalogReader
// for HE2; with a nil he2Sim the setv/setp commands still set the override
// flag and report the computed reading, but inject it nowhere.
type Dispatcher struct {
	console    *Console
	ctrl       *etc.Controller
	he2Sim     AnalogOverride
	overridden bool
}

// NewDispatcher builds a Dispatcher. he2Sim may be nil, in which case
// setv/setp still set the Dispatcher's override flag but have no sensor to
// inject into.
func NewDispatcher(c *Console, ctrl *etc.Controller, he2Sim AnalogOverride) *Dispatcher {
	return &Dispatcher{console: c, ctrl: ctrl, he2Sim: he2Sim}
}

// HardwareOverridden reports whether setv/setp has disabled the real HE2
// reading in favor of a console-injected value.
func (d *Dispatcher) HardwareOverridden() bool {
	return d.overridden
}

var commands = []Command{
	{Name: "setv", Run: cmdSetv},
	{Name: "setp", Run: cmdSetp},
	{Name: "start", Run: cmdStart},
	{Name: "reset", Run: cmdReset},
	{Name: "info", Run: cmdInfo},
	{Name: "debug", Run: cmdDebug},
	{Name: "help", Run: cmdHelp},
}

// Dispatch looks up line's leading word in the command table and runs it,
// returning the command's response text (already pterm-styled where
// applicable). Unrecognized input returns the fixed error message.
func (d *Dispatcher) Dispatch(line string) string {
	name, args := splitCommand(line)
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd.Run(d, args)
		}
	}
	return "error: unknown command. see 'help' for more information"
}

func splitCommand(line string) (name, args string) {
	line = strings.TrimSpace(line)
	name, args, _ = strings.Cut(line, " ")
	return name, strings.TrimSpace(args)
}

func cmdSetv(d *Dispatcher, args string) string {
	v, err := strconv.ParseFloat(args, 64)
	if err != nil {
		return fmt.Sprintf("error: setv expects a numeric voltage, got %q", args)
	}
	he2Read := (v * etc.VoltScaleHE2) / etc.MaxV
	d.applyOverride(he2Read)
	return fmt.Sprintf("he2_read set to %.4f (from %.3fV)", he2Read, v)
}

func cmdSetp(d *Dispatcher, args string) string {
	pct, err := strconv.ParseFloat(args, 64)
	if err != nil {
		return fmt.Sprintf("error: setp expects a numeric percentage, got %q", args)
	}
	v := (pct/100.0*4.0 + 0.5)
	he2Read := (v * etc.VoltScaleHE2) / etc.MaxV
	d.applyOverride(he2Read)
	return fmt.Sprintf("he2_read set to %.4f (%.1f%% pedal)", he2Read, pct)
}

func (d *Dispatcher) applyOverride(he2Read float64) {
	d.overridden = true
	if d.he2Sim != nil {
		d.he2Sim.Set(he2Read)
	}
}

func cmdStart(d *Dispatcher, _ string) string {
	d.ctrl.SetTSReady(true)
	d.ctrl.SetBrakesRead(etc.BrakeTol)
	d.ctrl.CheckStartConditions()
	if d.ctrl.IsMotorEnabled() {
		return "motor enabled, RTDS running"
	}
	return "start conditions not met"
}

func cmdReset(d *Dispatcher, _ string) string {
	d.overridden = false
	d.ctrl.ResetState()
	return "state reset"
}

func cmdInfo(d *Dispatcher, _ string) string {
	s := d.ctrl.Snapshot()
	var b strings.Builder
	fmt.Fprintln(&b, pterm.Bold.Sprint("controller state"))
	fmt.Fprintf(&b, "mbb_alive:     %d\n", s.MBBAlive)
	fmt.Fprintf(&b, "he1_read:      %.4f\n", s.HE1Read)
	fmt.Fprintf(&b, "he2_read:      %.4f\n", s.HE2Read)
	fmt.Fprintf(&b, "he1_travel:    %.4f\n", s.HE1Travel)
	fmt.Fprintf(&b, "he2_travel:    %.4f\n", s.HE2Travel)
	fmt.Fprintf(&b, "pedal_travel:  %.4f\n", s.PedalTravel)
	fmt.Fprintf(&b, "brakes_read:   %.4f\n", s.BrakesRead)
	fmt.Fprintf(&b, "ts_ready:      %v\n", s.TSReady)
	fmt.Fprintf(&b, "motor_enabled: %v\n", s.MotorEnabled)
	fmt.Fprintf(&b, "motor_forward: %v\n", s.MotorForward)
	fmt.Fprintf(&b, "cockpit:       %v\n", s.Cockpit)
	fmt.Fprintf(&b, "torque_demand: %d\n", s.TorqueDemand)
	fmt.Fprintf(&b, "debug:         %v", d.console.IsDebugEnabled())
	return b.String()
}

func cmdDebug(d *Dispatcher, _ string) string {
	d.console.ToggleDebug()
	if d.console.IsDebugEnabled() {
		return "debug output enabled"
	}
	return "debug output disabled"
}

func cmdHelp(_ *Dispatcher, _ string) string {
	var b strings.Builder
	fmt.Fprintln(&b, pterm.Bold.Sprint("commands"))
	rows := [][2]string{
		{"setv <v>", "override he2_read from a raw voltage"},
		{"setp <pct>", "override he2_read from a 0-100% pedal position"},
		{"start", "inject ts_ready/brakes_read and check start conditions"},
		{"reset", "re-enable hardware reads and reset controller state"},
		{"info", "print all getter values and the debug flag"},
		{"debug", "toggle verbose output"},
		{"help", "print this message"},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-12s %s\n", r[0], r[1])
	}
	return strings.TrimRight(b.String(), "\n")
}
