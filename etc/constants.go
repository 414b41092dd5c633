package etc

import "time"

// Tunable constants for the pedal-plausibility state machine and motor
// torque mapping. Names match the contract in the specification; concrete
// values are the implementer's choice.
const (
	// VoltScaleHE1 and VoltScaleHE2 are the normalized full-scale readings
	// for each Hall-effect sensor; HEnTravel = HEnRead / VoltScaleHEn.
	VoltScaleHE1 = 1.0
	VoltScaleHE2 = 1.0

	// BrakeTol is the minimum brake reading that counts as "brakes applied"
	// for the start interlock.
	BrakeTol = 0.05

	// HEAgreementTol is the maximum allowed |he1_travel - he2_travel|
	// before a disagreement fault is flagged (FSAE T.4.2: 10% of travel).
	HEAgreementTol = 0.10

	// HEVoltageMin and HEVoltageMax bound the legal raw-voltage range
	// (FSAE T.4.3); readings outside this range imply a sensor/wiring
	// fault.
	HEVoltageMin = 0.05
	HEVoltageMax = 0.95

	// TorqueMax is the ceiling for TorqueDemand.
	TorqueMax = 100

	// MaxV is the ADC full-scale voltage used by the console's setv
	// command to convert raw volts into the normalized reading domain.
	MaxV = 5.0
)

// HEMismatchTimeout is the duration a plausibility fault (voltage-range or
// disagreement) must persist before the motor is disabled (FSAE T.4.2.4).
const HEMismatchTimeout = 100 * time.Millisecond

// RTDSDuration is how long the ready-to-drive sound output stays asserted
// after RunRTDS, chosen within the 1s-3s window required by FSAE EV.10.5.
const RTDSDuration = 2 * time.Second
