package domain

// TableModel identifies the kinematics of a table.
type TableModel string

const (
	// TableDuneWeaver is the standard table.
	TableDuneWeaver TableModel = "dune_weaver"
	// TableDuneWeaverMini is the small table with its own axis scaling.
	TableDuneWeaverMini TableModel = "dune_weaver_mini"
)

// CoupledYStepsPerUnit is the y steps-per-unit value whose tables share the mini's axis coupling.
const CoupledYStepsPerUnit = 546

// Calibration holds the machine constants used to convert polar moves into linear travel.
type Calibration struct {
	Model         TableModel
	XStepsPerUnit float64
	YStepsPerUnit float64
	GearRatio     float64
}

// IsMini reports whether the calibration describes the mini table.
func (c Calibration) IsMini() bool {
	return c.Model == TableDuneWeaverMini
}

// Valid reports whether the calibration has no zero or negative denominators.
func (c Calibration) Valid() bool {
	return c.XStepsPerUnit > 0 && c.YStepsPerUnit > 0 && c.GearRatio > 0
}

// MachineSnapshot is the read-only machine state captured at the start of a computation.
type MachineSnapshot struct {
	Calibration Calibration
	Workers     int
}
