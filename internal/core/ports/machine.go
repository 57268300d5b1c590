package ports

import "go.trai.ch/patterneta/internal/core/domain"

// MachineState provides read-only access to the table calibration and worker policy.
//
//go:generate go run go.uber.org/mock/mockgen -source=machine.go -destination=mocks/mock_machine.go -package=mocks
type MachineState interface {
	// Snapshot returns the current calibration and worker count.
	// Callers take one snapshot per computation and never re-read it mid-batch.
	Snapshot() domain.MachineSnapshot
}
