package config

import (
	"sync"

	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
)

var _ ports.MachineState = (*Machine)(nil)

// Machine holds the calibration and worker count of the connected table.
type Machine struct {
	mu       sync.RWMutex
	snapshot domain.MachineSnapshot
}

// NewMachine creates a Machine from an initial snapshot.
func NewMachine(snapshot domain.MachineSnapshot) *Machine {
	return &Machine{snapshot: snapshot}
}

// Snapshot returns the current calibration and worker count.
func (m *Machine) Snapshot() domain.MachineSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Update replaces the calibration and worker count. Computations already running keep
// the snapshot they started with.
func (m *Machine) Update(snapshot domain.MachineSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
}
