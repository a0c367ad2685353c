package models

import "time"

type MachineKind string

const (
	MachineDrying   MachineKind = "drying"
	MachineFlouring MachineKind = "flouring"
)

func (k MachineKind) Valid() bool {
	return k == MachineDrying || k == MachineFlouring
}

// Label is the human name used in notification messages.
func (k MachineKind) Label() string {
	switch k {
	case MachineDrying:
		return "Drying machine"
	case MachineFlouring:
		return "Flouring machine"
	}
	return "Machine"
}

type MachineStatus string

const (
	MachineIdle     MachineStatus = "idle"
	MachineRunning  MachineStatus = "running"
	MachineFinished MachineStatus = "finished"
)

func (s MachineStatus) Valid() bool {
	switch s {
	case MachineIdle, MachineRunning, MachineFinished:
		return true
	}
	return false
}

type Machine struct {
	ID        string
	Kind      MachineKind
	CentraID  int64
	Capacity  int
	Status    MachineStatus
	UpdatedAt time.Time
}
