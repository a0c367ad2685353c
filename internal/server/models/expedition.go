package models

import "time"

type ExpeditionStatus string

const (
	ExpeditionPkgDelivering ExpeditionStatus = "PKG_Delivering"
	ExpeditionPkgDelivered  ExpeditionStatus = "PKG_Delivered"
	ExpeditionXYZPickingUp  ExpeditionStatus = "XYZ_PickingUp"
	ExpeditionXYZCompleted  ExpeditionStatus = "XYZ_Completed"
	ExpeditionMissing       ExpeditionStatus = "Missing"
)

func (s ExpeditionStatus) Valid() bool {
	switch s {
	case ExpeditionPkgDelivering, ExpeditionPkgDelivered,
		ExpeditionXYZPickingUp, ExpeditionXYZCompleted, ExpeditionMissing:
		return true
	}
	return false
}

type Expedition struct {
	ID               int64
	CentraID         int64
	Destination      string
	TotalPackages    int
	ServiceDetails   string
	EstimatedArrival *time.Time
	Status           ExpeditionStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
