package models

import "time"

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// Normalize maps an absent or unknown value to pending.
func (s Status) Normalize() Status {
	switch s {
	case StatusApproved, StatusDenied:
		return s
	default:
		return StatusPending
	}
}

// Known reports whether s is one of the three lifecycle states.
func (s Status) Known() bool {
	return s == StatusPending || s == StatusApproved || s == StatusDenied
}

// PreferredDateASAP is the sentinel stored when the customer did not pick a date.
const PreferredDateASAP = "ASAP"

type Appointment struct {
	ID            string    `json:"id" bson:"id"`
	UserID        string    `json:"userId" bson:"userId"`
	UserName      string    `json:"userName" bson:"userName"`
	UserEmail     string    `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
	UserPhone     string    `json:"userPhone,omitempty" bson:"userPhone,omitempty"`
	VehicleYear   string    `json:"vehicleYear" bson:"vehicleYear"`
	VehicleMake   string    `json:"vehicleMake" bson:"vehicleMake"`
	VehicleModel  string    `json:"vehicleModel" bson:"vehicleModel"`
	LicensePlate  string    `json:"licensePlate,omitempty" bson:"licensePlate,omitempty"`
	PreferredDate string    `json:"preferredDate" bson:"preferredDate"`
	Message       string    `json:"message,omitempty" bson:"message,omitempty"`
	Status        Status    `json:"status" bson:"status"`
	DropoffDate   string    `json:"dropoffDate,omitempty" bson:"dropoffDate,omitempty"`
	DropoffTime   string    `json:"dropoffTime,omitempty" bson:"dropoffTime,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Vehicle describes the vehicle as one line, e.g. "2003 Dodge Ram 1500 (ABC1234)".
func (a *Appointment) Vehicle() string {
	s := a.VehicleYear
	if a.VehicleMake != "" {
		if s != "" {
			s += " "
		}
		s += a.VehicleMake
	}
	if a.VehicleModel != "" {
		if s != "" {
			s += " "
		}
		s += a.VehicleModel
	}
	if a.LicensePlate != "" && s != "" {
		s += " (" + a.LicensePlate + ")"
	}
	return s
}
