package models

import (
	"time"
)

// Role is the single, permanent role of an address
type Role uint8

// Role values. The numbering is part of the public surface (RoleOf returns it).
const (
	RoleNone Role = iota
	RolePatient
	RoleDoctor
)

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "None"
	case RolePatient:
		return "Patient"
	case RoleDoctor:
		return "Doctor"
	default:
		return "Unknown"
	}
}

// Principal is a registered patient or doctor
type Principal struct {
	Address      string `json:"address"`
	Role         Role   `json:"role"`
	Profile      string `json:"profile"`
	RegisteredAt int64  `json:"registeredAt"`
	ObjectType   string `json:"objectType"`
}

// NewPrincipal creates a principal registered at the given time
func NewPrincipal(address string, role Role, profile string, at time.Time) *Principal {
	return &Principal{
		Address:      address,
		Role:         role,
		Profile:      profile,
		RegisteredAt: at.Unix(),
		ObjectType:   "principal",
	}
}
