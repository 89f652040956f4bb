package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Grant lets one doctor read one link of one patient until ExpiresAt (unix seconds).
// Expired grants stay stored; expiry is only applied when access is checked.
type Grant struct {
	Patient    string `json:"patient"`
	Link       int    `json:"link"`
	Doctor     string `json:"doctor"`
	GrantedAt  int64  `json:"grantedAt"`
	ExpiresAt  int64  `json:"expiresAt"`
	ObjectType string `json:"objectType"`
}

// EmergencyFlag marks one record for disclosure without a grant
type EmergencyFlag struct {
	Link   int `json:"link"`
	Record int `json:"record"`
}

// NewGrant creates a grant issued at the given time
func NewGrant(patient string, link int, doctor string, grantedAt time.Time, expiresAt int64) *Grant {
	return &Grant{
		Patient:    patient,
		Link:       link,
		Doctor:     doctor,
		GrantedAt:  grantedAt.Unix(),
		ExpiresAt:  expiresAt,
		ObjectType: "grant",
	}
}

// IsExpired checks if the grant has expired at now
func (g *Grant) IsExpired(now time.Time) bool {
	return now.Unix() >= g.ExpiresAt
}

// IsActive checks if the grant still confers access at now
func (g *Grant) IsActive(now time.Time) bool {
	return !g.IsExpired(now)
}

// Member encodes the flag as a set member
func (f EmergencyFlag) Member() string {
	return strconv.Itoa(f.Link) + ":" + strconv.Itoa(f.Record)
}

// ParseEmergencyFlag decodes a set member produced by Member
func ParseEmergencyFlag(member string) (EmergencyFlag, error) {
	link, record, ok := strings.Cut(member, ":")
	if !ok {
		return EmergencyFlag{}, fmt.Errorf("invalid emergency flag: %s", member)
	}
	l, err := strconv.Atoi(link)
	if err != nil {
		return EmergencyFlag{}, fmt.Errorf("invalid emergency flag link: %v", err)
	}
	r, err := strconv.Atoi(record)
	if err != nil {
		return EmergencyFlag{}, fmt.Errorf("invalid emergency flag record: %v", err)
	}
	return EmergencyFlag{Link: l, Record: r}, nil
}
