package engine

import (
	"fmt"
	"time"

	"github.com/mediblock/chaincode/models"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

// AccessControlLedger stores one grant per (patient, link, doctor). Expiry is
// evaluated lazily against the caller's clock; nothing sweeps stale grants.
type AccessControlLedger struct {
	st      state.Store
	roles   *RoleRegistry
	records *RecordStore
}

// Give creates or replaces the grant of doctor on the link of patient.
func (l *AccessControlLedger) Give(patient string, link int, doctor string, expiresAt int64, at time.Time) error {
	if err := l.roles.Require(patient, models.RolePatient); err != nil {
		return err
	}
	if err := l.roles.Require(doctor, models.RoleDoctor); err != nil {
		return err
	}
	if _, err := l.records.Link(patient, link); err != nil {
		return err
	}

	if err := putJSON(l.st, utils.CreateGrantKey(patient, link, doctor), models.NewGrant(patient, link, doctor, at, expiresAt)); err != nil {
		return err
	}
	_, err := l.grantees(patient, link).Add(doctor)
	return err
}

// Revoke deletes the grant. It reports false when there was none.
func (l *AccessControlLedger) Revoke(patient string, link int, doctor string) (bool, error) {
	key := utils.CreateGrantKey(patient, link, doctor)
	raw, err := l.st.GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to read from world state: %v", err)
	}
	if raw == nil {
		return false, nil
	}
	if err := l.st.DelState(key); err != nil {
		return false, fmt.Errorf("failed to delete %s from world state: %v", key, err)
	}
	if _, err := l.grantees(patient, link).Remove(doctor); err != nil {
		return false, err
	}
	return true, nil
}

// Grant loads the stored grant, expired or not, or nil.
func (l *AccessControlLedger) Grant(patient string, link int, doctor string) (*models.Grant, error) {
	var g models.Grant
	found, err := getJSON(l.st, utils.CreateGrantKey(patient, link, doctor), &g)
	if err != nil || !found {
		return nil, err
	}
	return &g, nil
}

// HasAccess reports whether a grant exists and has not expired at now.
func (l *AccessControlLedger) HasAccess(patient string, link int, doctor string, now time.Time) (bool, error) {
	g, err := l.Grant(patient, link, doctor)
	if err != nil || g == nil {
		return false, err
	}
	return g.IsActive(now), nil
}

// Grants lists the grants on a link that are still active at now.
func (l *AccessControlLedger) Grants(patient string, link int, now time.Time) ([]models.Grant, error) {
	if _, err := l.records.Link(patient, link); err != nil {
		return nil, err
	}
	doctors, err := l.grantees(patient, link).Values()
	if err != nil {
		return nil, err
	}
	out := make([]models.Grant, 0, len(doctors))
	for _, doctor := range doctors {
		g, err := l.Grant(patient, link, doctor)
		if err != nil {
			return nil, err
		}
		if g != nil && g.IsActive(now) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (l *AccessControlLedger) grantees(patient string, link int) *state.Set {
	return state.NewSet(l.st, utils.CreateGranteesKey(patient, link))
}
