package engine

import (
	"fmt"
	"time"

	"github.com/mediblock/chaincode/models"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

// RoleRegistry maps addresses to their one immutable role and profile.
type RoleRegistry struct {
	st state.Store
}

// Register assigns role to address. An address registers at most once.
func (r *RoleRegistry) Register(address string, role models.Role, profile string, at time.Time) error {
	if role != models.RolePatient && role != models.RoleDoctor {
		return fmt.Errorf("%w: cannot register role %s", ErrInvalidArgument, role)
	}
	if err := utils.ValidateProfile(profile); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	existing, err := r.Principal(address)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s is already a %s", ErrAlreadyRegistered, address, existing.Role)
	}

	if err := putJSON(r.st, utils.CreatePrincipalKey(address), models.NewPrincipal(address, role, profile, at)); err != nil {
		return err
	}
	_, err = r.roster(role).Add(address)
	return err
}

// Principal loads the registration of address, or nil when it has none.
func (r *RoleRegistry) Principal(address string) (*models.Principal, error) {
	var p models.Principal
	found, err := getJSON(r.st, utils.CreatePrincipalKey(address), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// RoleOf returns RoleNone for unregistered addresses.
func (r *RoleRegistry) RoleOf(address string) (models.Role, error) {
	p, err := r.Principal(address)
	if err != nil || p == nil {
		return models.RoleNone, err
	}
	return p.Role, nil
}

// ProfileOf returns the profile of a registered address.
func (r *RoleRegistry) ProfileOf(address string) (string, error) {
	p, err := r.Principal(address)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, address)
	}
	return p.Profile, nil
}

// Require fails with ErrNotAPatient or ErrNotADoctor unless address holds role.
func (r *RoleRegistry) Require(address string, role models.Role) error {
	actual, err := r.RoleOf(address)
	if err != nil {
		return err
	}
	if actual == role {
		return nil
	}
	switch role {
	case models.RolePatient:
		return fmt.Errorf("%w: %s", ErrNotAPatient, address)
	case models.RoleDoctor:
		return fmt.Errorf("%w: %s", ErrNotADoctor, address)
	default:
		return fmt.Errorf("%w: unexpected role %s", ErrInvalidArgument, role)
	}
}

// Doctors lists registered doctors in registration order.
func (r *RoleRegistry) Doctors() ([]string, error) {
	return r.roster(models.RoleDoctor).Values()
}

// Patients lists registered patients in registration order.
func (r *RoleRegistry) Patients() ([]string, error) {
	return r.roster(models.RolePatient).Values()
}

func (r *RoleRegistry) roster(role models.Role) *state.Set {
	return state.NewSet(r.st, utils.CreateRosterKey(role))
}
