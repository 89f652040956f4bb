package engine

import (
	"errors"

	"github.com/mediblock/chaincode/state"
)

// Errors returned by engine operations. They are wrapped with context, so match
// them with errors.Is.
var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrNotAPatient       = errors.New("not a patient")
	ErrNotADoctor        = errors.New("not a doctor")
	ErrNotAppointed      = errors.New("not appointed")
	ErrOutOfRange        = state.ErrOutOfRange
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidArgument   = errors.New("invalid argument")
)
