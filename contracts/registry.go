package contracts

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/mediblock/chaincode/engine"
)

// RegisterPatient registers the caller as a patient
func (c *MediBlockContract) RegisterPatient(ctx contractapi.TransactionContextInterface, profile string) error {
	return c.submit(ctx, "RegisterPatient", func(e *engine.Engine, tx engine.Tx) error {
		return e.RegisterPatient(tx, profile)
	})
}

// RegisterDoctor registers the caller as a doctor
func (c *MediBlockContract) RegisterDoctor(ctx contractapi.TransactionContextInterface, profile string) error {
	return c.submit(ctx, "RegisterDoctor", func(e *engine.Engine, tx engine.Tx) error {
		return e.RegisterDoctor(tx, profile)
	})
}

// RoleOf returns 0 (none), 1 (patient) or 2 (doctor)
func (c *MediBlockContract) RoleOf(ctx contractapi.TransactionContextInterface, address string) (uint8, error) {
	return evaluate(c, ctx, "RoleOf", func(e *engine.Engine, _ engine.Tx) (uint8, error) {
		role, err := e.RoleOf(address)
		return uint8(role), err
	})
}

// WhoAmI returns the address the caller is known by
func (c *MediBlockContract) WhoAmI(ctx contractapi.TransactionContextInterface) (string, error) {
	return evaluate(c, ctx, "WhoAmI", func(_ *engine.Engine, tx engine.Tx) (string, error) {
		return tx.Sender, nil
	})
}

// PatientProfile returns the profile reference of a patient
func (c *MediBlockContract) PatientProfile(ctx contractapi.TransactionContextInterface, address string) (string, error) {
	return evaluate(c, ctx, "PatientProfile", func(e *engine.Engine, _ engine.Tx) (string, error) {
		return e.PatientProfile(address)
	})
}

// DoctorProfile returns the profile reference of a doctor
func (c *MediBlockContract) DoctorProfile(ctx contractapi.TransactionContextInterface, address string) (string, error) {
	return evaluate(c, ctx, "DoctorProfile", func(e *engine.Engine, _ engine.Tx) (string, error) {
		return e.DoctorProfile(address)
	})
}

// Doctors lists all registered doctors
func (c *MediBlockContract) Doctors(ctx contractapi.TransactionContextInterface) ([]string, error) {
	return evaluate(c, ctx, "Doctors", func(e *engine.Engine, _ engine.Tx) ([]string, error) {
		return e.Doctors()
	})
}

// Patients lists all registered patients
func (c *MediBlockContract) Patients(ctx contractapi.TransactionContextInterface) ([]string, error) {
	return evaluate(c, ctx, "Patients", func(e *engine.Engine, _ engine.Tx) ([]string, error) {
		return e.Patients()
	})
}
