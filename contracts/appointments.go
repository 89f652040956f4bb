package contracts

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/mediblock/chaincode/engine"
)

// AddAppointment lets the calling patient appoint a doctor
func (c *MediBlockContract) AddAppointment(ctx contractapi.TransactionContextInterface, doctor string) error {
	return c.submit(ctx, "AddAppointment", func(e *engine.Engine, tx engine.Tx) error {
		return e.AddAppointment(tx, doctor)
	})
}

// RemoveAppointment ends the appointment between the calling patient and a doctor
func (c *MediBlockContract) RemoveAppointment(ctx contractapi.TransactionContextInterface, doctor string) error {
	return c.submit(ctx, "RemoveAppointment", func(e *engine.Engine, tx engine.Tx) error {
		return e.RemoveAppointment(tx, doctor)
	})
}

// AppointedDoctors lists the doctors of the calling patient
func (c *MediBlockContract) AppointedDoctors(ctx contractapi.TransactionContextInterface) ([]string, error) {
	return evaluate(c, ctx, "AppointedDoctors", func(e *engine.Engine, tx engine.Tx) ([]string, error) {
		return e.AppointedDoctors(tx)
	})
}

// NotAppointedDoctors lists the doctors the calling patient may still appoint
func (c *MediBlockContract) NotAppointedDoctors(ctx contractapi.TransactionContextInterface) ([]string, error) {
	return evaluate(c, ctx, "NotAppointedDoctors", func(e *engine.Engine, tx engine.Tx) ([]string, error) {
		return e.NotAppointedDoctors(tx)
	})
}

// AppointedPatients lists the patients of the calling doctor
func (c *MediBlockContract) AppointedPatients(ctx contractapi.TransactionContextInterface) ([]string, error) {
	return evaluate(c, ctx, "AppointedPatients", func(e *engine.Engine, tx engine.Tx) ([]string, error) {
		return e.AppointedPatients(tx)
	})
}
