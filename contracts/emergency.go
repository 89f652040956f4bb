package contracts

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/mediblock/chaincode/engine"
	"github.com/mediblock/chaincode/models"
)

// AddEmergencyRecord flags a record of the calling patient for emergency disclosure
func (c *MediBlockContract) AddEmergencyRecord(ctx contractapi.TransactionContextInterface, link, record int) error {
	return c.submit(ctx, "AddEmergencyRecord", func(e *engine.Engine, tx engine.Tx) error {
		return e.AddEmergencyRecord(tx, tx.Sender, link, record)
	})
}

// RemoveEmergencyRecord removes the flag at flagIndex. The last flag moves into
// the freed position.
func (c *MediBlockContract) RemoveEmergencyRecord(ctx contractapi.TransactionContextInterface, flagIndex int) error {
	return c.submit(ctx, "RemoveEmergencyRecord", func(e *engine.Engine, tx engine.Tx) error {
		return e.RemoveEmergencyRecord(tx, tx.Sender, flagIndex)
	})
}

// EmergencyRecordsOf returns the flagged records of a patient. Any client may call it.
func (c *MediBlockContract) EmergencyRecordsOf(ctx contractapi.TransactionContextInterface, patient string) (*models.EmergencyView, error) {
	return evaluate(c, ctx, "EmergencyRecordsOf", func(e *engine.Engine, _ engine.Tx) (*models.EmergencyView, error) {
		return e.EmergencyRecordsOf(patient)
	})
}
