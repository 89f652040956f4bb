package contracts

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/mediblock/chaincode/engine"
	"github.com/mediblock/chaincode/models"
)

// CreateLink opens a new link for a patient with its first record and returns the
// link index. The caller must be a doctor appointed by the patient.
func (c *MediBlockContract) CreateLink(ctx contractapi.TransactionContextInterface, patient, title, date, data string) (int, error) {
	var link int
	err := c.submit(ctx, "CreateLink", func(e *engine.Engine, tx engine.Tx) error {
		var err error
		link, err = e.CreateLink(tx, patient, title, date, data)
		return err
	})
	return link, err
}

// AppendRecord adds a record to an existing link and returns its index in the link
func (c *MediBlockContract) AppendRecord(ctx contractapi.TransactionContextInterface, patient string, link int, title, date, data string) (int, error) {
	var record int
	err := c.submit(ctx, "AppendRecord", func(e *engine.Engine, tx engine.Tx) error {
		var err error
		record, err = e.AppendRecord(tx, patient, link, title, date, data)
		return err
	})
	return record, err
}

// RecordsOf lists every record of the calling patient
func (c *MediBlockContract) RecordsOf(ctx contractapi.TransactionContextInterface) (*models.RecordsView, error) {
	return evaluate(c, ctx, "RecordsOf", func(e *engine.Engine, tx engine.Tx) (*models.RecordsView, error) {
		return e.RecordsOf(tx)
	})
}

// RecordsWithAccess lists the records of a patient the calling doctor currently
// holds grants for
func (c *MediBlockContract) RecordsWithAccess(ctx contractapi.TransactionContextInterface, patient string) (*models.RecordsView, error) {
	return evaluate(c, ctx, "RecordsWithAccess", func(e *engine.Engine, tx engine.Tx) (*models.RecordsView, error) {
		return e.RecordsWithAccess(tx, patient)
	})
}
