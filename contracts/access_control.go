package contracts

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/mediblock/chaincode/engine"
	"github.com/mediblock/chaincode/models"
)

// GiveAccess lets a doctor read one link of the calling patient for
// durationSeconds. Granting again replaces the previous expiry.
func (c *MediBlockContract) GiveAccess(ctx contractapi.TransactionContextInterface, link int, doctor string, durationSeconds int64) error {
	return c.submit(ctx, "GiveAccess", func(e *engine.Engine, tx engine.Tx) error {
		return e.GiveAccess(tx, tx.Sender, link, doctor, durationSeconds)
	})
}

// RevokeAccess removes a doctor's grant on one link of the calling patient
func (c *MediBlockContract) RevokeAccess(ctx contractapi.TransactionContextInterface, link int, doctor string) error {
	return c.submit(ctx, "RevokeAccess", func(e *engine.Engine, tx engine.Tx) error {
		return e.RevokeAccess(tx, tx.Sender, link, doctor)
	})
}

// HasAccess reports whether a doctor may read a link of a patient at the
// transaction time
func (c *MediBlockContract) HasAccess(ctx contractapi.TransactionContextInterface, patient string, link int, doctor string) (bool, error) {
	return evaluate(c, ctx, "HasAccess", func(e *engine.Engine, tx engine.Tx) (bool, error) {
		return e.HasAccess(tx, patient, link, doctor)
	})
}

// AccessGrants lists the valid grants on one link of the calling patient
func (c *MediBlockContract) AccessGrants(ctx contractapi.TransactionContextInterface, link int) ([]models.Grant, error) {
	return evaluate(c, ctx, "AccessGrants", func(e *engine.Engine, tx engine.Tx) ([]models.Grant, error) {
		return e.AccessGrants(tx, tx.Sender, link)
	})
}
