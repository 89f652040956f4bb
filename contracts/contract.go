package contracts

import (
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/rs/zerolog"

	"github.com/mediblock/chaincode/engine"
	"github.com/mediblock/chaincode/state"
	"github.com/mediblock/chaincode/utils"
)

// AddressAttribute is the enrolment certificate attribute that pins a client to
// an explicit address.
const AddressAttribute = "mediblock.address"

// MediBlockContract exposes the record custody engine as Fabric transactions
type MediBlockContract struct {
	contractapi.Contract
	log zerolog.Logger
}

// NewMediBlockContract creates the contract
func NewMediBlockContract(log zerolog.Logger) *MediBlockContract {
	c := &MediBlockContract{log: log.With().Str("contract", "mediblock").Logger()}
	c.Name = "MediBlockContract"
	return c
}

// submit runs a mutating operation inside a write batch. The batch is flushed to
// the stub, with its event, only when op succeeds.
func (c *MediBlockContract) submit(ctx contractapi.TransactionContextInterface, function string, op func(e *engine.Engine, tx engine.Tx) error) error {
	tx, err := transaction(ctx)
	if err != nil {
		return err
	}
	stub := ctx.GetStub()
	logger := c.log.With().Str("function", function).Str("txId", stub.GetTxID()).Str("sender", tx.Sender).Logger()

	batch := state.NewBatch(stub)
	if err := op(engine.New(batch), tx); err != nil {
		batch.Discard()
		logger.Warn().Err(err).Msg("transaction rejected")
		return err
	}
	if err := batch.Commit(); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return err
	}

	logger.Debug().Int("writes", batch.Size()).Msg("transaction applied")
	return nil
}

// evaluate runs a read-only operation directly against the stub.
func evaluate[T any](c *MediBlockContract, ctx contractapi.TransactionContextInterface, function string, op func(e *engine.Engine, tx engine.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := transaction(ctx)
	if err != nil {
		return zero, err
	}

	out, err := op(engine.New(ctx.GetStub()), tx)
	if err != nil {
		c.log.Debug().Err(err).Str("function", function).Str("sender", tx.Sender).Msg("query rejected")
		return zero, err
	}
	return out, nil
}

func transaction(ctx contractapi.TransactionContextInterface) (engine.Tx, error) {
	sender, err := CallerAddress(ctx.GetClientIdentity())
	if err != nil {
		return engine.Tx{}, err
	}
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return engine.Tx{}, fmt.Errorf("failed to get transaction timestamp: %v", err)
	}
	return engine.Tx{Sender: sender, Time: ts.AsTime()}, nil
}

// CallerAddress resolves the address of the submitting client: the address
// attribute of its certificate if present, else the hash of the certificate's
// public key, else the hash of its identity string.
func CallerAddress(id cid.ClientIdentity) (string, error) {
	if id == nil {
		return "", fmt.Errorf("client identity is required")
	}

	value, found, err := id.GetAttributeValue(AddressAttribute)
	if err != nil {
		return "", fmt.Errorf("failed to read %s attribute: %v", AddressAttribute, err)
	}
	if found {
		address, err := utils.NormalizeAddress(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s attribute: %v", engine.ErrInvalidArgument, AddressAttribute, err)
		}
		return address, nil
	}

	if cert, err := id.GetX509Certificate(); err == nil && cert != nil {
		return utils.AddressFromCertificate(cert)
	}

	raw, err := id.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity: %v", err)
	}
	return utils.AddressFromID(raw), nil
}
