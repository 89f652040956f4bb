package main

import (
	"fmt"
	"os"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/rs/zerolog"

	"github.com/mediblock/chaincode/config"
	"github.com/mediblock/chaincode/contracts"
	"github.com/mediblock/chaincode/logger"
)

// Version is set at build time
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading MediBlock chaincode config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating MediBlock chaincode logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("MediBlock chaincode stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	chaincode, err := newChaincode(log)
	if err != nil {
		return err
	}

	if !cfg.IsExternalService() {
		log.Info().Str("version", Version).Msg("starting MediBlock chaincode under the peer")
		if err := chaincode.Start(); err != nil {
			return fmt.Errorf("error starting MediBlock chaincode: %v", err)
		}
		return nil
	}

	tls, err := tlsProperties(cfg)
	if err != nil {
		return err
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.ChaincodeID,
		Address:  cfg.ServerAddress,
		CC:       chaincode,
		TLSProps: tls,
	}

	log.Info().Str("version", Version).Str("ccid", cfg.ChaincodeID).Str("address", cfg.ServerAddress).
		Bool("tls", !tls.Disabled).Msg("starting MediBlock chaincode server")
	if err := server.Start(); err != nil {
		return fmt.Errorf("error starting MediBlock chaincode server: %v", err)
	}
	return nil
}

func newChaincode(log zerolog.Logger) (*contractapi.ContractChaincode, error) {
	chaincode, err := contractapi.NewChaincode(contracts.NewMediBlockContract(log))
	if err != nil {
		return nil, fmt.Errorf("error creating MediBlock chaincode: %v", err)
	}

	chaincode.Info.Title = "MediBlock"
	chaincode.Info.Version = Version
	chaincode.Info.Description = "Patient-controlled medical record custody and time-bounded disclosure"
	return chaincode, nil
}

func tlsProperties(cfg *config.Config) (shim.TLSProperties, error) {
	if cfg.TLSDisabled {
		return shim.TLSProperties{Disabled: true}, nil
	}

	key, err := os.ReadFile(cfg.TLSKeyFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS key: %v", err)
	}
	cert, err := os.ReadFile(cfg.TLSCertFile)
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS certificate: %v", err)
	}

	props := shim.TLSProperties{Key: key, Cert: cert}
	if cfg.ClientCACert != "" {
		ca, err := os.ReadFile(cfg.ClientCACert)
		if err != nil {
			return shim.TLSProperties{}, fmt.Errorf("failed to read client CA certificate: %v", err)
		}
		props.ClientCACerts = ca
	}
	return props, nil
}
