package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Config holds the settings of the chaincode process and the local ledger CLI
type Config struct {
	ChaincodeID   string `mapstructure:"CHAINCODE_ID"`
	ServerAddress string `mapstructure:"CHAINCODE_SERVER_ADDRESS"`
	TLSDisabled   bool   `mapstructure:"CHAINCODE_TLS_DISABLED"`
	TLSKeyFile    string `mapstructure:"CHAINCODE_TLS_KEY"`
	TLSCertFile   string `mapstructure:"CHAINCODE_TLS_CERT"`
	ClientCACert  string `mapstructure:"CHAINCODE_CLIENT_CA_CERT"`
	LogLevel      string `mapstructure:"MEDIBLOCK_LOG_LEVEL"`
	LogFormat     string `mapstructure:"MEDIBLOCK_LOG_FORMAT"`
	LedgerPath    string `mapstructure:"MEDIBLOCK_LEDGER_PATH"`
}

var keys = []string{
	"CHAINCODE_ID",
	"CHAINCODE_SERVER_ADDRESS",
	"CHAINCODE_TLS_DISABLED",
	"CHAINCODE_TLS_KEY",
	"CHAINCODE_TLS_CERT",
	"CHAINCODE_CLIENT_CA_CERT",
	"MEDIBLOCK_LOG_LEVEL",
	"MEDIBLOCK_LOG_FORMAT",
	"MEDIBLOCK_LEDGER_PATH",
}

// Load reads the configuration from the environment and, when present, from .env
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads the configuration from the environment and an optional file.
// Environment variables win over the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("CHAINCODE_TLS_DISABLED", true)
	v.SetDefault("MEDIBLOCK_LOG_LEVEL", "info")
	v.SetDefault("MEDIBLOCK_LOG_FORMAT", "json")
	v.SetDefault("MEDIBLOCK_LEDGER_PATH", "./mediblock-ledger")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %v", key, err)
		}
	}

	// the file is optional, a broken one is not
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// IsExternalService reports whether the chaincode runs as an external service
// instead of being launched by the peer
func (c *Config) IsExternalService() bool {
	return c.ServerAddress != ""
}

// Validate checks the settings needed by the selected run mode
func (c *Config) Validate() error {
	if !c.IsExternalService() {
		return nil
	}
	if c.ChaincodeID == "" {
		return fmt.Errorf("CHAINCODE_ID is required when CHAINCODE_SERVER_ADDRESS is set")
	}
	if !c.TLSDisabled && (c.TLSKeyFile == "" || c.TLSCertFile == "") {
		return fmt.Errorf("CHAINCODE_TLS_KEY and CHAINCODE_TLS_CERT are required when TLS is enabled")
	}
	return nil
}
