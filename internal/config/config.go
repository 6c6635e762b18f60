// Package config defines the configuration of the inventory tool.
package config

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/abgdnv/inventory/internal/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// ServiceName prefixes environment variables: INVENTORY_STORAGE_PATH, INVENTORY_LOG_LEVEL, ...
const ServiceName = "inventory"

type Config struct {
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
	Shutdown ShutdownConfig `koanf:"shutdown"`
}

// Flag names understood by RegisterFlags.
const (
	FlagConfig   = configloader.FlagConfig
	FlagDataFile = "data-file"
	FlagLogLevel = "log-level"
	FlagLogFile  = "log-file"
)

// FlagKeys maps command-line flags to configuration keys.
var FlagKeys = map[string]string{
	FlagDataFile: "storage.path",
	FlagLogLevel: "log.level",
	FlagLogFile:  "log.file",
}

// RegisterFlags declares the command-line flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", configloader.DefaultConfigFile, "Path to the YAML config file.")
	fs.StringP(FlagDataFile, "f", "", "Path to the products data file.")
	fs.StringP(FlagLogLevel, "v", "", "Log verbosity level (debug, info, warn, error).")
	fs.String(FlagLogFile, "", "Write logs to this file instead of stderr.")
}

// Load reads the configuration from the config file, .env, environment and flags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	return configloader.Load[Config](ServiceName, flags, FlagKeys)
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Storage.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks the configuration values and fills in defaults.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
