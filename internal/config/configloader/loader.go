package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = "config.yaml"

// FlagConfig is the name of the flag holding the config file path.
const FlagConfig = "config"

const defaultEnvFile = ".env"

type Validator interface {
	Validate() error
}

// validatorPtr constrains PT to *T implementing Validator, so Load can allocate the config itself.
type validatorPtr[T any] interface {
	*T
	Validator
}

// Load builds T from, in increasing priority: the YAML config file, the .env file,
// environment variables prefixed with <SERVICENAME>_, and the command-line flags in flags
// that were set explicitly. flagKeys maps flag names to configuration keys; flags may be nil.
func Load[T any, PT validatorPtr[T]](serviceName string, flags *pflag.FlagSet, flagKeys map[string]string) (PT, error) {
	cfg := PT(new(T))
	// Create a new Koanf instance
	k := koanf.New(".")

	configFile := DefaultConfigFile
	if flags != nil {
		if v, err := flags.GetString(FlagConfig); err == nil && v != "" {
			configFile = v
		}
	}
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))

	// 1. Load configuration from yaml file
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 2. Load environment variables from .env file
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	if envFileMap, err := godotenv.Read(defaultEnvFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		// Load the envMap into Koanf
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. Load environment variables from the system
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Explicitly set flags, the highest priority
	if flags != nil && len(flagKeys) > 0 {
		flagMap := make(map[string]any)
		flags.Visit(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				flagMap[key] = f.Value.String()
			}
		})
		if err := k.Load(confmap.Provider(flagMap, "."), nil); err != nil {
			log.Printf("WARN: error loading command-line flags: %v", err)
		}
	}

	// 5. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
