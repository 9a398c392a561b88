package config

import (
	"encoding/json"
	"os"
	"time"

	"identikit/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct. The cleanup interval is carried as an integer
// number of minutes.
type JsonConfig struct {
	EndpointAddrHTTP       string `json:"endpoint_addr_http"`
	DatabaseDSN            string `json:"database_dsn"`
	Environment            string `json:"environment"`
	CleanupIntervalMinutes int    `json:"cleanup_interval_minutes"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.Environment != "" {
		config.Environment = c.Environment
	}
	if c.CleanupIntervalMinutes > 0 {
		config.CleanupInterval = time.Duration(c.CleanupIntervalMinutes) * time.Minute
	}
}
