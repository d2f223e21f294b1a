package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ivanpetrenko/authgate/internal/flagx"
	"github.com/ivanpetrenko/authgate/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP           string         `json:"endpoint_addr_http"`
	DatabaseDSN                string         `json:"database_dsn"`
	TokenValidityDuration      timex.Duration `json:"token_validity_duration"`
	DefaultRole                string         `json:"default_role"`
	ShareRole                  string         `json:"share_role"`
	ResetCodeLength            int            `json:"reset_code_length"`
	ResetCodeValidityDuration  timex.Duration `json:"reset_code_validity_duration"`
	VerifyCodeDigits           int            `json:"verify_code_digits"`
	VerifyCodeMask             string         `json:"verify_code_mask"`
	VerifyCodeValidityDuration timex.Duration `json:"verify_code_validity_duration"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and command-line
// flags as part of the full configuration process.
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

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.DefaultRole = c.DefaultRole
	config.ShareRole = c.ShareRole
	config.ResetCodeLength = c.ResetCodeLength
	config.ResetCodeValidityDuration = time.Duration(c.ResetCodeValidityDuration.Duration)
	config.VerifyCodeDigits = c.VerifyCodeDigits
	config.VerifyCodeMask = c.VerifyCodeMask
	config.VerifyCodeValidityDuration = time.Duration(c.VerifyCodeValidityDuration.Duration)
}
