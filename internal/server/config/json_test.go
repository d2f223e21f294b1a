package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":            "www.example:9000",
		"database_dsn":                  "auth.db",
		"token_validity_duration":       "24h",
		"default_role":                  "member",
		"share_role":                    "viewer",
		"reset_code_length":             8,
		"reset_code_validity_duration":  "30m",
		"verify_code_digits":            4,
		"verify_code_mask":              "##-##",
		"verify_code_validity_duration": "120s",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "auth.db", cfg.DatabaseDSN)
		assert.Equal(t, 24*time.Hour, cfg.TokenValidityDuration)
		assert.Equal(t, "member", cfg.DefaultRole)
		assert.Equal(t, "viewer", cfg.ShareRole)
		assert.Equal(t, 8, cfg.ResetCodeLength)
		assert.Equal(t, 30*time.Minute, cfg.ResetCodeValidityDuration)
		assert.Equal(t, 4, cfg.VerifyCodeDigits)
		assert.Equal(t, "##-##", cfg.VerifyCodeMask)
		assert.Equal(t, 120*time.Second, cfg.VerifyCodeValidityDuration)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP:           "defaults:1234",
			DatabaseDSN:                "auth.db",
			TokenValidityDuration:      48 * time.Hour,
			DefaultRole:                "user",
			ShareRole:                  "guest",
			ResetCodeLength:            6,
			ResetCodeValidityDuration:  15 * time.Minute,
			VerifyCodeDigits:           6,
			VerifyCodeMask:             "###-###",
			VerifyCodeValidityDuration: 10 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "auth.db", cfg.DatabaseDSN)
		assert.Equal(t, 48*time.Hour, cfg.TokenValidityDuration)
		assert.Equal(t, "user", cfg.DefaultRole)
		assert.Equal(t, "guest", cfg.ShareRole)
		assert.Equal(t, 6, cfg.ResetCodeLength)
		assert.Equal(t, 15*time.Minute, cfg.ResetCodeValidityDuration)
		assert.Equal(t, 6, cfg.VerifyCodeDigits)
		assert.Equal(t, "###-###", cfg.VerifyCodeMask)
		assert.Equal(t, 10*time.Minute, cfg.VerifyCodeValidityDuration)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
