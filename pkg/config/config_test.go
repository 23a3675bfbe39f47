package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/chatterbox/pkg/observability"
)

// isolate points the file search at an empty directory and clears CHAT_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	saved := DefaultConfigPaths
	DefaultConfigPaths = []string{filepath.Join(dir, "app.yml")}
	t.Cleanup(func() { DefaultConfigPaths = saved })

	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, "CHAT_") {
			t.Setenv(key, "")
		}
	}
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func setRequired(t *testing.T) {
	t.Setenv("CHAT_DB_URL", "postgres://localhost/chat")
	t.Setenv("CHAT_AUTH_SK", "sk-pem")
	t.Setenv("CHAT_AUTH_PK", "pk-pem")
}

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns env value when set", "TEST_VAR", "default", "custom", "custom"},
		{"returns default when env not set", "TEST_VAR_NOT_SET", "default", "", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}
			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvTyped(t *testing.T) {
	t.Setenv("TEST_BOOL_ONE", "1")
	t.Setenv("TEST_BOOL_FALSE", "false")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "forty-two")
	t.Setenv("TEST_DURATION", "90s")

	assert.True(t, getEnvBool("TEST_BOOL_ONE", false))
	assert.False(t, getEnvBool("TEST_BOOL_FALSE", true))
	assert.True(t, getEnvBool("TEST_BOOL_UNSET", true))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_INT_BAD", 7))
	assert.Equal(t, int64(42), getEnvInt64("TEST_INT", 0))
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", 0))
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION_UNSET", time.Second))
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	isolate(t)
	setRequired(t)
	t.Setenv("CHAT_PORT", "9000")
	t.Setenv("CHAT_MEMBERSHIP_CACHE_TTL", "5s")
	t.Setenv("CHAT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Source)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, "postgres://localhost/chat", cfg.Database.URL)
	assert.Equal(t, 5*time.Second, cfg.Cache.MembershipTTL)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.Level())
	assert.Equal(t, Default().Server.BaseDir, cfg.Server.BaseDir)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "chat.yml")
	writeFile(t, path, `
server:
  port: 6688
  base_dir: /var/lib/chat
  read_timeout: 5s
database:
  url: postgres://file/chat
  max_conns: 8
auth:
  sk: file-sk
  pk_file: /etc/chat/pk.pem
cache:
  membership_ttl: 1m
observability:
  log_level: warn
`)
	t.Setenv(ConfigEnv, path)
	t.Setenv("CHAT_DB_URL", "postgres://env/chat")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 6688, cfg.Server.Port)
	assert.Equal(t, "/var/lib/chat", cfg.Server.BaseDir)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, Default().Server.WriteTimeout, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "postgres://env/chat", cfg.Database.URL, "env overrides file")
	assert.Equal(t, 8, cfg.Database.MaxConns)
	assert.Equal(t, "file-sk", cfg.Auth.PrivateKey)
	assert.Equal(t, "/etc/chat/pk.pem", cfg.Auth.PublicKeyFile)
	assert.Equal(t, time.Minute, cfg.Cache.MembershipTTL)
	assert.Equal(t, observability.WarnLevel, cfg.Observability.Level())
}

func TestLoadConfig_DefaultPath(t *testing.T) {
	dir := isolate(t)
	setRequired(t)
	writeFile(t, filepath.Join(dir, "app.yml"), "server:\n  port: 7000\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "app.yml"), cfg.Source)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		dir := isolate(t)
		t.Setenv(ConfigEnv, filepath.Join(dir, "nope.yml"))

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "nope.yml")
	})

	t.Run("unknown key", func(t *testing.T) {
		dir := isolate(t)
		setRequired(t)
		path := filepath.Join(dir, "bad.yml")
		writeFile(t, path, "server:\n  prot: 1\n")
		t.Setenv(ConfigEnv, path)

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("missing keys", func(t *testing.T) {
		isolate(t)
		t.Setenv("CHAT_DB_URL", "postgres://localhost/chat")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "private key")
	})

	t.Run("empty file is fine", func(t *testing.T) {
		dir := isolate(t)
		setRequired(t)
		path := filepath.Join(dir, "empty.yml")
		writeFile(t, path, "")
		t.Setenv(ConfigEnv, path)

		_, err := LoadConfig()
		assert.NoError(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.URL = "postgres://localhost/chat"
		cfg.Auth.PrivateKeyFile = "/keys/sk.pem"
		cfg.Auth.PublicKeyFile = "/keys/pk.pem"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server port"},
		{"no base dir", func(c *Config) { c.Server.BaseDir = "" }, "base dir"},
		{"no upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max upload"},
		{"no db url", func(c *Config) { c.Database.URL = "" }, "database URL"},
		{"min above max", func(c *Config) { c.Database.MinConns = 50 }, "min conns"},
		{"no public key", func(c *Config) { c.Auth.PublicKeyFile = "" }, "public key"},
		{"negative ttl", func(c *Config) { c.Cache.MembershipTTL = -time.Second }, "TTL"},
		{"bad log level", func(c *Config) { c.Observability.LogLevel = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestAuthConfig_KeyPEMs(t *testing.T) {
	dir := t.TempDir()
	pkPath := filepath.Join(dir, "pk.pem")
	writeFile(t, pkPath, "public-pem")

	priv, pub, err := AuthConfig{PrivateKey: "inline-sk", PublicKeyFile: pkPath}.KeyPEMs()
	require.NoError(t, err)
	assert.Equal(t, []byte("inline-sk"), priv)
	assert.Equal(t, []byte("public-pem"), pub)

	_, _, err = AuthConfig{PrivateKeyFile: filepath.Join(dir, "missing.pem"), PublicKey: "x"}.KeyPEMs()
	assert.ErrorContains(t, err, "private key")
}
