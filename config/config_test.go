package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "energyhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestLoadDefaults verifica os valores padrão
func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Second, cfg.Database.SyncInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Market.RequireConsumerRole)
}

// TestLoadFileEnvAndFlags verifica a precedência arquivo < ambiente < flags
func TestLoadFileEnvAndFlags(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9000"
database:
  driver: sqlite3
  dsn: /tmp/journal.db
  sync_interval: 500ms
log:
  level: warn
  development: true
market:
  require_consumer_role: true
`)
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvHTTPAddr, ":9100")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load([]string{"--config", path, "--log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "/tmp/journal.db", cfg.Database.DSN)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.SyncInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.True(t, cfg.Market.RequireConsumerRole)
}

// TestLoadConfigFromEnv verifica o arquivo indicado pela variável de ambiente
func TestLoadConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "http:\n  addr: \":7000\"\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvHTTPAddr, "")

	cfg, err := Load([]string{"--addr", ":7001"})
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.HTTP.Addr)
}

// TestLoadErrors verifica arquivo ausente, YAML inválido e flag desconhecida
func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvConfig, "")

	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "ausente.yaml")})
	assert.Error(t, err)

	_, err = Load([]string{"--config", writeConfig(t, "http: [")})
	assert.Error(t, err)

	_, err = Load([]string{"--porta", "1"})
	assert.Error(t, err)
}

// TestApplyEnv verifica as variáveis de banco
func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		EnvDatabaseDriver: "sqlite3",
		EnvDatabaseDSN:    "file:journal.db",
	}
	cfg.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "file:journal.db", cfg.Database.DSN)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

// TestValidate verifica a conversão das contas
func TestValidate(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	arbitrator := solana.NewWallet().PublicKey()
	target := solana.NewWallet().PublicKey()

	cfg := Default()
	cfg.Ledger.Admin = admin.String()
	cfg.Arbitration.Arbitrator = arbitrator.String()

	accts, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, admin, accts.Admin)
	assert.Equal(t, arbitrator, accts.Arbitrator)
	assert.Equal(t, arbitrator, accts.MetaEvidenceTarget)

	cfg.Arbitration.MetaEvidenceTarget = target.String()
	accts, err = cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, target, accts.MetaEvidenceTarget)
}

// TestValidateErrors verifica os campos obrigatórios e inválidos
func TestValidateErrors(t *testing.T) {
	valid := Default()
	valid.Ledger.Admin = solana.NewWallet().PublicKey().String()
	valid.Arbitration.Arbitrator = solana.NewWallet().PublicKey().String()

	cases := map[string]func(c *Config){
		"sem admin":          func(c *Config) { c.Ledger.Admin = "" },
		"sem árbitro":        func(c *Config) { c.Arbitration.Arbitrator = "" },
		"admin inválido":     func(c *Config) { c.Ledger.Admin = "não-é-base58" },
		"conta zerada":       func(c *Config) { c.Arbitration.Arbitrator = "11111111111111111111111111111111" },
		"alvo inválido":      func(c *Config) { c.Arbitration.MetaEvidenceTarget = "0OIl" },
		"driver":             func(c *Config) { c.Database.Driver = "mysql" },
		"intervalo inválido": func(c *Config) { c.Database.DSN = "x"; c.Database.SyncInterval = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			_, err := cfg.Validate()
			assert.Error(t, err)
		})
	}
}
