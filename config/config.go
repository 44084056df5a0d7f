// Package config carrega a configuração do servidor do hub.
//
// A configuração vem de um único arquivo YAML indicado pela flag --config ou
// pela variável ENERGYHUB_CONFIG. Algumas variáveis de ambiente sobrescrevem
// valores do arquivo; flags de linha de comando têm a palavra final.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ferreirogomes/energytradehub/models"
)

const (
	EnvConfig         = "ENERGYHUB_CONFIG"
	EnvHTTPAddr       = "ENERGYHUB_HTTP_ADDR"
	EnvDatabaseDriver = "ENERGYHUB_DATABASE_DRIVER"
	EnvDatabaseDSN    = "ENERGYHUB_DATABASE_DSN"
	EnvLogLevel       = "ENERGYHUB_LOG_LEVEL"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Arbitration ArbitrationConfig `yaml:"arbitration"`
	Market      MarketConfig      `yaml:"market"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig configura o journal de eventos. DSN vazio desliga o journal.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "postgres" ou "sqlite3"
	DSN    string `yaml:"dsn"`
	// SyncInterval é o intervalo entre passadas do listener do journal.
	SyncInterval time.Duration `yaml:"sync_interval"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type LedgerConfig struct {
	// Admin é a conta inicializadora, que recebe ADMIN na construção.
	Admin string `yaml:"admin"`
}

type ArbitrationConfig struct {
	// Arbitrator é a conta autorizada a submeter decisões.
	Arbitrator         string `yaml:"arbitrator"`
	MetaEvidenceTarget string `yaml:"meta_evidence_target"`
	EvidenceURI        string `yaml:"evidence_uri"`
}

type MarketConfig struct {
	RequireConsumerRole bool `yaml:"require_consumer_role"`
}

// Default retorna a configuração com os valores padrão.
func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Addr: ":8080"},
		Database: DatabaseConfig{Driver: "postgres", SyncInterval: 2 * time.Second},
		Log:      LogConfig{Level: "info"},
		Arbitration: ArbitrationConfig{
			EvidenceURI: "evidence",
		},
	}
}

// Accounts são as contas já convertidas a partir do arquivo.
type Accounts struct {
	Admin              models.Account
	Arbitrator         models.Account
	MetaEvidenceTarget models.Account
}

// Load lê a configuração a partir dos argumentos de linha de comando, do
// arquivo indicado e do ambiente.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("energyhub", pflag.ContinueOnError)
	path := flags.String("config", os.Getenv(EnvConfig), "arquivo de configuração YAML")
	addr := flags.String("addr", "", "endereço HTTP (sobrescreve http.addr)")
	level := flags.String("log-level", "", "nível de log (sobrescreve log.level)")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *path != "" {
		if err := cfg.loadFile(*path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.Getenv)
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("falha ao ler configuração %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("falha ao interpretar configuração %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
	if v := getenv(EnvDatabaseDriver); v != "" {
		c.Database.Driver = v
	}
	if v := getenv(EnvDatabaseDSN); v != "" {
		c.Database.DSN = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate confere os campos obrigatórios e converte as contas.
func (c Config) Validate() (Accounts, error) {
	var accts Accounts
	if c.Ledger.Admin == "" {
		return accts, errors.New("ledger.admin é obrigatório")
	}
	if c.Arbitration.Arbitrator == "" {
		return accts, errors.New("arbitration.arbitrator é obrigatório")
	}
	var err error
	if accts.Admin, err = models.ParseAccount(c.Ledger.Admin); err != nil {
		return accts, fmt.Errorf("ledger.admin: %w", err)
	}
	if accts.Arbitrator, err = models.ParseAccount(c.Arbitration.Arbitrator); err != nil {
		return accts, fmt.Errorf("arbitration.arbitrator: %w", err)
	}
	accts.MetaEvidenceTarget = accts.Arbitrator
	if c.Arbitration.MetaEvidenceTarget != "" {
		if accts.MetaEvidenceTarget, err = models.ParseAccount(c.Arbitration.MetaEvidenceTarget); err != nil {
			return accts, fmt.Errorf("arbitration.meta_evidence_target: %w", err)
		}
	}
	if c.Database.DSN != "" && c.Database.SyncInterval <= 0 {
		return accts, errors.New("database.sync_interval deve ser positivo")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return accts, fmt.Errorf("database.driver desconhecido: %q", c.Database.Driver)
	}
	return accts, nil
}
