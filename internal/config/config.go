package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// MaxBatchLimit is the most notes a single batch pass may select.
const MaxBatchLimit = 50

// Environment variables that override file values.
const (
	EnvVaultPath = "OBSIDIAN_VAULT_PATH"
	EnvDBPath    = "SELENE_DB_PATH"
)

// Fixed fallbacks used when neither the config file nor the environment set a path.
const (
	DefaultVaultPath = "/selene/vault"
	DefaultDBPath    = "/selene/data/selene.db"
)

type Config struct {
	Database Database `yaml:"database"`
	Vault    Vault    `yaml:"vault"`
	Export   Export   `yaml:"export"`
	Server   Server   `yaml:"server"`
	Watch    Watch    `yaml:"watch"`
	Logging  Logging  `yaml:"logging"`
}

type Database struct {
	Path string `yaml:"path"`
}

type Vault struct {
	Path   string `yaml:"path"`
	Folder string `yaml:"folder"`
}

type Export struct {
	BatchLimit int `yaml:"batch_limit"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := validation.ValidateStruct(&c.Vault,
		validation.Field(&c.Vault.Path, validation.Required),
		validation.Field(&c.Vault.Folder, validation.Required),
	); err != nil {
		return fmt.Errorf("vault: %w", err)
	}
	if err := validation.ValidateStruct(&c.Export,
		validation.Field(&c.Export.BatchLimit, validation.Required, validation.Min(1), validation.Max(MaxBatchLimit)),
	); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validation.ValidateStruct(&c.Watch,
		validation.Field(&c.Watch.Debounce, validation.Required, validation.Min(100*time.Millisecond)),
	); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Level, validation.In("DEBUG", "INFO", "WARN", "ERROR")),
	)
}

// ConfigDir returns the XDG config directory for selene.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "selene")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/selene/config.yaml > ./config.yaml.
// An empty result with a nil error means no file exists and defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the defaults.
// Environment overrides are applied after the file and the result is validated.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		data = raw
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
// ${VAR} references are expanded before decoding.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Database: Database{Path: DefaultDBPath},
		Vault: Vault{
			Path:   DefaultVaultPath,
			Folder: "Selene",
		},
		Export:  Export{BatchLimit: 50},
		Server:  Server{Port: 8000},
		Watch:   Watch{Debounce: 2 * time.Second},
		Logging: Logging{Level: "INFO"},
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvVaultPath); v != "" {
		c.Vault.Path = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
