package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. DISTRIBUTOR_DB_HOST.
const EnvPrefix = "DISTRIBUTOR_"

type Database struct {
	Name     string `json:"name" yaml:"name" env:"DB_NAME"`
	Host     string `json:"host" yaml:"host" env:"DB_HOST"`
	Port     string `json:"port" yaml:"port" env:"DB_PORT"`
	User     string `json:"user" yaml:"user" env:"DB_USER"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" env:"DB_PASSWORD"`
}

type Config struct {
	Database    Database `json:"database" yaml:"database"`
	JournalPath string   `json:"journal_path" yaml:"journal_path" env:"JOURNAL_PATH"`
	WebEnabled  bool     `json:"web_enabled" yaml:"web_enabled" env:"WEB_ENABLED"`
	WebPort     int      `json:"web_port" yaml:"web_port" env:"WEB_PORT"`
	LogPath     string   `json:"log_path" yaml:"log_path" env:"LOG_PATH"`
	LogLevel    string   `json:"log_level" yaml:"log_level" env:"LOG_LEVEL"`

	// file is the configuration as read from disk, before environment
	// overrides; overridden holds the variables that were set.
	file       *Config
	overridden []string
}

func Default() Config {
	return Config{
		Database: Database{Host: "localhost", Port: "3306"},
		WebPort:  8080,
		LogLevel: "info",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "distributor", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the file at path, then applies environment overrides. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if err == nil {
		if err := decode(path, data, &config); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	file := config
	var overridden []string
	opts := env.Options{
		Prefix: EnvPrefix,
		OnSet: func(key string, _ interface{}, _ bool) {
			if _, ok := os.LookupEnv(key); ok {
				overridden = append(overridden, key)
			}
		},
	}
	if err := env.ParseWithOptions(&config, opts); err != nil {
		return Config{}, fmt.Errorf("config environment: %w", err)
	}
	config.file = &file
	config.overridden = overridden

	return config, nil
}

// Overridden lists the environment variables applied by Load.
func (c Config) Overridden() []string {
	return append([]string(nil), c.overridden...)
}

// Save writes cfg in the format implied by the extension. Values that came
// from the environment are not persisted; the file keeps what it held.
func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	if cfg.file != nil {
		for _, key := range cfg.overridden {
			cfg.restore(key, *cfg.file)
		}
	}

	data, err := encode(path, cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func (c *Config) restore(key string, file Config) {
	switch strings.TrimPrefix(key, EnvPrefix) {
	case "DB_NAME":
		c.Database.Name = file.Database.Name
	case "DB_HOST":
		c.Database.Host = file.Database.Host
	case "DB_PORT":
		c.Database.Port = file.Database.Port
	case "DB_USER":
		c.Database.User = file.Database.User
	case "DB_PASSWORD":
		c.Database.Password = file.Database.Password
	case "JOURNAL_PATH":
		c.JournalPath = file.JournalPath
	case "WEB_ENABLED":
		c.WebEnabled = file.WebEnabled
	case "WEB_PORT":
		c.WebPort = file.WebPort
	case "LOG_PATH":
		c.LogPath = file.LogPath
	case "LOG_LEVEL":
		c.LogLevel = file.LogLevel
	}
}

// Resolve fills paths left empty with files next to the config file.
func (c *Config) Resolve(configPath string) {
	dir := filepath.Dir(configPath)
	if c.JournalPath == "" {
		c.JournalPath = filepath.Join(dir, "journal.db")
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(dir, "distributor.log")
	}
	if c.WebPort == 0 {
		c.WebPort = 8080
	}
	if c.Database.Port == "" {
		c.Database.Port = "3306"
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func encode(path string, cfg Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}
