package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultFile = "studylink.yaml"

type Config struct {
	Files struct {
		Pairs string `yaml:"pairs" validate:"required"`
		Links string `yaml:"links" validate:"required"`
	} `yaml:"files"`
	Snapshot struct {
		DB string `yaml:"db" validate:"required"`
	} `yaml:"snapshot"`
	Log struct {
		Level       string `yaml:"level" validate:"oneof=debug info warn error"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Repair struct {
		// OnLoad runs the link repair pass whenever links.json is loaded.
		OnLoad bool `yaml:"on_load"`
	} `yaml:"repair"`
	Watch struct {
		Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
	} `yaml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Files.Pairs = "pdf_pairs.json"
	cfg.Files.Links = "links.json"
	cfg.Snapshot.DB = "studylink.db"
	cfg.Log.Level = "info"
	cfg.Repair.OnLoad = true
	cfg.Watch.Debounce = 500 * time.Millisecond
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("STUDYLINK_PAIRS_FILE"); v != "" {
		cfg.Files.Pairs = v
	}
	if v := os.Getenv("STUDYLINK_LINKS_FILE"); v != "" {
		cfg.Files.Links = v
	}
	if v := os.Getenv("STUDYLINK_DB"); v != "" {
		cfg.Snapshot.DB = v
	}
	if v := os.Getenv("STUDYLINK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
