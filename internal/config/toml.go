// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/verte-zerg/lbview/internal/model"
)

// EnvEndpoint overrides the configured endpoint.
const EnvEndpoint = "LBVIEW_ENDPOINT"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Source SourceConfig `toml:"source"`
	Viewer ViewerConfig `toml:"viewer"`
	View   ViewConfig   `toml:"view"`
	Export ExportConfig `toml:"export"`
}

// SourceConfig maps settings for the scoring API.
type SourceConfig struct {
	Endpoint    *string `toml:"endpoint"`
	PageSize    *int    `toml:"page-size"`
	Pages       *int    `toml:"pages"`
	Concurrency *int    `toml:"concurrency"`
	Timeout     *string `toml:"timeout"`
}

// ViewerConfig describes the pinned viewer row.
type ViewerConfig struct {
	Name     *string  `toml:"name"`
	Rank     *int     `toml:"rank"`
	Overall  *float64 `toml:"overall"`
	Max      *float64 `toml:"max"`
	Phy      *float64 `toml:"phy"`
	Chem     *float64 `toml:"chem"`
	Maths    *float64 `toml:"maths"`
	Accuracy *float64 `toml:"accuracy"`
}

// ViewConfig maps layout settings.
type ViewConfig struct {
	DesktopWidth *int `toml:"desktop-width"`
}

// ExportConfig maps export settings.
type ExportConfig struct {
	Dir *string `toml:"dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := cfg.Source.TimeoutDuration(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// LoadEnv loads a .env file (missing file is not an error) and applies
// environment overrides to cfg.
func LoadEnv(path string, cfg *FileConfig) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		cfg.Source.Endpoint = &v
	}
	return nil
}

// TimeoutDuration parses the timeout. Zero means unset.
func (s SourceConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == nil || strings.TrimSpace(*s.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*s.Timeout))
	if err != nil {
		return 0, fmt.Errorf("invalid source.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid source.timeout: must be >= 0")
	}
	return d, nil
}

// Apply overlays configured viewer fields onto base.
func (v ViewerConfig) Apply(base model.Viewer) model.Viewer {
	if v.Name != nil {
		base.Name = *v.Name
	}
	if v.Rank != nil {
		base.Rank = *v.Rank
	}
	if v.Overall != nil {
		base.Overall = *v.Overall
	}
	if v.Max != nil {
		base.MaxScore = *v.Max
	}
	if v.Phy != nil {
		base.Phy = *v.Phy
	}
	if v.Chem != nil {
		base.Chem = *v.Chem
	}
	if v.Maths != nil {
		base.Maths = *v.Maths
	}
	if v.Accuracy != nil {
		base.Accuracy = *v.Accuracy
	}
	return base
}
