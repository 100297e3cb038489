// Package config reads glint's TOML configuration. Every field has a
// sensible default so the tool works with no config file at all; flags
// override whatever the file says.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultModel       = "ner_multi"
	defaultMinScore    = 0.5
	defaultTimeout     = 30 * time.Second
	defaultHistoryPath = "~/.glint/history.db"
)

type Config struct {
	// Model names a bundle under ModelsRoot. ModelDir, when set, points at
	// a bundle directly and wins over Model.
	Model      string `toml:"model"`
	ModelDir   string `toml:"model_dir"`
	ModelsRoot string `toml:"models_root"`

	MinScore       float64 `toml:"min_score"`
	ChunkSize      int     `toml:"chunk_size"`
	ChunkOverlap   int     `toml:"chunk_overlap"`
	TimeoutSeconds int     `toml:"timeout_seconds"`

	// Color is auto, always or never.
	Color       string `toml:"color"`
	HistoryPath string `toml:"history_path"`
}

func Default() Config {
	return Config{
		Model:          defaultModel,
		MinScore:       defaultMinScore,
		ChunkSize:      0,  // 0 lets the chunker pick its default
		ChunkOverlap:   -1, // negative lets the chunker pick its default; 0 is literal
		TimeoutSeconds: int(defaultTimeout.Seconds()),
		Color:          "auto",
		HistoryPath:    defaultHistoryPath,
	}
}

func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".glint", "config.toml"), nil
}

// Load reads the file at path. A missing file yields defaults; a present
// but unparseable file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return normalize(cfg), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return normalize(cfg), nil
}

func normalize(cfg Config) Config {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		cfg.MinScore = defaultMinScore
	}
	if cfg.ChunkSize < 0 {
		cfg.ChunkSize = 0
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = -1
	}
	if cfg.ChunkSize > 0 && cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize - 1
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = int(defaultTimeout.Seconds())
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		cfg.Color = "auto"
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = defaultHistoryPath
	}
	cfg.HistoryPath = expandHome(cfg.HistoryPath)
	cfg.ModelsRoot = expandHome(cfg.ModelsRoot)
	cfg.ModelDir = expandHome(cfg.ModelDir)
	return cfg
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
