package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Model != def.Model || cfg.MinScore != def.MinScore || cfg.Color != "auto" {
		t.Fatalf("cfg %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(write(t, `
model = "ner_en"
min_score = 0.8
chunk_size = 64
chunk_overlap = 8
color = "never"
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "ner_en" || cfg.MinScore != 0.8 || cfg.ChunkSize != 64 || cfg.Color != "never" {
		t.Fatalf("cfg %+v", cfg)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	if _, err := Load(write(t, "model = [broken")); err == nil {
		t.Fatal("expected error")
	}
}

func TestNormalize(t *testing.T) {
	cfg := normalize(Config{
		MinScore:     2.0,
		ChunkSize:    10,
		ChunkOverlap: 50,
		Color:        "sometimes",
	})
	if cfg.MinScore != defaultMinScore {
		t.Fatalf("min score %f", cfg.MinScore)
	}
	if cfg.ChunkOverlap != 9 {
		t.Fatalf("overlap %d", cfg.ChunkOverlap)
	}
	if cfg.Color != "auto" {
		t.Fatalf("color %q", cfg.Color)
	}
	if cfg.TimeoutSeconds <= 0 {
		t.Fatalf("timeout %d", cfg.TimeoutSeconds)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got := expandHome("~/.glint/history.db")
	if !strings.HasPrefix(got, home) {
		t.Fatalf("got %q", got)
	}
	if expandHome("/abs/path") != "/abs/path" {
		t.Fatal("absolute path must pass through")
	}
}
