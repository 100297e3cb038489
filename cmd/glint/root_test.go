package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEnsureConfig_FlagOverrides(t *testing.T) {
	ctx := &commandContext{
		configFlag:       writeConfig(t, "model = \"ner_en\"\nmin_score = 0.9\n"),
		modelFlag:        "ner_multi",
		minScoreFlag:     0.3,
		chunkSizeFlag:    50,
		chunkOverlapFlag: 5,
		noColorFlag:      true,
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "ner_multi" || cfg.MinScore != 0.3 || cfg.ChunkSize != 50 || cfg.ChunkOverlap != 5 {
		t.Fatalf("cfg %+v", cfg)
	}
	if cfg.Color != "never" {
		t.Fatalf("color %q", cfg.Color)
	}
}

func TestEnsureConfig_UnsetFlagsKeepFile(t *testing.T) {
	ctx := &commandContext{
		configFlag:       writeConfig(t, "model = \"ner_en\"\nmin_score = 0.9\n"),
		minScoreFlag:     -1,
		chunkOverlapFlag: -1,
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "ner_en" || cfg.MinScore != 0.9 {
		t.Fatalf("cfg %+v", cfg)
	}
}

func TestBundleDir_ExplicitDirWins(t *testing.T) {
	dir := t.TempDir()
	ctx := &commandContext{
		configFlag:       writeConfig(t, ""),
		modelDirFlag:     dir,
		minScoreFlag:     -1,
		chunkOverlapFlag: -1,
	}
	got, name, err := ctx.bundleDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Fatalf("dir %q", got)
	}
	if name != filepath.Base(dir) {
		t.Fatalf("name %q", name)
	}
}

func TestBundleDir_NamedModelUnderRoot(t *testing.T) {
	root := t.TempDir()
	ctx := &commandContext{
		configFlag:       writeConfig(t, "models_root = \""+root+"\"\nmodel = \"ner_en\"\n"),
		minScoreFlag:     -1,
		chunkOverlapFlag: -1,
	}
	dir, name, err := ctx.bundleDir()
	if err != nil {
		t.Fatal(err)
	}
	if name != "ner_en" || dir != filepath.Join(root, "ner_en") {
		t.Fatalf("dir %q name %q", dir, name)
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, want := range []string{"demo", "extract", "model", "history"} {
		found := false
		for _, cmd := range root.Commands() {
			if strings.HasPrefix(cmd.Use, want) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", want)
		}
	}
}
