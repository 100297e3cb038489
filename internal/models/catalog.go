// Package models manages pretrained model bundles: the catalog of known
// bundles and their download, verification and installation under the
// local models root. A bundle is a directory holding model.onnx,
// labels.json and tokenizer.json.
package models

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

//go:embed registry.json
var embeddedCatalog []byte

type Bundle struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"display_name"`
	Version      string   `json:"version"`
	Language     string   `json:"language"`
	URL          string   `json:"url"`
	Checksum     string   `json:"checksum"`
	SizeBytes    int64    `json:"size_bytes"`
	EntityTypes  []string `json:"entity_types"`
	Description  string   `json:"description"`
	Architecture string   `json:"architecture"`
	F1Score      float64  `json:"f1_score"`
	License      string   `json:"license"`
	Recommended  bool     `json:"recommended"`
}

type Catalog struct {
	Version string   `json:"version"`
	Bundles []Bundle `json:"bundles"`
}

// LoadCatalog parses the catalog compiled into the binary.
func LoadCatalog() (Catalog, error) {
	var cat Catalog
	if err := json.Unmarshal(embeddedCatalog, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse bundle catalog: %w", err)
	}
	sort.Slice(cat.Bundles, func(i, j int) bool { return cat.Bundles[i].Name < cat.Bundles[j].Name })
	return cat, nil
}

func (c Catalog) Find(name string) (Bundle, bool) {
	for _, b := range c.Bundles {
		if b.Name == name {
			return b, true
		}
	}
	return Bundle{}, false
}

// DefaultRoot is where bundles live unless the config overrides it.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".glint", "models"), nil
}

func InstallPath(root, name string) string {
	return filepath.Join(root, name)
}

var requiredFiles = []string{"model.onnx", "labels.json", "tokenizer.json"}

// IsInstalled checks that all required bundle files are present.
func IsInstalled(root string, b Bundle) bool {
	base := InstallPath(root, b.Name)
	for _, f := range requiredFiles {
		if _, err := os.Stat(filepath.Join(base, f)); err != nil {
			return false
		}
	}
	return true
}
