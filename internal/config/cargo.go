package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// CrateName reads the crate name from Cargo.toml in the source root,
// normalized the way rust-analyzer spells it inside SCIP symbols
// (hyphens become underscores). Returns "" when no manifest exists or the
// manifest is a bare workspace, in which case no symbol classifies as
// same-crate by name.
func CrateName(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "Cargo.toml"))
	if err != nil {
		return ""
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return ""
	}
	return strings.ReplaceAll(manifest.Package.Name, "-", "_")
}
