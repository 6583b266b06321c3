package frontend

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// cargoManifest is the subset of Cargo.toml this frontend reads: the crate
// name, used to build module paths the way Rust's own `crate::` prefix
// would.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// readCrateName loads root/Cargo.toml and returns the package name, or ""
// if no manifest is present (a workspace member directory, or a root
// scanned without its manifest).
func readCrateName(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", err
	}
	return manifest.Package.Name, nil
}

// modulePathFromFile derives a Rust module path from a file's location
// relative to src/, the way `mod` declarations nest for a standard Cargo
// layout (src/foo/bar.rs -> crate::foo::bar, src/foo/mod.rs -> crate::foo).
func modulePathFromFile(crateName, root, absPath string) string {
	rel, err := filepath.Rel(filepath.Join(root, "src"), absPath)
	if err != nil {
		rel, err = filepath.Rel(root, absPath)
		if err != nil {
			return crateName
		}
	}
	rel = filepath.ToSlash(rel)
	rel = trimSuffix(rel, ".rs")
	rel = trimSuffix(rel, "/mod")
	if rel == "main" || rel == "lib" || rel == "." {
		if crateName == "" {
			return "crate"
		}
		return "crate::" + crateName
	}
	segments := splitSlash(rel)
	path := "crate"
	for _, s := range segments {
		path += "::" + s
	}
	return path
}

func trimSuffix(s, suffix string) string {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}

func splitSlash(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
