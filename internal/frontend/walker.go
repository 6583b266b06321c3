// Package frontend implements the Rust FrontendModel: directory discovery,
// Cargo.toml crate-name resolution, and Tree-sitter extraction of function,
// struct, and call-edge facts.
package frontend

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var skipDirs = map[string]bool{
	".git":   true,
	"target": true,
}

// discoverRustFiles walks root, honoring a root-level .gitignore, and
// returns every .rs file's absolute path.
func discoverRustFiles(root string) ([]string, error) {
	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gi, err := ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, err
		}
		gitIgnore = gi
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if name != "." && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(name) != ".rs" {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr == nil && gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
