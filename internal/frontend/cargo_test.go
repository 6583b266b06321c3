package frontend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadCrateName(t *testing.T) {
	dir := t.TempDir()
	content := "[package]\nname = \"widgets\"\nversion = \"0.1.0\"\n"
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	name, err := readCrateName(dir)
	if err != nil {
		t.Fatalf("readCrateName() error: %v", err)
	}
	if name != "widgets" {
		t.Fatalf("got %q, want widgets", name)
	}
}

func TestReadCrateNameMissingManifest(t *testing.T) {
	dir := t.TempDir()
	name, err := readCrateName(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "" {
		t.Fatalf("expected empty crate name, got %q", name)
	}
}

func TestModulePathFromFile(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		rel  string
		want string
	}{
		{"src/main.rs", "crate::widgets"},
		{"src/lib.rs", "crate::widgets"},
		{"src/parser/mod.rs", "crate::parser"},
		{"src/parser/tokens.rs", "crate::parser::tokens"},
	}
	for _, c := range cases {
		abs := filepath.Join(root, c.rel)
		got := modulePathFromFile("widgets", root, abs)
		if got != c.want {
			t.Errorf("modulePathFromFile(%q) = %q, want %q", c.rel, got, c.want)
		}
	}
}

func TestLastSegment(t *testing.T) {
	cases := map[string]string{
		"crate::foo::bar": "bar",
		"self.handler":    "handler",
		"plain":           "plain",
	}
	for in, want := range cases {
		if got := lastSegment(in); got != want {
			t.Errorf("lastSegment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiscoverRustFilesHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "src", "main.rs"), "fn main() {}\n")
	mustWrite(t, filepath.Join(root, "target", "debug", "build.rs"), "// generated\n")
	mustWrite(t, filepath.Join(root, ".gitignore"), "target/\n")

	files, err := discoverRustFiles(root)
	if err != nil {
		t.Fatalf("discoverRustFiles() error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d: %v", len(files), files)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
