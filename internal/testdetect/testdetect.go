// Package testdetect implements C6: language-agnostic file- and
// function-level test identification. The frontend supplies the hints
// (path, attribute flag); this package applies the configured patterns.
package testdetect

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Config holds the configured test-file glob patterns and any extra
// test-gate annotation names a frontend may report in addition to the
// standard attribute flag.
type Config struct {
	TestFilePatterns     []string
	CustomTestAttributes []string
}

// DefaultConfig returns spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		TestFilePatterns: []string{"tests/**", "**/*_test.*", "**/*_spec.*"},
	}
}

// IsTestFile reports whether path matches one of the configured test-file
// patterns.
func IsTestFile(cfg Config, path string) bool {
	cleaned := filepath.ToSlash(path)
	for _, pattern := range cfg.TestFilePatterns {
		if ok, _ := doublestar.Match(pattern, cleaned); ok {
			return true
		}
		if strings.Contains(cleaned, strings.TrimSuffix(pattern, "/**")) && strings.HasSuffix(pattern, "/**") {
			return true
		}
	}
	return false
}

// IsTestFunction reports whether a function counts as a test: it carries
// the frontend's test-attribute hint, is inside a test-gated file, or one
// of the project's custom test attributes was recorded for it.
func IsTestFunction(cfg Config, inTestFile bool, testAttribute bool, reportedAttributes []string) bool {
	if inTestFile || testAttribute {
		return true
	}
	for _, a := range reportedAttributes {
		for _, custom := range cfg.CustomTestAttributes {
			if a == custom {
				return true
			}
		}
	}
	return false
}
