// Package identity implements C1: canonical keys and name normalization for
// function identity. Normalization is pure and total — it never fails,
// since its input is already a parsed identifier.
package identity

import (
	"path/filepath"
	"strings"

	"github.com/iepathos/debtmap/pkg/model"
)

// Normalize strips balanced angle-bracket generic parameters from name,
// collapses whitespace, and preserves "::" path separators. It is
// idempotent: Normalize(Normalize(s)) == Normalize(s).
//
//	foo<Vec<T>>  -> foo
//	foo<String>  -> foo
//	std::foo<T>  -> std::foo
func Normalize(name string) string {
	stripped := stripGenerics(name)
	return collapseWhitespace(stripped)
}

// stripGenerics removes every balanced <...> span, handling nested
// generics via a depth counter.
func stripGenerics(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, "")
}

// Canonical resolves symlinks and normalizes path separators, producing an
// absolute path when possible. A path that cannot be resolved (e.g. it does
// not exist on disk) canonicalizes to its lexically-normalized form instead
// of failing.
func Canonical(path string) string {
	cleaned := filepath.Clean(path)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		return resolved
	}
	return cleaned
}

// FuzzyKeyOf derives the FuzzyKey for a FunctionId: canonical file path plus
// normalized name.
func FuzzyKeyOf(id model.FunctionId) model.FuzzyKey {
	return model.FuzzyKey{File: Canonical(id.File), Name: Normalize(id.Name)}
}

// NameKeyOf derives the NameKey for a FunctionId: the normalized name alone.
func NameKeyOf(id model.FunctionId) model.NameKey {
	return model.NameKey(Normalize(id.Name))
}

// LastSegment returns the final "::"-delimited segment of name, used by C2's
// trait-method lookup fallback.
func LastSegment(name string) string {
	idx := strings.LastIndex(name, "::")
	if idx < 0 {
		return name
	}
	return name[idx+2:]
}
