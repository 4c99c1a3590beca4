package resolver

import (
	"regexp"
	"strings"
)

var genericArgs = regexp.MustCompile(`<[^>]*>`)

// maxIdentifierLen caps cleaned identifiers. Deeply nested trait impls can
// produce symbols far longer than any downstream consumer wants as an id.
const maxIdentifierLen = 128

// CleanIdentifier turns a SCIP symbol into a stable path-like identifier:
// the scheme/package/version prefix is stripped, descriptor punctuation
// becomes path separators, generic arguments disappear, and the display
// name is guaranteed to be the final segment.
//
//	"rust-analyzer cargo demo 0.1.0 lib/Foo#helper()." → "lib/Foo/helper"
func CleanIdentifier(symbol, displayName string) string {
	s := symbol

	// Strip the "rust-analyzer cargo" scheme prefix when present.
	fields := strings.Fields(symbol)
	if len(fields) >= 2 && fields[0] == "rust-analyzer" && fields[1] == "cargo" {
		if pos := strings.Index(symbol, "cargo "); pos >= 0 {
			s = symbol[pos+len("cargo "):]
		}
	}

	// Strip "<package> <version> ": scan to the first digit (version
	// start), then past the space that ends the version field.
	if pos := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }); pos >= 0 {
		if spacePos := strings.IndexByte(s[pos:], ' '); spacePos >= 0 {
			s = strings.TrimSpace(s[pos+spacePos+1:])
		}
	}

	clean := strings.TrimRight(s, ".")
	clean = strings.ReplaceAll(clean, "-", "_")
	clean = strings.ReplaceAll(clean, "[", "/")
	clean = strings.ReplaceAll(clean, "]", "/")
	clean = strings.ReplaceAll(clean, "#", "/")
	clean = strings.TrimRight(clean, "/")
	clean = strings.Map(func(r rune) rune {
		switch r {
		case '`', '(', ')':
			return -1
		}
		return r
	}, clean)
	clean = strings.ReplaceAll(clean, "//", "/")

	clean = genericArgs.ReplaceAllString(clean, "")

	if displayName != "" && !strings.HasSuffix(clean, displayName) {
		clean = clean + "/" + displayName
	}

	if runes := []rune(clean); len(runes) > maxIdentifierLen {
		clean = string(runes[:maxIdentifierLen])
	}
	return clean
}

// SymbolCrate returns the package segment of a "rust-analyzer cargo"
// symbol, or "" for local/anonymous symbols that carry no crate.
func SymbolCrate(symbol string) string {
	fields := strings.Fields(symbol)
	if len(fields) >= 4 && fields[0] == "rust-analyzer" && fields[1] == "cargo" {
		return fields[2]
	}
	return ""
}
