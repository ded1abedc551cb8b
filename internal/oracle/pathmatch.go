package oracle

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// cleanChars are stripped from a symbol name before it is split into path
// segments (glossary: "symbol path").
const cleanChars = "*[]{}:,@- ()"

// NormalizeSymbolTokens implements the glossary's symbol-path tokenizer:
// strip cleanChars, split on '.', '/', ':', drop empty segments, lowercase
// each token.
func NormalizeSymbolTokens(input string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(cleanChars, r) {
			return -1
		}
		return r
	}, input)

	raw := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '.' || r == '/' || r == ':'
	})

	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(t))
	}
	return tokens
}

// SymbolNameToPath builds the dot-joined symbol_path a Symbol row carries
// (spec §3 invariant 3). An empty result normalizes to "unknown".
func SymbolNameToPath(name string) string {
	tokens := NormalizeSymbolTokens(name)
	if len(tokens) == 0 {
		return "unknown"
	}
	return strings.Join(tokens, ".")
}

// PathGlob renders the glossary's "L-tree query" — a pattern of the form
// *.tok1.*.tok2.*... — as text. Nothing in the package matches with it:
// doublestar.Match over this pattern would miss a token that is the
// first or last segment of the path, so MatchesPathGlob does the
// ordered-subset match itself. An empty query (no recognizable tokens)
// means "match everything", signalled by the second return value being
// false.
func PathGlob(query string) (string, bool) {
	tokens := NormalizeSymbolTokens(query)
	if len(tokens) == 0 {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString("*")
	for _, t := range tokens {
		sb.WriteString(".")
		sb.WriteString(t)
		sb.WriteString(".*")
	}
	return sb.String(), true
}

// MatchesPathGlob reports whether path satisfies the *.tok1.*.tok2.*...
// pattern built from query. Implemented directly as an ordered-subset
// check (IsOrderedSubset over the '.'-split path) rather than compiling
// the glob every call — doublestar.Match still backs the equivalent
// package/file matching in IgnoreVerb's package-prefix mode, which is a
// true glob match rather than an ordered-subset one.
func MatchesPathGlob(path, query string) bool {
	tokens := NormalizeSymbolTokens(query)
	if len(tokens) == 0 {
		return true
	}
	return IsOrderedSubset(strings.Split(path, "."), tokens)
}

// IsOrderedSubset reports whether subset's elements appear, in order (not
// necessarily consecutively), within superset.
func IsOrderedSubset(superset, subset []string) bool {
	if len(subset) == 0 {
		return true
	}
	if len(subset) > len(superset) {
		return false
	}

	si := 0
	for _, s := range superset {
		if s == subset[si] {
			si++
			if si == len(subset) {
				return true
			}
		}
	}
	return false
}

// PackageMatches reports whether a symbol's dotted path lies under the
// given package prefix: every token of pkg must match, in order, the
// leading tokens of path, excluding path's own last segment (the symbol's
// own name), matching the glossary's package-match semantics.
func PackageMatches(path, pkg string) bool {
	patternTokens := NormalizeSymbolTokens(pkg)
	pathTokens := strings.Split(path, ".")

	for i, tok := range patternTokens {
		if len(pathTokens)-1 <= i {
			return false
		}
		if pathTokens[i] != tok {
			return false
		}
	}
	return true
}

// PackageGlob renders a package-prefix pattern as a doublestar glob
// (e.g. "foo.bar" -> "foo.bar.**"), used by IgnoreVerb(package=...) via
// doublestar.Match for its glob-style prefix matching, mirroring
// core/filewalker.go's glob-over-path-segments idiom.
func PackageGlob(pkg string) string {
	tokens := NormalizeSymbolTokens(pkg)
	if len(tokens) == 0 {
		return "**"
	}
	return strings.Join(tokens, ".") + ".**"
}

// MatchesPackageGlob is the doublestar-backed counterpart to
// PackageMatches, used where a true glob (not just an ordered-subset)
// semantics is wanted.
func MatchesPackageGlob(path, pkg string) bool {
	ok, err := doublestar.Match(PackageGlob(pkg), path)
	return err == nil && ok
}
