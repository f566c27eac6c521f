// Package naming holds the identifier heuristics used when turning JSON keys
// into Java class and field names.
package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// Policy decides how JSON keys become identifiers and which null fields are
// treated as objects. Alternative policies let callers document or change the
// heuristics without touching the analyzer.
type Policy interface {
	ClassName(s string) string
	FieldName(s string) string
	Singular(s string) string
	LooksLikeObject(fieldName string) bool
}

// DefaultObjectSuffixes are the field-name endings that mark a null value as an object.
var DefaultObjectSuffixes = []string{
	"info", "data", "details", "config", "settings", "response", "request",
	"result", "options", "params", "body", "payload", "content", "metadata",
}

var (
	jsonExtRegex = regexp.MustCompile(`(?i)\.json$`)
	indexRegex   = regexp.MustCompile(`\[\d+\]`)
	upperRegex   = regexp.MustCompile(`[A-Z]`)
)

// Heuristic is the default policy.
type Heuristic struct {
	ObjectSuffixes []string
}

// NewHeuristic returns the default policy. A nil or empty suffix list selects DefaultObjectSuffixes.
func NewHeuristic(suffixes []string) *Heuristic {
	if len(suffixes) == 0 {
		suffixes = DefaultObjectSuffixes
	}
	lowered := make([]string, len(suffixes))
	for i, s := range suffixes {
		lowered[i] = strings.ToLower(s)
	}
	return &Heuristic{ObjectSuffixes: lowered}
}

func (h *Heuristic) ClassName(s string) string { return PascalCase(s) }
func (h *Heuristic) FieldName(s string) string { return CamelCase(s) }
func (h *Heuristic) Singular(s string) string  { return Singularize(s) }

// LooksLikeObject reports whether a field holding null should become a class:
// the name ends in an object-ish suffix, is snake_case, or has any upper-case letter.
func (h *Heuristic) LooksLikeObject(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, suffix := range h.ObjectSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return strings.Contains(lower, "_") || upperRegex.MatchString(fieldName)
}

// Strcase delegates casing to github.com/iancoleman/strcase, which also splits
// on case boundaries and dots. Singular and LooksLikeObject are the default ones.
type Strcase struct {
	*Heuristic
}

// NewStrcase returns a strcase-backed policy.
func NewStrcase(suffixes []string) *Strcase {
	return &Strcase{Heuristic: NewHeuristic(suffixes)}
}

func (s *Strcase) ClassName(name string) string {
	return strcase.ToCamel(stripNoise(name))
}

func (s *Strcase) FieldName(name string) string {
	return strcase.ToLowerCamel(stripNoise(name))
}

// PascalCase strips a trailing .json and any [n] index suffixes, drops runs of
// '-', '_' and whitespace while upper-casing the rune that follows them, and
// upper-cases the first rune. Applied to a fixed point, so it is idempotent.
func PascalCase(s string) string {
	for {
		next := pascalOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func pascalOnce(s string) string {
	s = stripNoise(s)

	var sb strings.Builder
	sb.Grow(len(s))
	upperNext := false
	for _, r := range s {
		if isSeparator(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		sb.WriteRune(r)
	}
	return upperFirst(sb.String())
}

// CamelCase is PascalCase with the first rune lower-cased.
func CamelCase(s string) string {
	return lowerFirst(PascalCase(s))
}

// Singularize is a best-effort plural stripper: ies->y, then -es, then -s unless
// the word ends in ss. Irregular plurals are left alone.
func Singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "es"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return s[:len(s)-1]
	}
	return s
}

// Capitalize upper-cases the first rune, leaving the rest untouched.
func Capitalize(s string) string {
	return upperFirst(s)
}

func stripNoise(s string) string {
	s = jsonExtRegex.ReplaceAllString(s, "")
	return indexRegex.ReplaceAllString(s, "")
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
