// Package query finds keys and values inside a parsed JSON document.
package query

import (
	"strconv"
	"strings"

	"github.com/mcncl/pojotyper/internal/models"
)

// SearchType restricts what a query is matched against.
type SearchType int

const (
	SearchAll SearchType = iota
	SearchKey
	SearchValue
)

// String returns the flag name of the search type.
func (t SearchType) String() string {
	switch t {
	case SearchKey:
		return "key"
	case SearchValue:
		return "value"
	default:
		return "all"
	}
}

// ParseSearchType maps key, value or all onto a SearchType.
func ParseSearchType(s string) (SearchType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return SearchAll, true
	case "key", "keys":
		return SearchKey, true
	case "value", "values":
		return SearchValue, true
	}
	return SearchAll, false
}

// Match is one hit. Value is a display rendering: scalars as text, objects
// as {...} and arrays as [n items].
type Match struct {
	Path  string
	Key   string
	Value string
	Type  string
}

// Search walks root in document order and returns every path whose key or
// scalar value contains q, case-insensitively. The first match for a path wins.
func Search(root *models.JSONValue, q string, t SearchType) []Match {
	if root == nil || strings.TrimSpace(q) == "" {
		return nil
	}

	s := &searcher{query: strings.ToLower(q), typ: t, seen: make(map[string]struct{})}
	s.node(root, "")
	return s.matches
}

type searcher struct {
	query   string
	typ     SearchType
	seen    map[string]struct{}
	matches []Match
}

func (s *searcher) add(path, key string, v *models.JSONValue) {
	if _, ok := s.seen[path]; ok {
		return
	}
	s.seen[path] = struct{}{}
	s.matches = append(s.matches, Match{Path: path, Key: key, Value: Render(v), Type: TypeName(v)})
}

func (s *searcher) node(v *models.JSONValue, path string) {
	switch v.Kind {
	case models.JSONNull:
		if s.typ != SearchKey && strings.Contains("null", s.query) {
			s.add(path, lastSegment(path), v)
		}
	case models.JSONArray:
		for i, item := range v.Array {
			s.node(item, path+"["+strconv.Itoa(i)+"]")
		}
	case models.JSONObject:
		for _, m := range v.Object {
			childPath := m.Key
			if path != "" {
				childPath = path + "." + m.Key
			}

			if s.typ != SearchValue && strings.Contains(strings.ToLower(m.Key), s.query) {
				s.add(childPath, m.Key, m.Value)
			} else if s.typ != SearchKey && m.Value.IsScalar() && s.valueMatches(m.Value) {
				s.add(childPath, m.Key, m.Value)
			}

			s.node(m.Value, childPath)
		}
	default:
		if s.typ != SearchKey && s.valueMatches(v) {
			s.add(path, path, v)
		}
	}
}

func (s *searcher) valueMatches(v *models.JSONValue) bool {
	return strings.Contains(strings.ToLower(Render(v)), s.query)
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Render returns the display text of v.
func Render(v *models.JSONValue) string {
	switch v.Kind {
	case models.JSONNull:
		return "null"
	case models.JSONBool:
		return strconv.FormatBool(v.Bool)
	case models.JSONObject:
		return "{...}"
	case models.JSONArray:
		return "[" + strconv.Itoa(len(v.Array)) + " items]"
	default:
		return v.Text
	}
}

// TypeName returns the display type of v.
func TypeName(v *models.JSONValue) string {
	switch v.Kind {
	case models.JSONNull:
		return "null"
	case models.JSONBool:
		return "boolean"
	case models.JSONNumber:
		return "number"
	case models.JSONString:
		return "string"
	case models.JSONArray:
		return "array"
	default:
		return "object"
	}
}
