package models

import "strings"

// JSONKind identifies which of the JSON value variants a JSONValue holds.
type JSONKind int

const (
	JSONNull JSONKind = iota
	JSONBool
	JSONNumber
	JSONString
	JSONArray
	JSONObject
)

// String returns the lower-case JSON name of the kind.
func (k JSONKind) String() string {
	switch k {
	case JSONNull:
		return "null"
	case JSONBool:
		return "boolean"
	case JSONNumber:
		return "number"
	case JSONString:
		return "string"
	case JSONArray:
		return "array"
	case JSONObject:
		return "object"
	default:
		return "unknown"
	}
}

// JSONValue is a parsed JSON value. Object members keep document order,
// which is what drives field ordering in generated classes.
type JSONValue struct {
	Kind JSONKind
	Bool bool
	// Text holds the decoded contents of a string, or the raw literal of a number.
	Text   string
	Array  []*JSONValue
	Object []JSONMember
}

// JSONMember is one key/value pair of a JSON object.
type JSONMember struct {
	Key   string
	Value *JSONValue
}

// IsNull reports whether the value is JSON null. A nil pointer counts as null.
func (v *JSONValue) IsNull() bool {
	return v == nil || v.Kind == JSONNull
}

// IsScalar reports whether the value is a string, number or boolean.
func (v *JSONValue) IsScalar() bool {
	if v == nil {
		return false
	}
	return v.Kind == JSONBool || v.Kind == JSONNumber || v.Kind == JSONString
}

// Get returns the member value for key, or nil if v is not an object or has no such key.
func (v *JSONValue) Get(key string) *JSONValue {
	if v == nil || v.Kind != JSONObject {
		return nil
	}
	for _, m := range v.Object {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Keys returns the object's keys in document order.
func (v *JSONValue) Keys() []string {
	if v == nil || v.Kind != JSONObject {
		return nil
	}
	keys := make([]string, len(v.Object))
	for i, m := range v.Object {
		keys[i] = m.Key
	}
	return keys
}

// String renders scalars as their plain text and composites as compact JSON.
func (v *JSONValue) String() string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case JSONString, JSONNumber:
		return v.Text
	case JSONBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case JSONNull:
		return "null"
	default:
		var sb strings.Builder
		v.writeJSON(&sb)
		return sb.String()
	}
}

func (v *JSONValue) writeJSON(sb *strings.Builder) {
	if v == nil {
		sb.WriteString("null")
		return
	}
	switch v.Kind {
	case JSONString:
		writeQuoted(sb, v.Text)
	case JSONArray:
		sb.WriteByte('[')
		for i, item := range v.Array {
			if i > 0 {
				sb.WriteByte(',')
			}
			item.writeJSON(sb)
		}
		sb.WriteByte(']')
	case JSONObject:
		sb.WriteByte('{')
		for i, m := range v.Object {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeQuoted(sb, m.Key)
			sb.WriteByte(':')
			m.Value.writeJSON(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(v.String())
	}
}

func writeQuoted(sb *strings.Builder, s string) {
	const hex = "0123456789abcdef"
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20:
			sb.WriteString(`\u00`)
			sb.WriteByte(hex[r>>4])
			sb.WriteByte(hex[r&0xf])
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

// IntermediateRepresentation is a structure to hold the parsed JSON data
// in a way that's easy for the analyzer to work with.
type IntermediateRepresentation struct {
	Root        *JSONValue
	RootIsArray bool // True if the root of the JSON is an array vs an object
}

// TypeKind distinguishes the variants of TypeRef.
type TypeKind int

const (
	ScalarType TypeKind = iota
	ClassType
	ListType
)

// Scalar type names understood by the emitter.
const (
	TypeString  = "String"
	TypeInteger = "Integer"
	TypeLong    = "Long"
	TypeDouble  = "Double"
	TypeBoolean = "Boolean"
	TypeObject  = "Object"
)

// TypeRef is the resolved Java type of a field.
type TypeRef struct {
	Kind TypeKind
	// Name is the scalar or class name; empty for lists.
	Name string
	Elem *TypeRef
}

// Scalar returns a TypeRef for one of the built-in scalar names.
func Scalar(name string) TypeRef { return TypeRef{Kind: ScalarType, Name: name} }

// Class returns a TypeRef naming a generated class.
func Class(name string) TypeRef { return TypeRef{Kind: ClassType, Name: name} }

// ListOf returns a list TypeRef with the given element type.
func ListOf(elem TypeRef) TypeRef { return TypeRef{Kind: ListType, Elem: &elem} }

// String renders the type as a Java type expression, e.g. List<User>.
func (t TypeRef) String() string {
	if t.Kind == ListType {
		if t.Elem == nil {
			return "List<" + TypeObject + ">"
		}
		return "List<" + t.Elem.String() + ">"
	}
	return t.Name
}

// FieldDescriptor describes one field of a generated class.
type FieldDescriptor struct {
	Name            string
	JSONKey         string
	Type            TypeRef
	IsArray         bool
	IsObject        bool
	NestedClassName string
}

// ClassDef is one class discovered from a JSON object shape.
type ClassDef struct {
	ClassName     string
	Fields        []FieldDescriptor
	IsNested      bool
	IsPlaceholder bool
}

// Style selects how a ClassDef is rendered.
type Style int

const (
	Immutable Style = iota
	MutableBean
	AnnotatedBean
)

// String returns the canonical config name of the style.
func (s Style) String() string {
	switch s {
	case Immutable:
		return "record"
	case MutableBean:
		return "class"
	case AnnotatedBean:
		return "lombok"
	default:
		return "unknown"
	}
}

// ParseStyle maps a style name onto a Style.
func ParseStyle(name string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "record", "immutable":
		return Immutable, true
	case "class", "bean", "mutable":
		return MutableBean, true
	case "lombok", "annotated":
		return AnnotatedBean, true
	}
	return Immutable, false
}

// Mode selects how a batch's output is assembled.
type Mode int

const (
	Combined Mode = iota
	PerClass
)

// String returns the canonical config name of the mode.
func (m Mode) String() string {
	switch m {
	case Combined:
		return "combined"
	case PerClass:
		return "per-class"
	default:
		return "unknown"
	}
}

// ParseMode maps a mode name onto a Mode.
func ParseMode(name string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "combined", "single":
		return Combined, true
	case "per-class", "perclass", "files":
		return PerClass, true
	}
	return Combined, false
}

// Document is one named JSON text handed to the batch driver.
type Document struct {
	Name    string
	Content string
}

// GeneratedFile is one class rendered as a standalone source unit.
type GeneratedFile struct {
	ClassName  string
	FileName   string
	Code       string
	SourceFile string
}

// DocumentFailure records a document that could not be processed.
type DocumentFailure struct {
	DocumentName string
	ErrorMessage string
	Err          error
}
