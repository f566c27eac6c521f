package analyzer

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/mcncl/pojotyper/internal/config"
	"github.com/mcncl/pojotyper/internal/logging"
	"github.com/mcncl/pojotyper/internal/models"
	"github.com/mcncl/pojotyper/internal/naming"
)

// maxInteger is the largest magnitude that still fits a Java Integer.
const maxInteger = 2147483647

// Analyzer walks a JSON value and derives the class definitions needed to model it.
type Analyzer struct {
	policy naming.Policy
	// fieldMappings overrides the generated field name for specific JSON keys
	fieldMappings map[string]string
	logger        *slog.Logger
}

// NewAnalyzer creates an Analyzer with the default naming heuristics.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		policy:        naming.NewHeuristic(nil),
		fieldMappings: map[string]string{},
		logger:        logging.Discard(),
	}
}

// NewAnalyzerWithConfig creates an Analyzer using the naming section of cfg.
func NewAnalyzerWithConfig(cfg *config.Config, logger *slog.Logger) *Analyzer {
	a := NewAnalyzer()
	a.policy = cfg.NamingPolicy()
	if cfg.Naming.FieldMappings != nil {
		a.fieldMappings = cfg.Naming.FieldMappings
	}
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithPolicy returns a copy of the analyzer that uses p for naming decisions.
func (a *Analyzer) WithPolicy(p naming.Policy) *Analyzer {
	cp := *a
	cp.policy = p
	return &cp
}

// Policy returns the naming policy in use.
func (a *Analyzer) Policy() naming.Policy {
	return a.policy
}

// Analyze returns the class definitions for root, dependencies first and the
// root class last. rootClassName is used as given. Names already claimed in
// session are skipped along with their whole subtree.
//
// Roots that are not an object, or an array whose first element is an object,
// produce no classes.
func (a *Analyzer) Analyze(root *models.JSONValue, rootClassName string, session *Session) []models.ClassDef {
	if session == nil {
		session = NewSession()
	}
	var out []models.ClassDef
	if rootClassName == "" {
		a.logger.Debug("empty root class name, no classes generated")
		return out
	}

	switch {
	case root != nil && root.Kind == models.JSONObject:
		a.analyzeObject(root, rootClassName, false, session, &out)
	case root != nil && root.Kind == models.JSONArray && len(root.Array) > 0 && root.Array[0].Kind == models.JSONObject:
		a.analyzeObject(root.Array[0], rootClassName, false, session, &out)
	default:
		kind := models.JSONNull
		if root != nil {
			kind = root.Kind
		}
		a.logger.Debug("unsupported root shape, no classes generated", "class", rootClassName, "root", kind.String())
	}

	return out
}

func (a *Analyzer) analyzeObject(obj *models.JSONValue, className string, nested bool, session *Session, out *[]models.ClassDef) {
	if !session.Claim(className) {
		a.logger.Debug("class already generated, keeping first definition", "class", className)
		return
	}

	fields := make([]models.FieldDescriptor, 0, len(obj.Object))
	for _, m := range obj.Object {
		typ, nestedName := a.resolveField(m.Key, m.Value, session, out)
		fields = append(fields, models.FieldDescriptor{
			Name:            a.fieldName(m.Key),
			JSONKey:         m.Key,
			Type:            typ,
			IsArray:         m.Value.Kind == models.JSONArray,
			IsObject:        m.Value.Kind == models.JSONObject,
			NestedClassName: nestedName,
		})
	}

	*out = append(*out, models.ClassDef{
		ClassName: className,
		Fields:    fields,
		IsNested:  nested,
	})
}

// resolveField determines the type of one object member, appending any nested
// class definitions it needs to out.
func (a *Analyzer) resolveField(key string, v *models.JSONValue, session *Session, out *[]models.ClassDef) (models.TypeRef, string) {
	switch v.Kind {
	case models.JSONNull:
		if !a.policy.LooksLikeObject(key) {
			return models.Scalar(models.TypeObject), ""
		}
		name := a.policy.ClassName(key)
		if name == "" {
			return a.unnamed(key), ""
		}
		a.placeholder(name, session, out)
		return models.Class(name), name
	case models.JSONArray:
		singular := a.policy.Singular(key)
		return a.resolveElements(v, singular, a.policy.ClassName(singular), session, out)
	case models.JSONObject:
		name := a.policy.ClassName(key)
		if name == "" {
			return a.unnamed(key), ""
		}
		a.analyzeObject(v, name, true, session, out)
		return models.Class(name), name
	default:
		return scalarType(v), ""
	}
}

// resolveElements types an array from its first element only. Nested arrays
// reuse the element class name of the outermost field.
func (a *Analyzer) resolveElements(arr *models.JSONValue, singularKey, className string, session *Session, out *[]models.ClassDef) (models.TypeRef, string) {
	if len(arr.Array) == 0 {
		if className == "" {
			return models.ListOf(a.unnamed(singularKey)), ""
		}
		a.placeholder(className, session, out)
		return models.ListOf(models.Class(className)), className
	}

	first := arr.Array[0]
	switch first.Kind {
	case models.JSONObject:
		if className == "" {
			return models.ListOf(a.unnamed(singularKey)), ""
		}
		a.analyzeObject(first, className, true, session, out)
		return models.ListOf(models.Class(className)), className
	case models.JSONArray:
		inner, nestedName := a.resolveElements(first, singularKey, className, session, out)
		return models.ListOf(inner), nestedName
	case models.JSONNull:
		if !a.policy.LooksLikeObject(singularKey) {
			return models.ListOf(models.Scalar(models.TypeObject)), ""
		}
		if className == "" {
			return models.ListOf(a.unnamed(singularKey)), ""
		}
		a.placeholder(className, session, out)
		return models.ListOf(models.Class(className)), className
	default:
		return models.ListOf(scalarType(first)), ""
	}
}

// unnamed types a value whose key yields no class name as Object.
func (a *Analyzer) unnamed(key string) models.TypeRef {
	a.logger.Debug("key yields an empty class name, typing it as Object", "key", key)
	return models.Scalar(models.TypeObject)
}

// placeholder queues an empty class for a name inferred without a shape to back it.
func (a *Analyzer) placeholder(name string, session *Session, out *[]models.ClassDef) {
	if !session.Claim(name) {
		a.logger.Debug("class already generated, skipping placeholder", "class", name)
		return
	}
	*out = append(*out, models.ClassDef{
		ClassName:     name,
		IsNested:      true,
		IsPlaceholder: true,
	})
}

func (a *Analyzer) fieldName(key string) string {
	if mapped, ok := a.fieldMappings[key]; ok {
		return mapped
	}
	return a.policy.FieldName(key)
}

func scalarType(v *models.JSONValue) models.TypeRef {
	switch v.Kind {
	case models.JSONString:
		return models.Scalar(models.TypeString)
	case models.JSONBool:
		return models.Scalar(models.TypeBoolean)
	case models.JSONNumber:
		return models.Scalar(numberType(v.Text))
	default:
		return models.Scalar(models.TypeObject)
	}
}

// numberType classifies a raw JSON number literal. A fraction or exponent
// makes it a Double even when the value is whole.
func numberType(literal string) string {
	if strings.ContainsAny(literal, ".eE") {
		return models.TypeDouble
	}
	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		// Only out-of-range integers get here once the literal has been validated.
		return models.TypeLong
	}
	if n > maxInteger || n < -maxInteger {
		return models.TypeLong
	}
	return models.TypeInteger
}
