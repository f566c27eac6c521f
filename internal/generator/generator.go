package generator

import (
	"strings"

	"github.com/mcncl/pojotyper/internal/models"
	"github.com/mcncl/pojotyper/internal/naming"
)

const indent = "    "

// ListImport is the import every body using a List<...> type needs.
const ListImport = "java.util.List"

// lombokImports are emitted in annotation order.
var lombokImports = []string{
	"lombok.Getter",
	"lombok.Setter",
	"lombok.NoArgsConstructor",
	"lombok.AllArgsConstructor",
}

// Generator renders class definitions as Java source
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// Emit renders def in the given style. The body carries no package or import lines.
func (g *Generator) Emit(def models.ClassDef, style models.Style) string {
	switch style {
	case models.MutableBean:
		return emitBean(def)
	case models.AnnotatedBean:
		return emitAnnotated(def)
	default:
		return emitRecord(def)
	}
}

func emitRecord(def models.ClassDef) string {
	if len(def.Fields) == 0 {
		return "public record " + def.ClassName + "() {}"
	}

	params := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		params[i] = indent + f.Type.String() + " " + f.Name
	}

	var sb strings.Builder
	sb.WriteString("public record " + def.ClassName + "(\n")
	sb.WriteString(strings.Join(params, ",\n"))
	sb.WriteString("\n) {}")
	return sb.String()
}

func emitBean(def models.ClassDef) string {
	var sb strings.Builder
	sb.WriteString("public class " + def.ClassName + " {\n\n")

	if len(def.Fields) > 0 {
		writeFieldDeclarations(&sb, def.Fields)
		sb.WriteString("\n")
	}

	sb.WriteString(indent + "public " + def.ClassName + "() {\n")
	sb.WriteString(indent + "}\n")

	for _, f := range def.Fields {
		typ := f.Type.String()
		accessor := naming.Capitalize(f.Name)

		getter := "get"
		if f.Type.Kind == models.ScalarType && f.Type.Name == models.TypeBoolean {
			getter = "is"
		}

		sb.WriteString("\n")
		sb.WriteString(indent + "public " + typ + " " + getter + accessor + "() {\n")
		sb.WriteString(indent + indent + "return " + f.Name + ";\n")
		sb.WriteString(indent + "}\n\n")

		sb.WriteString(indent + "public void set" + accessor + "(" + typ + " " + f.Name + ") {\n")
		sb.WriteString(indent + indent + "this." + f.Name + " = " + f.Name + ";\n")
		sb.WriteString(indent + "}\n")
	}

	sb.WriteString("}")
	return sb.String()
}

func emitAnnotated(def models.ClassDef) string {
	var sb strings.Builder
	for _, imp := range lombokImports {
		sb.WriteString("@" + imp[strings.LastIndex(imp, ".")+1:] + "\n")
	}
	sb.WriteString("public class " + def.ClassName + " {\n")

	if len(def.Fields) > 0 {
		sb.WriteString("\n")
		writeFieldDeclarations(&sb, def.Fields)
	}

	sb.WriteString("}")
	return sb.String()
}

func writeFieldDeclarations(sb *strings.Builder, fields []models.FieldDescriptor) {
	for _, f := range fields {
		sb.WriteString(indent + "private " + f.Type.String() + " " + f.Name + ";\n")
	}
}

// ImportsFor returns the imports needed by the given bodies: java.util.List once
// if any body mentions a List<...> type, then the lombok annotations for
// AnnotatedBean.
func ImportsFor(style models.Style, bodies ...string) []string {
	var imports []string
	for _, body := range bodies {
		if strings.Contains(body, "List<") {
			imports = append(imports, ListImport)
			break
		}
	}
	if style == models.AnnotatedBean && len(bodies) > 0 {
		imports = append(imports, lombokImports...)
	}
	return imports
}

// Header renders the package declaration (when pkg is set) and the import
// block, with java.* imports grouped ahead of third-party ones. It returns
// an empty string when there is nothing to declare.
func Header(pkg string, imports []string) string {
	var sb strings.Builder
	if pkg != "" {
		sb.WriteString("package " + pkg + ";\n\n")
	}

	var javaImports, otherImports []string
	for _, imp := range imports {
		if strings.HasPrefix(imp, "java.") || strings.HasPrefix(imp, "javax.") {
			javaImports = append(javaImports, imp)
		} else {
			otherImports = append(otherImports, imp)
		}
	}

	for _, imp := range javaImports {
		sb.WriteString("import " + imp + ";\n")
	}
	if len(javaImports) > 0 && len(otherImports) > 0 {
		sb.WriteString("\n")
	}
	for _, imp := range otherImports {
		sb.WriteString("import " + imp + ";\n")
	}
	if len(imports) > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

// Unit renders one complete source file for a single class body.
func Unit(pkg string, imports []string, body string) string {
	return Header(pkg, imports) + body + "\n"
}
