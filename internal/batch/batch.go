// Package batch turns a list of named JSON documents into Java source, either
// as one combined text or as one unit per class.
package batch

import (
	"log/slog"
	"strings"

	"github.com/mcncl/pojotyper/internal/analyzer"
	"github.com/mcncl/pojotyper/internal/config"
	"github.com/mcncl/pojotyper/internal/errors"
	"github.com/mcncl/pojotyper/internal/generator"
	"github.com/mcncl/pojotyper/internal/logging"
	"github.com/mcncl/pojotyper/internal/models"
	"github.com/mcncl/pojotyper/internal/parser"
)

const (
	classSeparator    = "\n\n// ---\n\n"
	documentSeparator = "\n\n// ========================================\n\n"
)

// Result is the outcome of one batch run.
type Result struct {
	// Code is the combined output; empty in per-class mode.
	Code string
	// Files holds one unit per class in per-class mode.
	Files    []models.GeneratedFile
	Failures []models.DocumentFailure
	// Classes lists every class produced, dependencies first.
	Classes []models.ClassDef
}

// Succeeded returns the number of documents that parsed.
func (r Result) Succeeded(total int) int {
	return total - len(r.Failures)
}

// Driver runs documents through parse, analyze and emit.
type Driver struct {
	analyzer  *analyzer.Analyzer
	generator *generator.Generator
	pkg       string
	logger    *slog.Logger
}

// NewDriver creates a Driver with the default analyzer and no package line.
func NewDriver() *Driver {
	return &Driver{
		analyzer:  analyzer.NewAnalyzer(),
		generator: generator.NewGenerator(),
		logger:    logging.Discard(),
	}
}

// NewDriverWithConfig creates a Driver using the naming and package settings of cfg.
func NewDriverWithConfig(cfg *config.Config, logger *slog.Logger) *Driver {
	return &Driver{
		analyzer:  analyzer.NewAnalyzerWithConfig(cfg, logger),
		generator: generator.NewGenerator(),
		pkg:       cfg.Package,
		logger:    logging.OrDiscard(logger),
	}
}

type section struct {
	name   string
	bodies []string
}

// Run processes docs in order. A document that fails to parse is recorded in
// Failures and skipped; the batch itself never fails. One analyzer session
// spans all documents, so a class name is emitted at most once per batch.
func (d *Driver) Run(docs []models.Document, style models.Style, mode models.Mode) Result {
	var result Result
	var sections []section
	session := analyzer.NewSession()

	for _, doc := range docs {
		ir, err := parser.ParseString(doc.Content)
		if err != nil {
			d.logger.Warn("skipping document", "document", doc.Name, "error", err)
			result.Failures = append(result.Failures, models.DocumentFailure{
				DocumentName: doc.Name,
				ErrorMessage: errors.UserFriendlyError(err),
				Err:          err,
			})
			continue
		}

		rootName := d.analyzer.Policy().ClassName(doc.Name)
		defs := d.analyzer.Analyze(ir.Root, rootName, session)
		d.logger.Debug("analyzed document", "document", doc.Name, "root", rootName, "classes", len(defs))
		result.Classes = append(result.Classes, defs...)

		switch mode {
		case models.PerClass:
			for _, def := range defs {
				body := d.generator.Emit(def, style)
				result.Files = append(result.Files, models.GeneratedFile{
					ClassName:  def.ClassName,
					FileName:   def.ClassName + ".java",
					Code:       generator.Unit(d.pkg, generator.ImportsFor(style, body), body),
					SourceFile: doc.Name,
				})
			}
		default:
			if len(defs) == 0 {
				continue
			}
			s := section{name: doc.Name}
			for i := len(defs) - 1; i >= 0; i-- {
				s.bodies = append(s.bodies, d.generator.Emit(defs[i], style))
			}
			sections = append(sections, s)
		}
	}

	if mode == models.Combined {
		result.Code = d.combine(sections, style)
	}
	return result
}

// combine renders all sections under one package line and import block.
func (d *Driver) combine(sections []section, style models.Style) string {
	if len(sections) == 0 {
		return ""
	}

	var all []string
	parts := make([]string, len(sections))
	for i, s := range sections {
		all = append(all, s.bodies...)
		parts[i] = "// Source: " + s.name + "\n" + strings.Join(s.bodies, classSeparator)
	}

	return generator.Header(d.pkg, generator.ImportsFor(style, all...)) +
		strings.Join(parts, documentSeparator) + "\n"
}
