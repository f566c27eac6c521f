package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/pojotyper/internal/analyzer"
	"github.com/mcncl/pojotyper/internal/generator"
	"github.com/mcncl/pojotyper/internal/models"
	"github.com/mcncl/pojotyper/internal/parser"
)

func TestIntegration_ParserAnalyzerGeneratorFormatter(t *testing.T) {
	ir, err := parser.ParseString(`{
		"user_id": 123,
		"is_active": true,
		"roles": ["admin"],
		"profile": {"full_name": "Ada Lovelace"}
	}`)
	require.NoError(t, err)

	g := generator.NewGenerator()
	var bodies []string
	for _, def := range analyzer.NewAnalyzer().Analyze(ir.Root, "User", nil) {
		bodies = append(bodies, g.Emit(def, models.MutableBean))
	}
	code := generator.Header("com.example", generator.ImportsFor(models.MutableBean, bodies...)) +
		strings.Join(bodies, "\n\n")

	formatted, err := (&Formatter{IndentWidth: 2}).Format(code)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(formatted, "package com.example;\n\nimport java.util.List;\n\npublic class Profile {\n"))
	assert.Contains(t, formatted, "\n  private List<String> roles;\n")
	assert.Contains(t, formatted, "\n  public Boolean isIsActive() {\n    return isActive;\n  }\n")
	assert.True(t, strings.HasSuffix(formatted, "}\n"))
	assert.NotContains(t, formatted, "\n\n\n")
}
