package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/pojotyper/internal/config"
)

func TestFormat_AlreadyFormatted(t *testing.T) {
	input := "public record Person(\n    String name,\n    Integer age\n) {}\n"

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, input, formatted)
}

func TestFormat_NormalizesWhitespace(t *testing.T) {
	input := "\n\npublic class A {   \r\n\r\n\r\n    private String a;\t\r\n}"

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, "public class A {\n\n    private String a;\n}\n", formatted)
}

func TestFormat_Reindent(t *testing.T) {
	input := "public class A {\n    public A() {\n        int x;\n      odd();\n    }\n}"

	tests := []struct {
		name     string
		f        *Formatter
		expected string
	}{
		{"spaces default", NewFormatter(), "public class A {\n    public A() {\n        int x;\n      odd();\n    }\n}\n"},
		{"two spaces", &Formatter{IndentWidth: 2}, "public class A {\n  public A() {\n    int x;\n    odd();\n  }\n}\n"},
		{"tabs", &Formatter{IndentWidth: 4, UseTabs: true}, "public class A {\n\tpublic A() {\n\t\tint x;\n\t  odd();\n\t}\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatted, err := tt.f.Format(input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, formatted)
		})
	}
}

func TestFormat_WithImports(t *testing.T) {
	input := `package com.example;

import lombok.Getter;
import java.util.List;
import lombok.Setter;
import java.util.List;

@Getter
@Setter
public class Team {
}
`

	expected := `package com.example;

import java.util.List;

import lombok.Getter;
import lombok.Setter;

@Getter
@Setter
public class Team {
}
`

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, expected, formatted)
}

func TestFormat_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t"} {
		formatted, err := NewFormatter().Format(input)
		require.NoError(t, err)
		assert.Equal(t, "", formatted)
	}
}

func TestFormat_InvalidCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed brace", "public class A {\n    private String a;\n"},
		{"stray brace", "public record A() {}}\n"},
		{"unclosed paren", "public record A(\n    String a\n {}"},
		{"mismatched", "public record A(} {)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFormatter().Format(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to format code")
		})
	}
}

func TestFormat_IgnoresBracesInCommentsAndLiterals(t *testing.T) {
	input := "// Source: weird{name}.json\n/* ( */\npublic class A {\n    char c = '}';\n    String s = \"{\\\"\";\n}\n"

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, input, formatted)
}

func TestNewFormatterWithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Formatting.IndentWidth = 2
	cfg.Formatting.UseTabs = true

	f := NewFormatterWithConfig(cfg)
	assert.Equal(t, 2, f.IndentWidth)
	assert.True(t, f.UseTabs)
}
