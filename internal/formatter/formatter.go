package formatter

import (
	"fmt"
	"strings"

	"github.com/mcncl/pojotyper/internal/config"
)

// sourceIndent is the indentation unit the generator emits.
const sourceIndent = 4

// Formatter normalizes generated Java source text
type Formatter struct {
	IndentWidth int
	UseTabs     bool
}

// NewFormatter creates a new Formatter using four-space indentation
func NewFormatter() *Formatter {
	return &Formatter{IndentWidth: sourceIndent}
}

// NewFormatterWithConfig creates a Formatter from the formatting section of cfg
func NewFormatterWithConfig(cfg *config.Config) *Formatter {
	return &Formatter{
		IndentWidth: cfg.Formatting.IndentWidth,
		UseTabs:     cfg.Formatting.UseTabs,
	}
}

// Format re-indents code, trims trailing whitespace, collapses blank-line
// runs, groups import blocks and ends the text with a single newline.
func (f *Formatter) Format(code string) (string, error) {
	// Handle empty input
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")

	if err := checkBalance(code); err != nil {
		return "", err
	}

	var lines []string
	blank := true // drops leading blank lines
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, f.reindent(line))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	lines = formatImports(lines)

	return strings.Join(lines, "\n") + "\n", nil
}

// reindent maps each leading four-space unit (or tab) to the configured unit.
// Leftover spaces are kept as-is.
func (f *Formatter) reindent(line string) string {
	units, spaces, i := 0, 0, 0
	for ; i < len(line); i++ {
		switch line[i] {
		case ' ':
			spaces++
			if spaces == sourceIndent {
				units++
				spaces = 0
			}
			continue
		case '\t':
			units++
			spaces = 0
			continue
		}
		break
	}

	unit := strings.Repeat(" ", f.IndentWidth)
	if f.UseTabs {
		unit = "\t"
	}
	return strings.Repeat(unit, units) + strings.Repeat(" ", spaces) + line[i:]
}

// formatImports organizes each run of import lines with java imports first,
// followed by other imports with a blank line in between. Order within a group
// is preserved.
func formatImports(lines []string) []string {
	var result []string
	for i := 0; i < len(lines); {
		if !isImport(lines[i]) {
			result = append(result, lines[i])
			i++
			continue
		}

		// An import run may contain blank lines between groups.
		var javaImports, otherImports []string
		end := i
		for j := i; j < len(lines); j++ {
			if isImport(lines[j]) {
				path := strings.TrimSuffix(strings.TrimPrefix(lines[j], "import "), ";")
				if strings.HasPrefix(path, "java.") || strings.HasPrefix(path, "javax.") {
					javaImports = appendUnique(javaImports, lines[j])
				} else {
					otherImports = appendUnique(otherImports, lines[j])
				}
				end = j + 1
				continue
			}
			if lines[j] != "" {
				break
			}
		}

		result = append(result, javaImports...)
		if len(javaImports) > 0 && len(otherImports) > 0 {
			result = append(result, "")
		}
		result = append(result, otherImports...)
		i = end
	}
	return result
}

func isImport(line string) bool {
	return strings.HasPrefix(line, "import ") && strings.HasSuffix(line, ";")
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// checkBalance reports unbalanced braces or parentheses outside of comments
// and string or character literals.
func checkBalance(code string) error {
	var stack []byte
	line := 1
	inString, inChar, inLineComment, inBlockComment := false, false, false, false

	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == '\n' {
			line++
			inLineComment = false
			continue
		}

		switch {
		case inLineComment:
			continue
		case inBlockComment:
			if c == '*' && i+1 < len(code) && code[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		case inString || inChar:
			if c == '\\' {
				i++
			} else if (inString && c == '"') || (inChar && c == '\'') {
				inString, inChar = false, false
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(code) && code[i+1] == '/' {
				inLineComment = true
			} else if i+1 < len(code) && code[i+1] == '*' {
				inBlockComment = true
				i++
			}
		case '"':
			inString = true
		case '\'':
			inChar = true
		case '{', '(':
			stack = append(stack, c)
		case '}', ')':
			open := byte('{')
			if c == ')' {
				open = '('
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return fmt.Errorf("failed to format code: unexpected %q on line %d", c, line)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		return fmt.Errorf("failed to format code: unclosed %q", stack[len(stack)-1])
	}
	return nil
}
