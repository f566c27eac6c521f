package e2e_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run invokes the CLI through go run with a private config file, so the
// developer's own settings and collections are never touched.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "pojotyper.yml")
	config := "collections:\n  path: " + filepath.Join(dir, "collections.json") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	cmd := exec.Command("go", append([]string{"run", "../..", "--config", configPath}, args...)...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestEndToEnd_ComplexNestedStructures converts a realistic API payload and
// checks every class it should produce.
func TestEndToEnd_ComplexNestedStructures(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := writeJSON(t, tempDir, "service.json", `{
		"id": 12345,
		"created_at": "2023-05-20T14:56:23Z",
		"updated_at": null,
		"config": {
			"enabled": true,
			"timeout_seconds": 30,
			"features": ["logging", "metrics"],
			"rate_limits": {"per_second": 100, "burst": 150}
		},
		"users": [
			{"id": 1, "name": "Alice", "roles": ["admin"], "metadata": {"login_count": 42}},
			{"id": 2, "name": "Bob", "roles": ["user"], "metadata": {"login_count": 17}}
		],
		"stats": {"requests": 3000000000, "success_rate": 0.9999, "response_times": [0.045, 0.067]},
		"active": true
	}`)
	outputFile := filepath.Join(tempDir, "Service.java")

	_, stderr, err := run(t, "", jsonFile, "-o", outputFile, "-p", "com.example.complex")
	require.NoError(t, err, stderr)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	code := string(content)

	assert.True(t, strings.HasPrefix(code, "package com.example.complex;\n\nimport java.util.List;\n\n// Source: service.json\n"))
	for _, class := range []string{"RateLimits", "Config", "Metadata", "User", "Stats", "UpdatedAt", "Service"} {
		assert.Contains(t, code, "public record "+class+"(", class)
	}
	assert.Contains(t, code, "    Long requests,\n")
	assert.Contains(t, code, "    Double successRate,\n")
	assert.Contains(t, code, "    List<Double> responseTimes\n")
	assert.Contains(t, code, "    List<User> users,\n")
	assert.Contains(t, code, "    UpdatedAt updatedAt,\n")
	assert.Equal(t, 1, strings.Count(code, "import java.util.List;"))

	// Combined output lists each document root-first.
	assert.Less(t, strings.Index(code, "record Service("), strings.Index(code, "record Stats("))
	assert.Less(t, strings.Index(code, "record Stats("), strings.Index(code, "record User("))
	assert.Less(t, strings.Index(code, "record Config("), strings.Index(code, "record RateLimits("))
	assert.Less(t, strings.Index(code, "record RateLimits("), strings.Index(code, "record UpdatedAt("))
}

func TestEndToEnd_Styles(t *testing.T) {
	tempDir := t.TempDir()
	jsonFile := writeJSON(t, tempDir, "user.json", `{"user_name": "ada", "is_active": true}`)

	tests := []struct {
		style    string
		expected []string
	}{
		{
			style:    "record",
			expected: []string{"public record User(\n    String userName,\n    Boolean isActive\n) {}"},
		},
		{
			style: "class",
			expected: []string{
				"    private String userName;\n",
				"    public User() {\n    }\n",
				"    public Boolean isIsActive() {\n",
				"    public void setUserName(String userName) {\n        this.userName = userName;\n    }\n",
			},
		},
		{
			style: "lombok",
			expected: []string{
				"import lombok.Getter;\nimport lombok.Setter;\nimport lombok.NoArgsConstructor;\nimport lombok.AllArgsConstructor;\n",
				"@Getter\n@Setter\n@NoArgsConstructor\n@AllArgsConstructor\npublic class User {\n\n    private String userName;\n    private Boolean isActive;\n}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			stdout, stderr, err := run(t, "", jsonFile, "--style", tt.style)
			require.NoError(t, err, stderr)
			for _, want := range tt.expected {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestEndToEnd_PerClassFiles(t *testing.T) {
	tempDir := t.TempDir()
	first := writeJSON(t, tempDir, "home.json", `{"address": {"city": "Oslo"}}`)
	second := writeJSON(t, tempDir, "office.json", `{"address": {"zip": 1}, "desks": []}`)
	outDir := filepath.Join(tempDir, "out")

	_, stderr, err := run(t, "", first, second, "--mode", "per-class", "--out", outDir, "--package", "com.acme")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "Generated 4 Java file(s) in "+outDir)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"Address.java", "Home.java", "Desk.java", "Office.java"}, names)

	address, err := os.ReadFile(filepath.Join(outDir, "Address.java"))
	require.NoError(t, err)
	assert.Equal(t, "package com.acme;\n\npublic record Address(\n    String city\n) {}\n", string(address), "the first document's shape wins")

	office, err := os.ReadFile(filepath.Join(outDir, "Office.java"))
	require.NoError(t, err)
	assert.Contains(t, string(office), "import java.util.List;\n")
	assert.Contains(t, string(office), "    List<Desk> desks\n")
}

func TestEndToEnd_Stdin(t *testing.T) {
	stdout, stderr, err := run(t, `{"items": [{"price": 9.99, "qty": 2}]}`, "--root-name", "Cart")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "// Source: Cart\n")
	assert.Contains(t, stdout, "public record Item(\n    Double price,\n    Integer qty\n) {}")
	assert.Contains(t, stdout, "public record Cart(\n    List<Item> items\n) {}")
}

func TestEndToEnd_EdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		contains    string
	}{
		{name: "empty object", input: `{}`, contains: "public record Root() {}"},
		{name: "root array", input: `[{"a": 1}]`, contains: "public record Root(\n    Integer a\n) {}"},
		{name: "invalid json", input: `{"a": }`, expectError: true, contains: "JSON parsing error"},
		{name: "unicode keys", input: `{"名前": "x", "ok": true}`, contains: "Boolean ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := run(t, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, stderr, tt.contains)
				assert.Contains(t, stderr, "For help, run: pojotyper --help")
				return
			}
			require.NoError(t, err, stderr)
			assert.Contains(t, stdout, tt.contains)
		})
	}
}

func TestEndToEnd_Query(t *testing.T) {
	jsonFile := writeJSON(t, t.TempDir(), "doc.json", `{"user": {"email": "ada@example.com", "age": 36}}`)

	stdout, stderr, err := run(t, "", "query", jsonFile, "email", "--type", "key")
	require.NoError(t, err, stderr)
	assert.Regexp(t, `user\.email\s+string\s+ada@example\.com`, stdout)
}

func TestEndToEnd_Version(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "pojotyper version "))
}
