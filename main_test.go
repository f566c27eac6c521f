package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/pojotyper/internal/collections"
	"github.com/mcncl/pojotyper/internal/errors"
)

type testEnv struct {
	ctx    *Context
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv points the config at a temp file so tests never pick up a
// config or collections store from the developer's machine.
func newTestEnv(t *testing.T, extraConfig string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "pojotyper.yml")
	content := "collections:\n  path: " + filepath.Join(dir, "collections.json") + "\n" + extraConfig
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	env := &testEnv{dir: dir, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	env.ctx = &Context{
		ConfigPath: configPath,
		Stdin:      strings.NewReader(""),
		Stdout:     env.stdout,
		Stderr:     env.stderr,
	}
	return env
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGen_SingleFileToStdout(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "user.json", `{"name": "Ada", "age": 36, "active": true}`)

	cmd := &GenCmd{Files: []string{input}}
	require.NoError(t, cmd.Run(env.ctx))

	expected := `// Source: user.json
public record User(
    String name,
    Integer age,
    Boolean active
) {}
`
	assert.Equal(t, expected, env.stdout.String())
}

func TestGen_WithOutputFile(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "order.json", `{"id": 1, "items": [{"sku": "x"}]}`)
	out := filepath.Join(env.dir, "Order.java")

	cmd := &GenCmd{Files: []string{input}, Out: out, Package: "com.shop", Style: "lombok"}
	require.NoError(t, cmd.Run(env.ctx))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	code := string(content)
	assert.True(t, strings.HasPrefix(code, "package com.shop;\n\nimport java.util.List;\n\nimport lombok.Getter;\n"))
	assert.Contains(t, code, "@AllArgsConstructor\npublic class Order {\n\n    private Integer id;\n    private List<Item> items;\n}")
	assert.Contains(t, code, "public class Item {")
	assert.Contains(t, env.stderr.String(), "written to "+out)
}

func TestGen_PerClassDirectory(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "team.json", `{"members": [{"name": "Ada", "tags": []}]}`)
	outDir := filepath.Join(env.dir, "generated")

	cmd := &GenCmd{Files: []string{input}, Mode: "per-class", Out: outDir, Style: "class"}
	require.NoError(t, cmd.Run(env.ctx))

	for _, name := range []string{"Tag.java", "Member.java", "Team.java"} {
		content, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(content), "public class "+strings.TrimSuffix(name, ".java")+" {")
	}

	tag, err := os.ReadFile(filepath.Join(outDir, "Tag.java"))
	require.NoError(t, err)
	assert.Equal(t, "public class Tag {\n\n    public Tag() {\n    }\n}\n", string(tag))
}

func TestGen_PerClassRejectsEscapingFileNames(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "doc.json", `{"../../escaped": {"a": 1}}`)
	outDir := filepath.Join(env.dir, "a", "b", "out")

	err := (&GenCmd{Files: []string{input}, Mode: "per-class", Out: outDir}).Run(env.ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidFilePath)
	assert.Contains(t, errors.UserFriendlyError(err), "Output error")

	_, statErr := os.Stat(filepath.Join(env.dir, "a", "escaped.java"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be written outside the output directory")
	_, statErr = os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no file is written when any name is rejected")
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		ok   bool
	}{
		{"User.java", true},
		{"Ünïcode.java", true},
		{"../Escaped.java", false},
		{"nested/Inner.java", false},
		{`win\Path.java`, false},
		{"..", false},
		{".java", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := outputPath(dir, tt.name)
			if !tt.ok {
				assert.ErrorIs(t, err, errors.ErrInvalidFilePath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.name), path)
		})
	}
}

func TestGen_PerClassStdout(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "team.json", `{"lead": {"name": "Ada"}}`)

	cmd := &GenCmd{Files: []string{input}, Mode: "per-class"}
	require.NoError(t, cmd.Run(env.ctx))

	out := env.stdout.String()
	assert.True(t, strings.HasPrefix(out, "// Lead.java\npublic record Lead("))
	assert.Contains(t, out, "\n\n// ========================================\n\n// Team.java\npublic record Team(")
}

func TestGen_PartialFailureContinues(t *testing.T) {
	env := newTestEnv(t, "")
	broken := env.writeFile(t, "broken.json", `{"a": `)
	ok := env.writeFile(t, "ok.json", `{"a": 1}`)

	cmd := &GenCmd{Files: []string{broken, filepath.Join(env.dir, "missing.json"), ok}}
	require.NoError(t, cmd.Run(env.ctx))

	assert.Contains(t, env.stderr.String(), "Skipped missing.json: Input error:")
	assert.Contains(t, env.stderr.String(), "Skipped broken.json: JSON parsing error:")
	assert.Contains(t, env.stdout.String(), "public record Ok(")
}

func TestGen_AllDocumentsFail(t *testing.T) {
	env := newTestEnv(t, "")
	broken := env.writeFile(t, "broken.json", `{"a": `)

	err := (&GenCmd{Files: []string{broken}}).Run(env.ctx)
	assert.ErrorIs(t, err, errors.ErrInvalidJSON)

	err = (&GenCmd{Files: []string{broken, filepath.Join(env.dir, "nope.json")}}).Run(env.ctx)
	assert.ErrorIs(t, err, errors.ErrNoOutput)
	assert.Empty(t, env.stdout.String())
}

func TestGen_ScalarRootProducesNothing(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "n.json", `42`)

	require.NoError(t, (&GenCmd{Files: []string{input}}).Run(env.ctx))
	assert.Empty(t, env.stdout.String())
	assert.Contains(t, env.stderr.String(), "No classes generated")
}

func TestGen_FromPipedStdin(t *testing.T) {
	env := newTestEnv(t, "root_name: ApiResponse\n")
	env.ctx.Stdin = strings.NewReader(`[{"ok": true, "data": null}]`)

	require.NoError(t, (&GenCmd{}).Run(env.ctx))
	out := env.stdout.String()
	assert.Contains(t, out, "// Source: ApiResponse\n")
	assert.Contains(t, out, "public record ApiResponse(\n    Boolean ok,\n    Data data\n) {}")
	assert.Contains(t, out, "public record Data() {}")
}

func TestGen_RootNameFlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t, "root_name: FromConfig\n")
	env.ctx.Stdin = strings.NewReader(`{"a": 1}`)

	require.NoError(t, (&GenCmd{RootName: "FromFlag"}).Run(env.ctx))
	assert.Contains(t, env.stdout.String(), "public record FromFlag(")
}

func TestGen_EmptyStdin(t *testing.T) {
	env := newTestEnv(t, "")
	env.ctx.Stdin = strings.NewReader("  \n")

	err := (&GenCmd{}).Run(env.ctx)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestGen_InvalidStyle(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "a.json", `{"a": 1}`)

	err := (&GenCmd{Files: []string{input}, Style: "kotlin"}).Run(env.ctx)
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Configuration error")
}

func TestGen_FormattingFromConfig(t *testing.T) {
	env := newTestEnv(t, "formatting:\n  enabled: true\n  use_tabs: true\n")
	input := env.writeFile(t, "a.json", `{"name": "x"}`)

	require.NoError(t, (&GenCmd{Files: []string{input}}).Run(env.ctx))
	assert.Contains(t, env.stdout.String(), "\n\tString name\n")

	env.stdout.Reset()
	require.NoError(t, (&GenCmd{Files: []string{input}, NoFormat: true}).Run(env.ctx))
	assert.Contains(t, env.stdout.String(), "\n    String name\n")
}

func TestGen_FormatFailureKeepsOutput(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "odd.json", `{"brace{": {"b": 1}, "name": "x"}`)

	require.NoError(t, (&GenCmd{Files: []string{input}}).Run(env.ctx))
	assert.Contains(t, env.stdout.String(), "public record Brace{(\n    Integer b\n) {}")
	assert.Contains(t, env.stdout.String(), "public record Odd(")
	assert.Contains(t, env.stderr.String(), "formatting failed, writing unformatted code")
}

func TestGen_FromCollection(t *testing.T) {
	env := newTestEnv(t, "")
	store, err := collections.Open(filepath.Join(env.dir, "collections.json"), nil)
	require.NoError(t, err)
	folder := store.Items()[0].ID
	_, err = store.CreateFile("user", folder, `{"address": {"city": "London"}}`)
	require.NoError(t, err)
	_, err = store.CreateFile("office", folder, `{"address": {"zip": 1}}`)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	require.NoError(t, (&GenCmd{Collection: "all"}).Run(env.ctx))
	out := env.stdout.String()
	assert.Contains(t, out, "// Source: user.json\n")
	assert.Contains(t, out, "// Source: office.json\n")
	assert.Equal(t, 1, strings.Count(out, "public record Address("))

	err = (&GenCmd{Collection: "missing"}).Run(env.ctx)
	assert.ErrorIs(t, err, collections.ErrNotFound)
}

func TestGen_WatchNeedsFiles(t *testing.T) {
	env := newTestEnv(t, "")
	err := (&GenCmd{Watch: true}).Run(env.ctx)
	assert.ErrorIs(t, err, errors.ErrNoInput)
}

func TestReadInteractiveInput(t *testing.T) {
	env := newTestEnv(t, "")
	env.ctx.Stdin = strings.NewReader("{\n  \"a\": 1\n}")

	content, err := readInteractiveInput(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", content, "last line without newline is kept")
	assert.Contains(t, env.stderr.String(), "Interactive Mode")

	env.ctx.Stdin = strings.NewReader("")
	_, err = readInteractiveInput(env.ctx)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestWriteOutput_FileError(t *testing.T) {
	env := newTestEnv(t, "")
	err := writeOutput(env.ctx, "/non/existent/dir/Out.java", "code")
	assert.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Output error")
}

func TestQueryCmd(t *testing.T) {
	env := newTestEnv(t, "")
	input := env.writeFile(t, "doc.json", `{"user": {"name": "Ada", "nick": null}, "tags": ["admin"]}`)

	require.NoError(t, (&QueryCmd{File: input, Query: "ad", Type: "value"}).Run(env.ctx))
	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^user\.name\s+string\s+Ada$`, lines[0])
	assert.Regexp(t, `^tags\[0\]\s+string\s+admin$`, lines[1])

	env.stdout.Reset()
	require.NoError(t, (&QueryCmd{File: input, Query: "zzz", Type: "all"}).Run(env.ctx))
	assert.Empty(t, env.stdout.String())
	assert.Contains(t, env.stderr.String(), `No results for "zzz"`)
}

func TestCollectionsCommands(t *testing.T) {
	env := newTestEnv(t, "")
	sample := env.writeFile(t, "sample.json", `{"id": 1}`)

	require.NoError(t, (&AddFolderCmd{Name: "api"}).Run(env.ctx))
	folderID := strings.TrimSpace(env.stdout.String())
	env.stdout.Reset()

	require.NoError(t, (&AddFileCmd{Name: "user", File: sample, Parent: folderID}).Run(env.ctx))
	fileID := strings.TrimSpace(env.stdout.String())
	env.stdout.Reset()

	require.NoError(t, (&ListCmd{}).Run(env.ctx))
	list := env.stdout.String()
	assert.Contains(t, list, "  My Collection/  [")
	assert.Contains(t, list, "  api/  ["+folderID+"]")
	assert.Contains(t, list, "*   user.json  ["+fileID+"]")
	env.stdout.Reset()

	require.NoError(t, (&ShowCmd{ID: fileID}).Run(env.ctx))
	assert.Equal(t, "{\"id\": 1}\n", env.stdout.String())
	env.stdout.Reset()

	require.NoError(t, (&RenameCmd{ID: fileID, Name: "account"}).Run(env.ctx))
	require.NoError(t, (&DupCmd{ID: fileID}).Run(env.ctx))
	env.stdout.Reset()

	require.NoError(t, (&SearchCmd{Query: "ACCOUNT"}).Run(env.ctx))
	assert.Contains(t, env.stdout.String(), "account.json  ["+fileID+"]")
	assert.Contains(t, env.stdout.String(), "account (copy).json  [")
	env.stdout.Reset()

	exportPath := filepath.Join(env.dir, "export.json")
	require.NoError(t, (&ExportCmd{Out: exportPath}).Run(env.ctx))

	require.NoError(t, (&RmCmd{ID: folderID}).Run(env.ctx))
	assert.ErrorIs(t, (&RmCmd{ID: folderID}).Run(env.ctx), collections.ErrNotFound)

	require.NoError(t, (&ImportCmd{File: exportPath}).Run(env.ctx))
	assert.Contains(t, env.stderr.String(), "Imported 2 item(s)")

	assert.Error(t, (&ClearCmd{}).Run(env.ctx))
	require.NoError(t, (&ClearCmd{Yes: true}).Run(env.ctx))
	require.NoError(t, (&ListCmd{}).Run(env.ctx))
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(env.stdout.String()), "\n")+1)
}

func TestAddFileRejectsInvalidJSON(t *testing.T) {
	env := newTestEnv(t, "")
	bad := env.writeFile(t, "bad.json", `{nope}`)

	err := (&AddFileCmd{Name: "bad", File: bad}).Run(env.ctx)
	assert.ErrorIs(t, err, errors.ErrInvalidJSON)
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, (&VersionCmd{}).Run(env.ctx))
	assert.Equal(t, "pojotyper version "+Version+"\n", env.stdout.String())
}
