package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mcncl/pojotyper/internal/batch"
	"github.com/mcncl/pojotyper/internal/config"
	"github.com/mcncl/pojotyper/internal/errors"
	"github.com/mcncl/pojotyper/internal/formatter"
	"github.com/mcncl/pojotyper/internal/models"
	"github.com/mcncl/pojotyper/internal/parser"
	"github.com/mcncl/pojotyper/internal/watch"
)

const divider = "// ========================================"

// GenCmd converts JSON documents to Java source
type GenCmd struct {
	Files []string `arg:"" optional:"" help:"JSON files to convert. Reads stdin when omitted." type:"path"`

	Style      string `help:"Class style: record, class or lombok." short:"s"`
	Mode       string `help:"Output mode: combined or per-class." short:"m"`
	Package    string `help:"Java package for generated code." short:"p"`
	RootName   string `help:"Root class name for stdin input." short:"r" name:"root-name"`
	Out        string `help:"Output file (combined) or directory (per-class). Defaults to stdout." short:"o" type:"path"`
	Collection string `help:"Generate from a saved collection item id, or 'all'." short:"c"`
	Watch      bool   `help:"Regenerate whenever an input file changes." short:"w"`
	NoFormat   bool   `help:"Skip output formatting." name:"no-format"`
}

func (g *GenCmd) overrides() config.Overrides {
	return config.Overrides{
		Style:    g.Style,
		Mode:     g.Mode,
		Package:  g.Package,
		RootName: g.RootName,
		Output:   g.Out,
		NoFormat: g.NoFormat,
	}
}

func (g *GenCmd) Run(ctx *Context) error {
	cfg, err := ctx.loadConfig(g.overrides())
	if err != nil {
		return err
	}
	logger := ctx.logger(cfg)

	if !g.Watch {
		return g.run(ctx, cfg, logger)
	}

	if len(g.Files) == 0 {
		return errors.NewInputError("--watch needs input files", errors.ErrNoInput)
	}
	if err := g.run(ctx, cfg, logger); err != nil {
		fmt.Fprintf(ctx.Stderr, "%s\n", errors.UserFriendlyError(err))
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(ctx.Stderr, "Watching %d file(s), press Ctrl+C to stop\n", len(g.Files))
	w := &watch.Watcher{Debounce: watch.DefaultDebounce, Logger: logger}
	return w.Watch(sigCtx, g.Files, func(changed []string) {
		logger.Info("regenerating", "changed", strings.Join(changed, ","))
		if err := g.run(ctx, cfg, logger); err != nil {
			logger.Debug("regeneration failed", "stage", errors.TypeOf(err))
			fmt.Fprintf(ctx.Stderr, "%s\n", errors.UserFriendlyError(err))
		}
	})
}

// run executes one generation pass
func (g *GenCmd) run(ctx *Context, cfg *config.Config, logger *slog.Logger) error {
	// 1. Collect documents
	docs, readFailures, err := g.documents(ctx, cfg)
	if err != nil {
		return err
	}

	// 2. Parse, analyze and emit
	driver := batch.NewDriverWithConfig(cfg, logger)
	result := driver.Run(docs, cfg.StyleValue(), cfg.ModeValue())
	result.Failures = append(readFailures, result.Failures...)

	for _, f := range result.Failures {
		fmt.Fprintf(ctx.Stderr, "Skipped %s: %s\n", f.DocumentName, f.ErrorMessage)
	}

	total := len(docs) + len(readFailures)
	if result.Succeeded(total) == 0 {
		if len(result.Failures) == 1 {
			return result.Failures[0].Err
		}
		return errors.NewInputError(fmt.Sprintf("all %d documents failed", total), errors.ErrNoOutput)
	}

	// 3. Format and write
	var f *formatter.Formatter
	if cfg.Formatting.Enabled {
		f = formatter.NewFormatterWithConfig(cfg)
	}

	if cfg.ModeValue() == models.PerClass {
		return writeFiles(ctx, cfg.Output.Dir, result.Files, f, logger)
	}

	if result.Code == "" {
		fmt.Fprintln(ctx.Stderr, "No classes generated: the input has no object shape.")
		return nil
	}
	return writeOutput(ctx, cfg.Output.Dir, format(f, result.Code, logger))
}

// documents returns the batch input: files, a saved collection, or stdin.
// Files that cannot be read are reported as failures rather than errors.
func (g *GenCmd) documents(ctx *Context, cfg *config.Config) ([]models.Document, []models.DocumentFailure, error) {
	if g.Collection != "" {
		store, err := ctx.openStore()
		if err != nil {
			return nil, nil, err
		}
		id := g.Collection
		if id == "all" {
			id = ""
		}
		docs, err := store.Documents(id)
		if err != nil {
			return nil, nil, err
		}
		if len(docs) == 0 {
			return nil, nil, errors.NewInputError("the collection has no files", errors.ErrNoInput)
		}
		return docs, nil, nil
	}

	if len(g.Files) > 0 {
		var docs []models.Document
		var failures []models.DocumentFailure
		for _, path := range g.Files {
			name := filepath.Base(path)
			data, err := parser.ReadFile(path)
			if err != nil {
				failures = append(failures, models.DocumentFailure{
					DocumentName: name,
					ErrorMessage: errors.UserFriendlyError(err),
					Err:          err,
				})
				continue
			}
			docs = append(docs, models.Document{Name: name, Content: string(data)})
		}
		return docs, failures, nil
	}

	content, err := g.readStdin(ctx)
	if err != nil {
		return nil, nil, err
	}
	return []models.Document{{Name: cfg.RootName, Content: content}}, nil, nil
}

// readStdin reads piped input, or paste mode input from a terminal
func (g *GenCmd) readStdin(ctx *Context) (string, error) {
	if isTerminal(ctx.Stdin) {
		return readInteractiveInput(ctx)
	}

	jsonData, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(strings.TrimSpace(string(jsonData))) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(jsonData), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) (string, error) {
	fmt.Fprintln(ctx.Stderr, "pojotyper Interactive Mode")
	fmt.Fprintln(ctx.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(ctx.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(strings.TrimSpace(jsonData)) == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(ctx.Stderr, "\nProcessing JSON...")
	return jsonData, nil
}

// format returns the formatted code, or code unchanged when the formatter
// rejects it, so one odd identifier never costs the whole output.
func format(f *formatter.Formatter, code string, logger *slog.Logger) string {
	if f == nil {
		return code
	}
	formatted, err := f.Format(code)
	if err != nil {
		logger.Warn("formatting failed, writing unformatted code",
			"error", errors.NewFormatError("failed to format Java code", err))
		return code
	}
	return formatted
}

// writeOutput writes combined code to a file or stdout
func writeOutput(ctx *Context, out, code string) error {
	if out != "" {
		if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", out), err)
		}
		fmt.Fprintf(ctx.Stderr, "Generated Java code written to %s\n", out)
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimSpace(code)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// writeFiles writes one file per class into dir, or prints each unit under a
// header naming its file when dir is empty.
func writeFiles(ctx *Context, dir string, files []models.GeneratedFile, f *formatter.Formatter, logger *slog.Logger) error {
	if len(files) == 0 {
		fmt.Fprintln(ctx.Stderr, "No classes generated: the input has no object shape.")
		return nil
	}

	units := make([]string, len(files))
	for i, file := range files {
		units[i] = format(f, file.Code, logger)
	}

	if dir == "" {
		parts := make([]string, len(files))
		for i, file := range files {
			parts[i] = "// " + file.FileName + "\n" + strings.TrimSpace(units[i])
		}
		return writeOutput(ctx, "", strings.Join(parts, "\n\n"+divider+"\n\n"))
	}

	paths := make([]string, len(files))
	for i, file := range files {
		path, err := outputPath(dir, file.FileName)
		if err != nil {
			return err
		}
		paths[i] = path
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create directory '%s'", dir), err)
	}
	for i, path := range paths {
		if err := os.WriteFile(path, []byte(units[i]), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
	}
	fmt.Fprintf(ctx.Stderr, "Generated %d Java file(s) in %s\n", len(files), dir)
	return nil
}

// outputPath joins name onto dir, rejecting names that are not a single
// path element. Class names come from JSON keys and may hold separators.
func outputPath(dir, name string) (string, error) {
	base := strings.TrimSuffix(name, ".java")
	if base == "" || base == "." || base == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", errors.NewOutputError(
			fmt.Sprintf("class file name %q is not a plain file name; rename the JSON key or use --mode combined", name),
			errors.ErrInvalidFilePath,
		)
	}
	path := filepath.Join(dir, name)
	if rel, err := filepath.Rel(dir, path); err != nil || rel != name {
		return "", errors.NewOutputError(fmt.Sprintf("class file %q would be written outside '%s'", name, dir), errors.ErrInvalidFilePath)
	}
	return path, nil
}
