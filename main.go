package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/mcncl/pojotyper/internal/collections"
	"github.com/mcncl/pojotyper/internal/config"
	"github.com/mcncl/pojotyper/internal/errors"
	"github.com/mcncl/pojotyper/internal/logging"
	"github.com/mcncl/pojotyper/internal/parser"
	"github.com/mcncl/pojotyper/internal/query"
)

// Version information
const (
	Version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Debug  bool   `help:"Enable debug logging." short:"d"`
	Config string `help:"Path to a config file. Defaults to the nearest .pojotyper.yml." type:"path"`

	Gen         GenCmd         `cmd:"" default:"withargs" help:"Generate Java classes from JSON documents."`
	Query       QueryCmd       `cmd:"" help:"Search the keys and values of a JSON document."`
	Collections CollectionsCmd `cmd:"" help:"Manage saved JSON documents."`
	Version     VersionCmd     `cmd:"" help:"Show version information."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Debug      bool
	ConfigPath string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func newContext(cli *CLI) *Context {
	return &Context{
		Debug:      cli.Debug,
		ConfigPath: cli.Config,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// loadConfig reads the config file and applies command-line overrides.
func (c *Context) loadConfig(o config.Overrides) (*config.Config, error) {
	if c.Debug {
		o.Debug = true
	}
	cfg, err := config.LoadConfigWithCLI(c.ConfigPath, o)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}
	return cfg, nil
}

func (c *Context) logger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Dev.Debug, c.Stderr)
}

func (c *Context) openStore() (*collections.Store, error) {
	cfg, err := c.loadConfig(config.Overrides{})
	if err != nil {
		return nil, err
	}
	path, err := cfg.CollectionsPath()
	if err != nil {
		return nil, errors.NewStorageError("failed to locate collections", err)
	}
	return collections.Open(path, c.logger(cfg))
}

func main() {
	cli := &CLI{}
	app := kong.Must(cli,
		kong.Name("pojotyper"),
		kong.Description("A tool to convert JSON samples to Java classes"),
		kong.UsageOnError(),
	)

	kctx, err := app.Parse(os.Args[1:])
	app.FatalIfErrorf(err)

	if err := kctx.Run(newContext(cli)); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: pojotyper --help\n")
		os.Exit(1)
	}
}

// VersionCmd prints the version
type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "pojotyper version %s\n", Version)
	return err
}

// QueryCmd searches one JSON document
type QueryCmd struct {
	File  string `arg:"" help:"JSON file to search." type:"path"`
	Query string `arg:"" help:"Text to look for, case-insensitive."`
	Type  string `help:"Match against key, value or all." short:"t" default:"all" enum:"key,value,all"`
}

func (q *QueryCmd) Run(ctx *Context) error {
	ir, err := parser.ParseFile(q.File)
	if err != nil {
		return err
	}

	searchType, _ := query.ParseSearchType(q.Type)
	matches := query.Search(ir.Root, q.Query, searchType)
	if len(matches) == 0 {
		fmt.Fprintf(ctx.Stderr, "No results for %q\n", q.Query)
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	for _, m := range matches {
		path := m.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", path, m.Type, m.Value)
	}
	if err := tw.Flush(); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
