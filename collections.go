package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/pojotyper/internal/collections"
	"github.com/mcncl/pojotyper/internal/errors"
	"github.com/mcncl/pojotyper/internal/parser"
)

// CollectionsCmd groups the saved-document commands
type CollectionsCmd struct {
	List      ListCmd      `cmd:"" default:"1" help:"Show the collection tree."`
	AddFolder AddFolderCmd `cmd:"" help:"Create a folder."`
	AddFile   AddFileCmd   `cmd:"" help:"Save a JSON document."`
	Rename    RenameCmd    `cmd:"" help:"Rename an item."`
	Rm        RmCmd        `cmd:"" help:"Delete an item and everything under it."`
	Dup       DupCmd       `cmd:"" help:"Duplicate an item."`
	Show      ShowCmd      `cmd:"" help:"Print a saved document."`
	Search    SearchCmd    `cmd:"" help:"Find items by name."`
	Export    ExportCmd    `cmd:"" help:"Export all collections as JSON."`
	Import    ImportCmd    `cmd:"" help:"Import collections from an export file."`
	Clear     ClearCmd     `cmd:"" help:"Delete everything and start over."`
}

// mutate opens the store, applies fn and saves the result.
func mutate(ctx *Context, fn func(*collections.Store) error) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	if err := fn(store); err != nil {
		return err
	}
	return store.Save()
}

type ListCmd struct{}

func (l *ListCmd) Run(ctx *Context) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	printTree(ctx.Stdout, store.Items(), store.SelectedID(), 0)
	return nil
}

func printTree(w io.Writer, items []*collections.Item, selected string, depth int) {
	for _, item := range items {
		marker := " "
		if item.ID == selected {
			marker = "*"
		}
		name := item.Name
		if item.IsFolder() {
			name += "/"
		}
		fmt.Fprintf(w, "%s%s %s  [%s]\n", marker, strings.Repeat("  ", depth), name, item.ID)
		if item.IsFolder() {
			printTree(w, item.Children, selected, depth+1)
		}
	}
}

type AddFolderCmd struct {
	Name   string `arg:"" help:"Folder name."`
	Parent string `help:"Parent folder id. Defaults to the top level."`
}

func (a *AddFolderCmd) Run(ctx *Context) error {
	return mutate(ctx, func(s *collections.Store) error {
		id, err := s.CreateFolder(a.Name, a.Parent)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.Stdout, id)
		return nil
	})
}

type AddFileCmd struct {
	Name   string `arg:"" help:"Document name; .json is appended when missing."`
	File   string `arg:"" optional:"" help:"JSON file to copy in. Defaults to {}." type:"path"`
	Parent string `help:"Parent folder id. Defaults to the top level."`
}

func (a *AddFileCmd) Run(ctx *Context) error {
	content := ""
	if a.File != "" {
		data, err := parser.ReadFile(a.File)
		if err != nil {
			return err
		}
		if _, err := parser.ParseBytes(data); err != nil {
			return err
		}
		content = string(data)
	}

	return mutate(ctx, func(s *collections.Store) error {
		id, err := s.CreateFile(a.Name, a.Parent, content)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.Stdout, id)
		return nil
	})
}

type RenameCmd struct {
	ID   string `arg:"" help:"Item id."`
	Name string `arg:"" help:"New name."`
}

func (r *RenameCmd) Run(ctx *Context) error {
	return mutate(ctx, func(s *collections.Store) error {
		return s.Rename(r.ID, r.Name)
	})
}

type RmCmd struct {
	ID string `arg:"" help:"Item id."`
}

func (r *RmCmd) Run(ctx *Context) error {
	return mutate(ctx, func(s *collections.Store) error {
		return s.Delete(r.ID)
	})
}

type DupCmd struct {
	ID string `arg:"" help:"Item id."`
}

func (d *DupCmd) Run(ctx *Context) error {
	return mutate(ctx, func(s *collections.Store) error {
		id, err := s.Duplicate(d.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.Stdout, id)
		return nil
	})
}

type ShowCmd struct {
	ID string `arg:"" help:"Item id."`
}

func (sc *ShowCmd) Run(ctx *Context) error {
	return mutate(ctx, func(s *collections.Store) error {
		item := s.Find(sc.ID)
		if item == nil {
			return errors.NewStorageError(fmt.Sprintf("no item with id '%s'", sc.ID), collections.ErrNotFound)
		}
		if item.IsFolder() {
			printTree(ctx.Stdout, []*collections.Item{item}, "", 0)
			return s.ExpandTo(sc.ID)
		}
		fmt.Fprintln(ctx.Stdout, strings.TrimSpace(item.Content))
		if err := s.ExpandTo(sc.ID); err != nil {
			return err
		}
		return s.Select(sc.ID)
	})
}

type SearchCmd struct {
	Query string `arg:"" help:"Text to look for in item names."`
}

func (sc *SearchCmd) Run(ctx *Context) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	results := store.Search(sc.Query)
	if len(results) == 0 {
		fmt.Fprintf(ctx.Stderr, "No items match %q\n", sc.Query)
		return nil
	}
	for _, item := range results {
		fmt.Fprintf(ctx.Stdout, "%s  [%s]\n", item.Name, item.ID)
	}
	return nil
}

type ExportCmd struct {
	Out string `help:"Write the export to a file instead of stdout." short:"o" type:"path"`
}

func (e *ExportCmd) Run(ctx *Context) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	if e.Out == "" {
		return store.Export(ctx.Stdout)
	}

	f, err := os.Create(e.Out)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create '%s'", e.Out), err)
	}
	if err := store.Export(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write '%s'", e.Out), err)
	}
	fmt.Fprintf(ctx.Stderr, "Collections exported to %s\n", e.Out)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Export file or JSON array of items." type:"path"`
}

func (i *ImportCmd) Run(ctx *Context) error {
	f, err := os.Open(i.File)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("failed to open '%s'", i.File), err)
	}
	defer func() { _ = f.Close() }()

	return mutate(ctx, func(s *collections.Store) error {
		n, err := s.Import(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.Stderr, "Imported %d item(s)\n", n)
		return nil
	})
}

type ClearCmd struct {
	Yes bool `help:"Confirm deleting every item." short:"y"`
}

func (c *ClearCmd) Run(ctx *Context) error {
	if !c.Yes {
		return errors.NewInputError("clear deletes every saved item; pass --yes to confirm", nil)
	}
	return mutate(ctx, func(s *collections.Store) error {
		s.Clear()
		return nil
	})
}
