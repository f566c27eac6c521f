// Package collections keeps a tree of saved JSON documents, organised in
// folders, persisted as a single JSON file.
package collections

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mcncl/pojotyper/internal/errors"
	"github.com/mcncl/pojotyper/internal/logging"
	"github.com/mcncl/pojotyper/internal/models"
)

var (
	ErrNotFound      = errors.New("item not found")
	ErrNotFolder     = errors.New("item is not a folder")
	ErrNotFile       = errors.New("item is not a file")
	ErrInvalidFormat = errors.New("invalid collections format")
)

// DefaultFolderName names the folder a fresh store starts with.
const DefaultFolderName = "My Collection"

const (
	exportVersion = "1.0"
	fileExt       = ".json"
)

// ItemType is folder or file.
type ItemType string

const (
	Folder ItemType = "folder"
	File   ItemType = "file"
)

// Item is a folder or a saved JSON file. Timestamps are Unix milliseconds.
type Item struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      ItemType `json:"type"`
	Content   string   `json:"content,omitempty"`
	Children  []*Item  `json:"children,omitempty"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
	Expanded  bool     `json:"isExpanded,omitempty"`
}

// IsFolder reports whether the item can hold children.
func (i *Item) IsFolder() bool { return i.Type == Folder }

type state struct {
	Collections []*Item `json:"collections"`
	SelectedID  string  `json:"selectedId,omitempty"`
}

// exportEnvelope is the document written by Export.
type exportEnvelope struct {
	Version     string  `json:"version"`
	ExportedAt  string  `json:"exportedAt"`
	Collections []*Item `json:"collections"`
}

// Store is a file-backed collection tree. Mutations only touch memory; call
// Save to persist them.
type Store struct {
	mu     sync.Mutex
	path   string
	state  state
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

// Open loads the store at path. A missing file starts the default tree; an
// unreadable or corrupt one is logged and replaced by the default tree.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.NewStorageError("collections path is empty", apperrors.ErrInvalidFilePath)
	}

	s := &Store{
		path:   path,
		logger: logging.OrDiscard(logger),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.state = state{Collections: s.defaultTree()}
		return s, nil
	case err != nil:
		s.logger.Warn("failed to read collections, starting fresh", "path", path, "error", err)
		s.state = state{Collections: s.defaultTree()}
		return s, nil
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("failed to decode collections, starting fresh", "path", path, "error", err)
		s.state = state{Collections: s.defaultTree()}
		return s, nil
	}
	if st.Collections == nil {
		st.Collections = []*Item{}
	}
	s.state = st
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Save writes the tree as indented JSON via a temp file and rename.
func (s *Store) Save() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.state, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return apperrors.NewStorageError("failed to encode collections", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory '%s'", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".collections-*.json")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return apperrors.NewStorageError("failed to write collections", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to write collections", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to replace '%s'", s.path), err)
	}
	return nil
}

// Items returns the top-level items.
func (s *Store) Items() []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Collections
}

// SelectedID returns the selected item id, or "" when nothing is selected.
func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SelectedID
}

// Select marks id as selected. An empty id clears the selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && find(s.state.Collections, id) == nil {
		return notFound(id)
	}
	s.state.SelectedID = id
	return nil
}

// Find returns the item with id, or nil.
func (s *Store) Find(id string) *Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.state.Collections, id)
}

// CreateFolder adds a collapsed folder under parentID, or at the top level
// when parentID is empty, and returns its id.
func (s *Store) CreateFolder(name, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	folder := &Item{ID: s.newID(), Name: name, Type: Folder, CreatedAt: now, UpdatedAt: now}
	if err := s.attach(folder, parentID); err != nil {
		return "", err
	}
	return folder.ID, nil
}

// CreateFile adds a file under parentID and selects it. The name gains a .json
// extension when missing; empty content defaults to {}.
func (s *Store) CreateFile(name, parentID, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content == "" {
		content = "{}"
	}
	now := s.stamp()
	file := &Item{ID: s.newID(), Name: withExt(name), Type: File, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := s.attach(file, parentID); err != nil {
		return "", err
	}
	s.state.SelectedID = file.ID
	return file.ID, nil
}

func (s *Store) attach(item *Item, parentID string) error {
	if parentID == "" {
		s.state.Collections = append(s.state.Collections, item)
		return nil
	}
	parent := find(s.state.Collections, parentID)
	if parent == nil {
		return notFound(parentID)
	}
	if !parent.IsFolder() {
		return apperrors.NewStorageError(fmt.Sprintf("cannot add to '%s'", parent.Name), ErrNotFolder)
	}
	parent.Children = append(parent.Children, item)
	parent.UpdatedAt = item.CreatedAt
	parent.Expanded = true
	return nil
}

// Rename changes an item's name. Files keep their .json extension.
func (s *Store) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := find(s.state.Collections, id)
	if item == nil {
		return notFound(id)
	}
	if item.Type == File {
		name = withExt(name)
	}
	item.Name = name
	item.UpdatedAt = s.stamp()
	return nil
}

// Delete removes an item and its subtree, clearing the selection if it pointed inside.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := find(s.state.Collections, id)
	if item == nil {
		return notFound(id)
	}
	if s.state.SelectedID != "" && (s.state.SelectedID == id || find(item.Children, s.state.SelectedID) != nil) {
		s.state.SelectedID = ""
	}
	s.state.Collections = remove(s.state.Collections, id)
	return nil
}

// UpdateContent replaces a file's JSON text.
func (s *Store) UpdateContent(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := find(s.state.Collections, id)
	if item == nil {
		return notFound(id)
	}
	if item.Type != File {
		return apperrors.NewStorageError(fmt.Sprintf("cannot set content of '%s'", item.Name), ErrNotFile)
	}
	item.Content = content
	item.UpdatedAt = s.stamp()
	return nil
}

// Toggle flips a folder between expanded and collapsed.
func (s *Store) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := find(s.state.Collections, id)
	if item == nil {
		return notFound(id)
	}
	if !item.IsFolder() {
		return apperrors.NewStorageError(fmt.Sprintf("cannot expand '%s'", item.Name), ErrNotFolder)
	}
	item.Expanded = !item.Expanded
	return nil
}

// Duplicate deep-copies an item with fresh ids and appends the copy next to
// the original. Returns the id of the copy.
func (s *Store) Duplicate(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := find(s.state.Collections, id)
	if item == nil {
		return "", notFound(id)
	}

	dup := s.copyItem(item)
	if parent := parentOf(s.state.Collections, id, nil); parent != nil {
		parent.Children = append(parent.Children, dup)
	} else {
		s.state.Collections = append(s.state.Collections, dup)
	}
	return dup.ID, nil
}

// copyItem renames every copied descendant too.
func (s *Store) copyItem(item *Item) *Item {
	now := s.stamp()
	cp := *item
	cp.ID = s.newID()
	cp.Name = copyName(item)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if item.Children != nil {
		cp.Children = make([]*Item, len(item.Children))
		for i, child := range item.Children {
			cp.Children[i] = s.copyItem(child)
		}
	}
	return &cp
}

func copyName(item *Item) string {
	name := strings.TrimSuffix(item.Name, fileExt) + " (copy)"
	if item.Type == File {
		name += fileExt
	}
	return name
}

// Ancestors returns the ids of the folders enclosing id, outermost first.
func (s *Store) Ancestors(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var path []string
	if !ancestors(s.state.Collections, id, &path) {
		return nil
	}
	return path
}

// ExpandTo expands every folder enclosing id.
func (s *Store) ExpandTo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var path []string
	if !ancestors(s.state.Collections, id, &path) {
		return notFound(id)
	}
	for _, folderID := range path {
		find(s.state.Collections, folderID).Expanded = true
	}
	return nil
}

// Search returns items whose name contains q, case-insensitively, in tree order.
func (s *Store) Search(q string) []*Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(q) == "" {
		return nil
	}
	q = strings.ToLower(q)

	var results []*Item
	walk(s.state.Collections, func(item *Item) {
		if strings.Contains(strings.ToLower(item.Name), q) {
			results = append(results, item)
		}
	})
	return results
}

// Export writes the whole tree wrapped in a versioned envelope.
func (s *Store) Export(w io.Writer) error {
	s.mu.Lock()
	env := exportEnvelope{
		Version:     exportVersion,
		ExportedAt:  s.now().UTC().Format(time.RFC3339),
		Collections: s.state.Collections,
	}
	s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return apperrors.NewStorageError("failed to export collections", err)
	}
	return nil
}

// Import appends the items of an export envelope, or of a bare item array,
// to the top level. Returns the number of items added.
func (s *Store) Import(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to read import", err)
	}

	var items []*Item
	var env struct {
		Collections []*Item `json:"collections"`
	}
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(data, &items); err != nil {
			return 0, apperrors.NewStorageError("import is not a list of items", ErrInvalidFormat)
		}
	case strings.HasPrefix(trimmed, "{"):
		if err := json.Unmarshal(data, &env); err != nil || env.Collections == nil {
			return 0, apperrors.NewStorageError("import has no collections array", ErrInvalidFormat)
		}
		items = env.Collections
	default:
		return 0, apperrors.NewStorageError("import is not JSON", ErrInvalidFormat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Collections = append(s.state.Collections, items...)
	return len(items), nil
}

// Clear resets the store to the default tree.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{Collections: s.defaultTree()}
}

// Documents returns the files under id, in tree order, as batch input. An
// empty id selects the whole tree; a file id selects just that file.
func (s *Store) Documents(id string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roots := s.state.Collections
	if id != "" {
		item := find(s.state.Collections, id)
		if item == nil {
			return nil, notFound(id)
		}
		roots = []*Item{item}
	}

	var docs []models.Document
	walk(roots, func(item *Item) {
		if item.Type == File {
			docs = append(docs, models.Document{Name: item.Name, Content: item.Content})
		}
	})
	return docs, nil
}

func (s *Store) defaultTree() []*Item {
	now := s.stamp()
	return []*Item{{
		ID:        s.newID(),
		Name:      DefaultFolderName,
		Type:      Folder,
		CreatedAt: now,
		UpdatedAt: now,
		Expanded:  true,
	}}
}

func (s *Store) stamp() int64 {
	return s.now().UnixMilli()
}

func notFound(id string) error {
	return apperrors.NewStorageError(fmt.Sprintf("no item with id '%s'", id), ErrNotFound)
}

func withExt(name string) string {
	if strings.HasSuffix(name, fileExt) {
		return name
	}
	return name + fileExt
}

func find(items []*Item, id string) *Item {
	for _, item := range items {
		if item.ID == id {
			return item
		}
		if found := find(item.Children, id); found != nil {
			return found
		}
	}
	return nil
}

func parentOf(items []*Item, id string, parent *Item) *Item {
	for _, item := range items {
		if item.ID == id {
			return parent
		}
		if p := parentOf(item.Children, id, item); p != nil {
			return p
		}
	}
	return nil
}

func ancestors(items []*Item, id string, path *[]string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
		*path = append(*path, item.ID)
		if ancestors(item.Children, id, path) {
			return true
		}
		*path = (*path)[:len(*path)-1]
	}
	return false
}

func remove(items []*Item, id string) []*Item {
	out := items[:0]
	for _, item := range items {
		if item.ID == id {
			continue
		}
		item.Children = remove(item.Children, id)
		out = append(out, item)
	}
	return out
}

func walk(items []*Item, fn func(*Item)) {
	for _, item := range items {
		fn(item)
		walk(item.Children, fn)
	}
}
