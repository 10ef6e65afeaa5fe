package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dfryer1193/memento/memento/domain"
)

var _ domain.PostStore = (*JSONPostStore)(nil)

const (
	// DefaultJSONPath is where the JSON store lives unless configured otherwise
	DefaultJSONPath = "./storage/posts.json"

	storeFileMode = 0644
	storeDirMode  = 0755
)

// JSONPostStore implements domain.PostStore on top of a single JSON document
// whose keys are date keys and whose values are posts.
// The whole document is read on every operation and rewritten on every write.
// Writes in this process are serialized; other processes writing the same file are not coordinated.
type JSONPostStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONPostStore creates a store backed by the file at path
func NewJSONPostStore(path string) *JSONPostStore {
	if path == "" {
		path = DefaultJSONPath
	}
	return &JSONPostStore{
		path: path,
	}
}

// Path returns the location of the backing file
func (s *JSONPostStore) Path() string {
	return s.path
}

// Load returns every stored post, bootstrapping an empty document if the file does not exist
func (s *JSONPostStore) Load(ctx context.Context) (map[string]*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// GetPost retrieves the post stored under date
func (s *JSONPostStore) GetPost(ctx context.Context, date string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}

	p, ok := posts[date]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPostNotFound, date)
	}
	return p, nil
}

// UpsertPost sets posts[p.Date] = p and rewrites the document
func (s *JSONPostStore) UpsertPost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}
	if p.Date == "" {
		return fmt.Errorf("post date cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return err
	}

	posts[p.Date] = p
	return s.write(posts)
}

// InsertPostIfAbsent writes p only when its date key is free
func (s *JSONPostStore) InsertPostIfAbsent(ctx context.Context, p *domain.Post) (*domain.Post, bool, error) {
	if p == nil {
		return nil, false, fmt.Errorf("post cannot be nil")
	}
	if p.Date == "" {
		return nil, false, fmt.Errorf("post date cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, false, err
	}

	if existing, ok := posts[p.Date]; ok && existing != nil {
		return existing, false, nil
	}

	posts[p.Date] = p
	if err := s.write(posts); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// LastKey returns the lexicographically greatest date key
func (s *JSONPostStore) LastKey(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return "", false, err
	}

	return lastKey(posts)
}

// lastKey ignores keys holding null, which GetPost reports as not found
func lastKey(posts map[string]*domain.Post) (string, bool, error) {
	keys := make([]string, 0, len(posts))
	for k, p := range posts {
		if p != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false, nil
	}
	sort.Strings(keys)
	return keys[len(keys)-1], true, nil
}

// load must be called with s.mu held
func (s *JSONPostStore) load() (map[string]*domain.Post, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		posts := make(map[string]*domain.Post)
		if err := s.write(posts); err != nil {
			return nil, err
		}
		return posts, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Path: s.path, Err: err}
	}

	posts := make(map[string]*domain.Post)
	if len(bytes.TrimSpace(raw)) == 0 {
		return posts, nil
	}
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, &domain.StorageError{Op: "parse", Path: s.path, Err: err}
	}
	return posts, nil
}

// write replaces the document through a temp file and rename so readers never see a partial file.
// It must be called with s.mu held.
func (s *JSONPostStore) write(posts map[string]*domain.Post) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return &domain.StorageError{Op: "encode", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return &domain.StorageError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &domain.StorageError{Op: "create temp file", Path: s.path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &domain.StorageError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &domain.StorageError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.StorageError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Chmod(tmpPath, storeFileMode); err != nil {
		return &domain.StorageError{Op: "chmod", Path: tmpPath, Err: err}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return &domain.StorageError{Op: "rename", Path: s.path, Err: err}
	}
	return nil
}
