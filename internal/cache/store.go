// Package cache persists fetched tables as flat CSV files.
package cache

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"HypeChart/internal/model"
)

// ManifestFile is the name of the manifest inside the cache directory.
const ManifestFile = "manifest.json"

// Store is a directory of cached tables guarded by a Policy.
type Store struct {
	mu       sync.Mutex
	dir      string
	policy   Policy
	manifest *Manifest
	now      func() time.Time
}

// NewStore creates a store rooted at dir. It does not touch the filesystem
// until Init is called.
func NewStore(dir string, policy Policy) *Store {
	if policy == nil {
		policy = Exists()
	}
	return &Store{dir: dir, policy: policy, now: time.Now}
}

// Init creates the cache directory and loads the manifest.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	m, err := LoadManifest(filepath.Join(s.dir, ManifestFile))
	if err != nil {
		log.Printf("[WARN] cache manifest unreadable, starting fresh: %v", err)
		m = &Manifest{Files: map[string]Record{}}
	}
	s.manifest = m
	return nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for a cache name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Lookup returns the cached table for name when the file exists and the
// policy accepts it. A rejected or missing file is a miss, not an error.
func (s *Store) Lookup(name, params string) (*model.Table, bool, error) {
	path := s.Path(name)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}

	entry := Entry{Path: path, ModTime: info.ModTime(), Record: s.record(name)}
	if !s.policy.Valid(entry, params, s.now()) {
		log.Printf("[INFO] cache entry %s rejected by policy, refetching", path)
		return nil, false, nil
	}

	t, err := ReadTable(path)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// Save writes the table and records it in the manifest.
func (s *Store) Save(name, source, params string, t *model.Table) error {
	path := s.Path(name)
	if err := WriteTable(path, t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manifest == nil {
		s.manifest = &Manifest{Files: map[string]Record{}}
	}
	s.manifest.Files[name] = Record{
		Source:    source,
		Params:    params,
		Rows:      t.Len(),
		FetchedAt: s.now(),
	}
	if err := SaveManifest(filepath.Join(s.dir, ManifestFile), s.manifest); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

func (s *Store) record(name string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manifest == nil {
		return nil
	}
	r, ok := s.manifest.Files[name]
	if !ok {
		return nil
	}
	return &r
}
