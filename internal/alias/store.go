// Package alias persists learned mappings from raw counterparty spellings to
// canonical supplier names, one store per data-source namespace.
package alias

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a namespace-scoped, durable raw-name to canonical-name mapping.
// Entries never expire: once a spelling has been mapped, lookups are
// deterministic across runs and process restarts. Writes go through a mutex
// so concurrent hosts sharing a namespace do not lose updates.
type Store struct {
	mu      sync.Mutex
	path    string
	aliases map[string]string
}

// Open loads the alias store for the given namespace from dir. A missing
// file is not an error: the store starts empty and the file is created on
// the first Add.
func Open(dir, namespace string) (*Store, error) {
	s := &Store{
		path:    filepath.Join(dir, namespace+".alias.json"),
		aliases: make(map[string]string),
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read alias store %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &s.aliases); err != nil {
		return nil, fmt.Errorf("failed to parse alias store %s: %w", s.path, err)
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the canonical name mapped to rawName, if any.
func (s *Store) Lookup(rawName string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	canonical, ok := s.aliases[rawName]
	return canonical, ok
}

// Contains reports whether rawName has a learned mapping.
func (s *Store) Contains(rawName string) bool {
	_, ok := s.Lookup(rawName)
	return ok
}

// Add inserts or overwrites the mapping and persists the whole store
// synchronously, so a crash right after a successful disambiguation never
// loses the learned alias.
func (s *Store) Add(rawName, canonical string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aliases[rawName] = canonical
	return s.persistLocked()
}

// Remove deletes the mapping for rawName and persists the store. It reports
// whether a mapping existed.
func (s *Store) Remove(rawName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aliases[rawName]; !ok {
		return false, nil
	}

	delete(s.aliases, rawName)
	return true, s.persistLocked()
}

// Clear drops every mapping in the namespace and persists the empty store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aliases = make(map[string]string)
	return s.persistLocked()
}

// Len returns the number of learned mappings.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.aliases)
}

// All returns a copy of every mapping.
func (s *Store) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.aliases))
	for raw, canonical := range s.aliases {
		out[raw] = canonical
	}
	return out
}

// persistLocked writes the full mapping to disk. The serialization is
// indented JSON with sorted keys, so a bad learned alias is a one-line text
// edit and files diff cleanly. The write lands in a temp file first and is
// renamed into place.
func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create alias store directory: %w", err)
	}

	data, err := json.MarshalIndent(s.aliases, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode alias store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write alias store %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace alias store %s: %w", s.path, err)
	}

	return nil
}
