package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MaxRecords caps the number of tokens kept; inserting past the cap evicts
// the oldest entry.
const MaxRecords = 10

const (
	tokensFileName = "tokens.json"
	prefsFileName  = "prefs.json"
)

// Store is a file-backed token repository. Records are kept newest-first and
// deduplicated by exact token string. The store is safe for concurrent use.
type Store struct {
	dir string

	mu      sync.Mutex
	records []Record
	loaded  bool
}

type tokensFile struct {
	AuthTokens []Record `json:"authTokens"`
}

type prefsFile struct {
	ShowButtons bool `json:"showButtons"`
}

// NewStore opens (creating if needed) a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) tokensPath() string { return filepath.Join(s.dir, tokensFileName) }
func (s *Store) prefsPath() string  { return filepath.Join(s.dir, prefsFileName) }

// load reads tokens.json into memory once. Callers must hold s.mu.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.tokensPath())
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token store: %w", err)
	}
	var file tokensFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse token store: %w", err)
	}
	s.records = file.AuthTokens
	s.loaded = true
	return nil
}

// save writes the in-memory records back to disk. Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(tokensFile{AuthTokens: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token store: %w", err)
	}
	if err := os.WriteFile(s.tokensPath(), data, 0o600); err != nil {
		return fmt.Errorf("write token store: %w", err)
	}
	return nil
}

// List returns a copy of the stored records, newest first.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Add prepends rec and trims the list to MaxRecords. Inserting a token string
// that is already stored is a no-op: no duplicate, no reorder. The returned
// bool reports whether the record was actually added.
func (s *Store) Add(rec Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return false, err
	}
	for _, existing := range s.records {
		if existing.Token == rec.Token {
			return false, nil
		}
	}
	s.records = append([]Record{rec}, s.records...)
	if len(s.records) > MaxRecords {
		s.records = s.records[:MaxRecords]
	}
	if err := s.save(); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the record whose token string equals tok. The returned bool
// reports whether anything was removed.
func (s *Store) Remove(tok string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return false, err
	}
	for i, rec := range s.records {
		if rec.Token == tok {
			s.records = append(s.records[:i], s.records[i+1:]...)
			if err := s.save(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Clear removes all stored records.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.records = nil
	return s.save()
}

// ShowButtons reads the "show buttons" UI preference; missing prefs default
// to true.
func (s *Store) ShowButtons() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.prefsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read prefs: %w", err)
	}
	var prefs prefsFile
	if err := json.Unmarshal(data, &prefs); err != nil {
		return false, fmt.Errorf("parse prefs: %w", err)
	}
	return prefs.ShowButtons, nil
}

// SetShowButtons persists the "show buttons" UI preference.
func (s *Store) SetShowButtons(show bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(prefsFile{ShowButtons: show}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.WriteFile(s.prefsPath(), data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
