package google

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	configDirName      = "workspacemcp"
	credentialFileName = "credentials.json"
)

// Store reads and writes the credential record at a fixed per-user path.
//
// Loads never fail: a missing, empty, or unparseable file is reported as
// "no stored credentials" and the user simply has to authorize again.
// Saves do fail loudly, because a swallowed write error would leave the user
// believing a token was persisted when it was not.
type Store struct {
	path string

	// mu serializes load-merge-save cycles so concurrent refreshes cannot
	// interleave their read and write halves.
	mu sync.Mutex
}

// NewStore returns a store at the default per-user location,
// e.g. ~/.config/workspacemcp/credentials.json on Linux.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine user config directory: %w", err)
	}
	return NewStoreAt(filepath.Join(dir, configDirName, credentialFileName)), nil
}

// NewStoreAt returns a store backed by the given file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the credential file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored credential record. The second return value is false
// when no usable record exists; read and parse failures are deliberately not
// distinguished from a missing file.
func (s *Store) Load() (Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Credentials, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, false
	}
	if len(creds) == 0 {
		return nil, false
	}
	return creds, true
}

// Save writes the record, creating the parent directory with owner-only
// permissions. The previous content is replaced wholesale.
func (s *Store) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(creds)
}

func (s *Store) save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Merge reloads the current on-disk record, overlays update's fields on top,
// and writes the union back. Concurrent refreshes each run their own
// load-merge-save under the store lock; last writer wins, which is fine
// because refreshed tokens are strictly newer credentials.
func (s *Store) Merge(update Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.load()
	if !ok {
		current = Credentials{}
	}
	return s.save(current.Merge(update))
}
