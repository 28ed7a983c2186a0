package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore persists credentials across invocations. Save is
// last-writer-wins: credentials are atomic, indivisible units with no merge
// semantics.
type TokenStore interface {
	// Save persists the credentials, replacing any previous pair.
	Save(cred *Credentials) error

	// Load returns the stored credentials, or nil with no error when
	// absent. Credentials past their refresh retention window with an
	// expired access token are treated as absent.
	Load() (*Credentials, error)

	// Clear removes the stored credentials.
	Clear() error
}

// FileStore stores credentials as a JSON file. The file is written with
// 0600 permissions and its directory with 0700.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed token store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the path of the credential file.
func (s *FileStore) Path() string {
	return s.path
}

// Save implements TokenStore.
func (s *FileStore) Save(cred *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Load implements TokenStore.
func (s *FileStore) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cred Credentials
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	// A pair whose access token is expired and whose refresh token has
	// aged out of its retention window cannot be used for anything.
	if cred.IsExpired() && !cred.RefreshUsable() {
		return nil, nil
	}

	return &cred, nil
}

// Clear implements TokenStore.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStore is an in-memory TokenStore for tests and ephemeral sessions.
type MemoryStore struct {
	mu   sync.Mutex
	cred *Credentials
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements TokenStore.
func (s *MemoryStore) Save(cred *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cred
	s.cred = &copied
	return nil
}

// Load implements TokenStore.
func (s *MemoryStore) Load() (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, nil
	}
	if s.cred.IsExpired() && !s.cred.RefreshUsable() {
		return nil, nil
	}
	copied := *s.cred
	return &copied, nil
}

// Clear implements TokenStore.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	return nil
}
