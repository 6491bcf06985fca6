package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store holds the bearer token for the authenticated session, persisted
// between invocations. It is constructed once at startup and passed to
// every component that talks to the backend; there is no ambient
// global.
type Store struct {
	path string
	data sessionData
}

type sessionData struct {
	Token     string    `yaml:"token"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// DefaultPath returns the default session file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shelfmate", "session.yml")
}

// NewStore creates a store backed by the given file. An empty path uses
// the default location.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// Load reads the persisted session. A missing file is not an error;
// it just means nobody is logged in.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = sessionData{}
			return nil
		}
		return fmt.Errorf("reading session: %w", err)
	}
	var data sessionData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parsing session: %w", err)
	}
	s.data = data
	return nil
}

// Save stores a fresh token with its lifetime in seconds, as returned
// by the login endpoint.
func (s *Store) Save(token string, expiresIn int) error {
	s.data = sessionData{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := yaml.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Clear forgets the session both in memory and on disk. Called on
// logout and whenever the backend reports the session expired.
func (s *Store) Clear() error {
	s.data = sessionData{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Token returns the current bearer token, or "" when there is no live
// session. An expired token is treated as absent.
func (s *Store) Token() string {
	if !s.Valid() {
		return ""
	}
	return s.data.Token
}

// Valid reports whether a non-expired session is loaded.
func (s *Store) Valid() bool {
	if s.data.Token == "" {
		return false
	}
	return time.Now().Before(s.data.ExpiresAt)
}
