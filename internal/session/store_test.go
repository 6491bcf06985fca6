package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfmate/shelfmate/internal/session"
)

func tempStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(filepath.Join(t.TempDir(), "session.yml"))
}

func TestLoad_MissingFileIsEmptySession(t *testing.T) {
	s := tempStore(t)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Valid() {
		t.Error("missing session file must not produce a valid session")
	}
	if s.Token() != "" {
		t.Errorf("Token() = %q, want empty", s.Token())
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yml")
	s := session.NewStore(path)
	if err := s.Save("tok-abc", 3600); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2 := session.NewStore(path)
	if err := s2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s2.Valid() {
		t.Fatal("freshly saved session must be valid")
	}
	if s2.Token() != "tok-abc" {
		t.Errorf("Token() = %q, want %q", s2.Token(), "tok-abc")
	}
}

func TestExpiredTokenTreatedAsAbsent(t *testing.T) {
	s := tempStore(t)
	if err := s.Save("tok-old", -1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.Valid() {
		t.Error("expired session must not be valid")
	}
	if s.Token() != "" {
		t.Errorf("expired session Token() = %q, want empty", s.Token())
	}
}

func TestClear_RemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yml")
	s := session.NewStore(path)
	if err := s.Save("tok", 60); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Valid() {
		t.Error("cleared session must not be valid")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Clear must remove the session file")
	}
	// Clearing twice is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}
