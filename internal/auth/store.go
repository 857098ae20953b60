package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Token — то, что лежит в файле токена.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	SavedAt     time.Time `json:"saved_at"`
}

type Store interface {
	// ok=false, если токена нет
	Load() (tok Token, ok bool, err error)
	Save(tok Token) error
	Clear() error
}

// FileStore хранит токен в json-файле с правами 0600.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, fmt.Errorf("token store: read %s: %w", s.path, err)
	}
	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return Token{}, false, fmt.Errorf("token store: decode %s: %w", s.path, err)
	}
	if tok.AccessToken == "" {
		return Token{}, false, nil
	}

	return tok, true, nil
}

func (s *FileStore) Save(tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("token store: mkdir: %w", err)
	}
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("token store: encode: %w", err)
	}

	// пишем во временный файл и переименовываем, чтобы не оставить полфайла
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return fmt.Errorf("token store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("token store: chmod: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("token store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("token store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("token store: rename: %w", err)
	}

	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("token store: remove %s: %w", s.path, err)
	}

	return nil
}
