package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "transparency"
	tokenFileMode  = 0600
)

// ErrEmptyToken is returned when an empty token is saved or no token is stored.
var ErrEmptyToken = errors.New("token is empty")

// Store keeps one named token in the OS keychain, with a file in Dir
// as fallback when no keychain is available.
type Store struct {
	Dir  string
	Name string
}

// NewStore returns a store for the token called name.
func NewStore(dir, name string) *Store {
	return &Store{Dir: dir, Name: name}
}

func (s *Store) filePath() string {
	return filepath.Join(s.Dir, s.Name)
}

// Save writes token to the keychain, or to the fallback file when the
// keychain is unavailable.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	if err := keyring.Set(keyringService, s.Name, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return s.saveFile(token)
	}

	// Clean up legacy file if it exists
	os.Remove(s.filePath())

	return nil
}

// Get returns the stored token. A token found only in the fallback file is
// migrated to the keychain.
func (s *Store) Get() (string, error) {
	token, err := keyring.Get(keyringService, s.Name)
	if err == nil && token != "" {
		return token, nil
	}

	token, err = s.getFile()
	if err != nil {
		return "", err
	}

	if migrateErr := keyring.Set(keyringService, s.Name, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain", "name", s.Name)
		os.Remove(s.filePath())
	}

	return token, nil
}

// Delete removes the token from both locations.
func (s *Store) Delete() error {
	err := keyring.Delete(keyringService, s.Name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting token from keychain: %w", err)
	}
	if err := os.Remove(s.filePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting token file: %w", err)
	}
	return nil
}

// Resolve returns explicit when set, otherwise the stored token.
// A missing stored token is not an error.
func (s *Store) Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	token, err := s.Get()
	if err != nil {
		slog.Debug("no stored token", "name", s.Name, "error", err)
		return ""
	}
	return token
}

func (s *Store) saveFile(token string) error {
	if err := os.WriteFile(s.filePath(), []byte(token), tokenFileMode); err != nil {
		return fmt.Errorf("writing token file %s: %w", s.filePath(), err)
	}
	return nil
}

func (s *Store) getFile() (string, error) {
	b, err := os.ReadFile(s.filePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrEmptyToken
		}
		return "", fmt.Errorf("reading token file %s: %w", s.filePath(), err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}
