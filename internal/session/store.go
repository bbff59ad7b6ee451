// Package session owns the persisted token slot and the sign-in state machine.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"taskdeck/internal/config"
)

// Store is the persisted token slot. A single process-wide slot holds the
// current bearer token; an empty Token is the valid anonymous state.
//
// The Controller is the only writer. The Route Guard and the API client
// only ever read the slot to build an Authorization header.
type Store interface {
	// Token returns the persisted token, or "" when anonymous.
	Token() string

	// SetToken overwrites the slot wholesale.
	SetToken(tok string) error

	// Clear empties the slot. Clearing an already-empty slot is not an error.
	Clear() error
}

// tokenRecord is the on-disk shape of the token slot, matching the auth
// endpoint response field.
type tokenRecord struct {
	AccessToken string `json:"access_token"`
}

// FileStore persists the token in the config directory token file.
type FileStore struct {
	path string
	mode os.FileMode
}

// NewFileStore creates a Store backed by cfg's token slot.
func NewFileStore(cfg *config.Config) *FileStore {
	return &FileStore{path: cfg.TokenPath(), mode: 0600}
}

// Token reads the persisted token. Any read or parse failure is treated as
// an absent token: a corrupt slot means anonymous, never an error.
func (s *FileStore) Token() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var rec tokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ""
	}
	return rec.AccessToken
}

// SetToken overwrites the slot with mode 0600.
func (s *FileStore) SetToken(tok string) error {
	data, err := json.MarshalIndent(tokenRecord{AccessToken: tok}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, s.mode); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the token file.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
