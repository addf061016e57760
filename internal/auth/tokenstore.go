package auth

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/senyafy/internal/shared"
)

// Kind names a durable token slot.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Store persists tokens between runs, one slot per [Kind].
type Store interface {
	Write(kind Kind, value string) error
	Read(kind Kind) (string, error)
	Has(kind Kind) bool
	Clear() error
}

// FileStore keeps each token in its own file under a directory.
// Contents are plaintext; the directory should live under the user's
// home with restrictive permissions.
type FileStore struct {
	dir string
}

// NewFileStore creates the token directory if needed and returns a
// store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(kind Kind) string {
	return filepath.Join(f.dir, string(kind)+"_token.txt")
}

// Write replaces the slot's contents atomically: the value lands in a
// temporary file that is renamed over the slot, so a crash mid-write
// never leaves a truncated token behind.
func (f *FileStore) Write(kind Kind, value string) error {
	tmp, err := os.CreateTemp(f.dir, string(kind)+"_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write token: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path(kind)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

// Read returns the first line of the slot's file. An absent or empty
// slot yields [shared.ErrNoToken].
func (f *FileStore) Read(kind Kind) (string, error) {
	file, err := os.Open(f.path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", shared.ErrNoToken, kind)
		}
		return "", fmt.Errorf("failed to open token file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return "", fmt.Errorf("%w: %s", shared.ErrNoToken, kind)
	}

	value := strings.TrimSpace(scanner.Text())
	if value == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrNoToken, kind)
	}

	return value, nil
}

// Has reports whether the slot holds a non-empty token.
func (f *FileStore) Has(kind Kind) bool {
	_, err := f.Read(kind)
	return err == nil
}

// Clear empties both slots. Missing files are not an error.
func (f *FileStore) Clear() error {
	for _, kind := range []Kind{KindAccess, KindRefresh} {
		if err := os.Remove(f.path(kind)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear %s token: %w", kind, err)
		}
	}
	return nil
}
