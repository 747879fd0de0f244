// Package artifact manages the on-disk file area for uploaded documents.
// Each document gets a directory keyed by its basename holding the original
// binary, extracted raw text, normalized text, and any backend artifacts.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Well-known artifact filenames within a document directory.
const (
	RawText        = "raw.txt"
	NormalizedText = "normalized.txt"
)

// ErrBadName is returned for document names that cannot key a directory.
var ErrBadName = errors.New("invalid document name")

// Store is a file area rooted at a data directory.
type Store struct {
	root string
}

// NewStore opens (creating if needed) the file area rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the file area root directory.
func (s *Store) Root() string { return s.root }

// sanitize rejects names that would escape the document directory.
func sanitize(name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return name, nil
}

func (s *Store) dir(name string) (string, error) {
	clean, err := sanitize(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, clean), nil
}

// Write stores data as file under the document's directory.
func (s *Store) Write(name, file string, data []byte) error {
	dir, err := s.dir(name)
	if err != nil {
		return err
	}
	if _, err := sanitize(file); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

// Read returns the contents of file under the document's directory.
func (s *Store) Read(name, file string) ([]byte, error) {
	dir, err := s.dir(name)
	if err != nil {
		return nil, err
	}
	if _, err := sanitize(file); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}

// Delete removes file from the document's directory. Missing files are not an error.
func (s *Store) Delete(name, file string) error {
	dir, err := s.dir(name)
	if err != nil {
		return err
	}
	if _, err := sanitize(file); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, file)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", file, err)
	}
	return nil
}

// RemoveAll deletes the document's entire directory.
func (s *Store) RemoveAll(name string) error {
	dir, err := s.dir(name)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove document dir: %w", err)
	}
	return nil
}

// SaveOriginal streams the uploaded binary into the document directory,
// stored under the document's own basename.
func (s *Store) SaveOriginal(name string, r io.Reader) error {
	dir, err := s.dir(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create original: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write original: %w", err)
	}
	return nil
}

// OriginalPath returns the path of the stored original binary.
// The file must exist.
func (s *Store) OriginalPath(name string) (string, error) {
	dir, err := s.dir(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("original for %q: %w", name, err)
	}
	return path, nil
}

// SaveText stores a text artifact (RawText or NormalizedText).
func (s *Store) SaveText(name, file, text string) error {
	return s.Write(name, file, []byte(text))
}

// ReadText returns a text artifact.
func (s *Store) ReadText(name, file string) (string, error) {
	data, err := s.Read(name, file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns the document names present in the file area, sorted by the
// filesystem's directory order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
