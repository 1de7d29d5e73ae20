package templatestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"portfolio-generator/templates"
)

// FSStore reads templates from an fs.FS.
type FSStore struct {
	fsys fs.FS
}

func NewFSStore(fsys fs.FS) *FSStore { return &FSStore{fsys: fsys} }

// NewEmbedded serves the built-in templates.
func NewEmbedded() *FSStore { return NewFSStore(templates.FS) }

// NewDir serves templates from a directory on disk.
func NewDir(dir string) *FSStore { return NewFSStore(os.DirFS(dir)) }

func (s *FSStore) read(name, file string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	b, err := fs.ReadFile(s.fsys, objectPath(name, file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("read %s: %w", objectPath(name, file), err)
	}
	return string(b), nil
}

func (s *FSStore) Template(_ context.Context, name string) (string, error) {
	return s.read(name, templateFile)
}

func (s *FSStore) Stylesheet(_ context.Context, name string) (string, error) {
	css, err := s.read(name, stylesheetFile)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return css, err
}

func (s *FSStore) List(_ context.Context) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || checkName(e.Name()) != nil {
			continue
		}
		if _, err := fs.Stat(s.fsys, objectPath(e.Name(), templateFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
