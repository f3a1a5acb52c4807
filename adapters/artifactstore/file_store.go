// Package artifactstore persists outlier registries and categorical mappings.
package artifactstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
)

// FileStore keeps each artifact as an indented JSON file under a base directory.
// Writes replace the whole file and are not crash-atomic.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file that backs an artifact name
func (s *FileStore) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *FileStore) SaveRegistry(ctx context.Context, name string, registry cleaning.OutlierRegistry) error {
	return s.save(ctx, name, registry)
}

func (s *FileStore) LoadRegistry(ctx context.Context, name string) (cleaning.OutlierRegistry, error) {
	registry := cleaning.NewOutlierRegistry()
	if err := s.load(ctx, name, core.ArtifactOutlierRegistry, &registry); err != nil {
		return nil, err
	}
	return registry, nil
}

func (s *FileStore) SaveMapping(ctx context.Context, name string, mapping cleaning.CategoricalMapping) error {
	return s.save(ctx, name, mapping)
}

func (s *FileStore) LoadMapping(ctx context.Context, name string) (cleaning.CategoricalMapping, error) {
	mapping := cleaning.NewCategoricalMapping()
	if err := s.load(ctx, name, core.ArtifactCategoricalMapping, &mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

func (s *FileStore) save(ctx context.Context, name string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return core.NewValidationError("artifact name", "must not be empty")
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode artifact %s: %w", name, err)
	}

	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) load(ctx context.Context, name string, kind core.ArtifactKind, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s %s", core.ErrNotFound, kind, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s %s: %v", core.ErrValidation, kind, path, err)
	}
	return nil
}
