package artifactstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/internal/migration"
)

// ArtifactRecord is one row of cleaning_artifacts
type ArtifactRecord struct {
	ID        core.ArtifactID   `db:"id" json:"id"`
	Name      string            `db:"name" json:"name"`
	Kind      core.ArtifactKind `db:"kind" json:"kind"`
	Payload   string            `db:"payload" json:"-"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// SQLStore keeps artifacts as JSON payloads keyed by (name, kind).
// It works against PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a store over an open database
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the artifacts table when absent
func (s *SQLStore) Migrate(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, s.db)
}

func (s *SQLStore) SaveRegistry(ctx context.Context, name string, registry cleaning.OutlierRegistry) error {
	return s.save(ctx, name, core.ArtifactOutlierRegistry, registry)
}

func (s *SQLStore) LoadRegistry(ctx context.Context, name string) (cleaning.OutlierRegistry, error) {
	registry := cleaning.NewOutlierRegistry()
	if err := s.load(ctx, name, core.ArtifactOutlierRegistry, &registry); err != nil {
		return nil, err
	}
	return registry, nil
}

func (s *SQLStore) SaveMapping(ctx context.Context, name string, mapping cleaning.CategoricalMapping) error {
	return s.save(ctx, name, core.ArtifactCategoricalMapping, mapping)
}

func (s *SQLStore) LoadMapping(ctx context.Context, name string) (cleaning.CategoricalMapping, error) {
	mapping := cleaning.NewCategoricalMapping()
	if err := s.load(ctx, name, core.ArtifactCategoricalMapping, &mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// List returns the stored artifacts, most recently updated first
func (s *SQLStore) List(ctx context.Context) ([]ArtifactRecord, error) {
	var records []ArtifactRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, name, kind, payload, created_at, updated_at
		FROM cleaning_artifacts
		ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return records, nil
}

func (s *SQLStore) save(ctx context.Context, name string, kind core.ArtifactKind, v interface{}) error {
	if name == "" {
		return core.NewValidationError("artifact name", "must not be empty")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode artifact %s: %w", name, err)
	}

	now := time.Now().UTC()
	query := s.db.Rebind(`
		INSERT INTO cleaning_artifacts (id, name, kind, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, kind) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`)
	if _, err := s.db.ExecContext(ctx, query, core.NewID().String(), name, string(kind), string(payload), now, now); err != nil {
		return fmt.Errorf("failed to save %s %s: %w", kind, name, err)
	}
	return nil
}

func (s *SQLStore) load(ctx context.Context, name string, kind core.ArtifactKind, v interface{}) error {
	var payload string
	query := s.db.Rebind(`SELECT payload FROM cleaning_artifacts WHERE name = ? AND kind = ?`)
	err := s.db.GetContext(ctx, &payload, query, name, string(kind))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", core.ErrNotFound, kind, name)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", kind, name, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %s %s: %v", core.ErrValidation, kind, name, err)
	}
	return nil
}
