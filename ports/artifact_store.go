package ports

import (
	"context"

	"gocleanse/domain/cleaning"
)

// ArtifactStore persists the artifacts that must outlive an in-memory table.
// The name is the storage location chosen by the caller (a file name for the
// file store, a row key for the SQL store); nothing is implied by default.
type ArtifactStore interface {
	SaveRegistry(ctx context.Context, name string, registry cleaning.OutlierRegistry) error
	LoadRegistry(ctx context.Context, name string) (cleaning.OutlierRegistry, error)
	SaveMapping(ctx context.Context, name string, mapping cleaning.CategoricalMapping) error
	LoadMapping(ctx context.Context, name string) (cleaning.CategoricalMapping, error)
}
