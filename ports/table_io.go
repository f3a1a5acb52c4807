package ports

import (
	"context"

	"gocleanse/domain/dataset"
)

// TableReader loads a table from an external source
type TableReader interface {
	Read(ctx context.Context) (*dataset.Table, error)
}

// TableWriter exports a table to an external destination
type TableWriter interface {
	Write(ctx context.Context, t *dataset.Table) error
}
