package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// ArtifactID identifies a persisted cleaning artifact (outlier registry, categorical mapping)
type ArtifactID ID

func (id ArtifactID) String() string { return ID(id).String() }

// ParseArtifactID parses a string into ArtifactID
func ParseArtifactID(s string) (ArtifactID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("artifact ID cannot be empty")
	}
	return ArtifactID(s), nil
}

// ArtifactKind defines the types of artifacts produced by the cleaning components
type ArtifactKind string

const (
	ArtifactOutlierRegistry    ArtifactKind = "outlier_registry"
	ArtifactCategoricalMapping ArtifactKind = "categorical_mapping"
)
