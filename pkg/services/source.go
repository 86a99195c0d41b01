package services

import (
	"context"
	"fmt"

	"oficina/pkg/models"
)

// RecordSource supplies the shop's records. Implementations read a snapshot
// and never write back.
type RecordSource interface {
	// Load returns a fresh Dataset. Callers may keep the result; sources must
	// not share slices between calls.
	Load(ctx context.Context) (*models.Dataset, error)

	// Describe names the source for logs ("file data/oficina.yaml", "postgres").
	Describe() string
}

// LoadError reports a source that could not be read at all. Individual bad
// rows are skipped by the loaders and never surface as a LoadError.
type LoadError struct {
	Op     string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
