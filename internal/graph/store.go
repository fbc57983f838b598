// Package graph defines the graph store contract used by the ingestion
// pipeline. Drivers live in subpackages.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// Store is the minimal set of graph operations the pipeline needs. Writes
// merge on the node identifier, so repeating them never duplicates a node.
type Store interface {
	// NodeExistsByProperty reports whether a node labelled label has
	// property == value.
	NodeExistsByProperty(ctx context.Context, label, property string, value any) (bool, error)
	// NodeExistsByIdentifier reports whether any node carries id.
	NodeExistsByIdentifier(ctx context.Context, id string) (bool, error)
	// UpsertNode creates the node or merges properties into the existing one.
	UpsertNode(ctx context.Context, label, id string, properties map[string]any) error
	// UpsertRelationship creates the typed edge when both endpoints exist and
	// is a no-op otherwise.
	UpsertRelationship(ctx context.Context, sourceID, targetID, relType string) error
	// Close releases the connection.
	Close(ctx context.Context) error
}

// ErrInvalidName is returned for labels or relationship types outside the
// known vocabulary.
var ErrInvalidName = errors.New("invalid graph name")

// StoreError wraps a failed store operation.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("graph store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("graph store %s %q: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is, or wraps, a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
