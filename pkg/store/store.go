// Package store persists diagram documents.
//
// This package defines the Store interface for saved diagrams, with
// implementations for different backends:
//   - file: JSON files in a data directory, for CLI use
//   - mongo: MongoDB, for server deployments
//
// A Diagram wraps a graph snapshot with identity and timestamps. Documents
// round-trip through both JSON (file backend, API responses) and BSON
// (Mongo backend); the model carries both tag sets.
//
// # Usage
//
// Create a store and save a diagram:
//
//	st, err := store.NewFileStore("")  // Uses ~/.local/share/scrawl/diagrams/
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	d := store.New("Payment flow", placed)
//	if err := st.Save(ctx, d); err != nil {
//	    return err
//	}
package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/graph"
)

// Diagram is a saved diagram document.
type Diagram struct {
	ID        string      `json:"id" bson:"_id"`
	Title     string      `json:"title" bson:"title"`
	Type      string      `json:"type" bson:"type"`
	Prompt    string      `json:"prompt,omitempty" bson:"prompt,omitempty"` // prompt that produced the graph
	Graph     graph.Graph `json:"graph" bson:"graph"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// Summary is the listing view of a diagram, without the graph payload.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Type      string    `json:"type" bson:"type"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Summary returns the listing view of the diagram.
func (d *Diagram) Summary() Summary {
	return Summary{
		ID:        d.ID,
		Title:     d.Title,
		Type:      d.Type,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Touch bumps the update timestamp.
func (d *Diagram) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// New creates a Diagram with a fresh id and matching timestamps. The
// diagram type is taken from the graph.
func New(title string, g graph.Graph) *Diagram {
	now := time.Now().UTC()
	return &Diagram{
		ID:        uuid.NewString(),
		Title:     title,
		Type:      g.Type,
		Graph:     g,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store is the interface for diagram persistence backends.
type Store interface {
	// Save inserts or replaces a diagram by id.
	Save(ctx context.Context, d *Diagram) error

	// Get retrieves a diagram by id.
	// Missing ids return an ErrCodeDiagramNotFound error.
	Get(ctx context.Context, id string) (*Diagram, error)

	// List returns summaries of all diagrams, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a diagram.
	// Missing ids return an ErrCodeDiagramNotFound error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// validateID rejects empty ids and ids that would escape a flat keyspace.
// Both backends use ids as direct lookup keys; the file backend also uses
// them as filenames.
func validateID(id string) error {
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return errors.New(errors.ErrCodeInvalidDiagram, "invalid diagram id %q", id)
	}
	return nil
}

// validateDiagram checks a document before saving.
func validateDiagram(d *Diagram) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDiagram, "nil diagram")
	}
	if err := validateID(d.ID); err != nil {
		return err
	}
	if err := d.Graph.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "diagram %s", d.ID)
	}
	return nil
}
