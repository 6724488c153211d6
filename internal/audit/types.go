// Package audit records an anonymous trail of served predictions. Entries
// carry the outcome only; patient input is never stored.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/disease-predictor/internal/domain"
)

// ErrNotFound is returned when an entry does not exist
var ErrNotFound = errors.New("audit entry not found")

// Entry is one served prediction
type Entry struct {
	ID              string        `json:"id"`
	Domain          domain.Domain `json:"domain"`
	Label           int           `json:"label"`
	ModelVersion    string        `json:"model_version,omitempty"`
	DocumentOffered bool          `json:"document_offered"`
	DocumentID      string        `json:"document_id,omitempty"`
	RequestID       string        `json:"request_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Store defines the audit trail storage operations
type Store interface {
	// Record appends an entry, assigning ID and CreatedAt when unset.
	Record(ctx context.Context, entry *Entry) error

	// Get retrieves one entry by ID.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns entries newest first.
	List(ctx context.Context, limit, offset int) ([]*Entry, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int64, error)

	// ExportJSON writes every entry to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	Close() error
}

// Export is the JSON export format
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Entries    []*Entry  `json:"entries"`
}

// prepare fills server-assigned fields before insertion
func prepare(entry *Entry) error {
	if !entry.Domain.IsValid() {
		return fmt.Errorf("invalid domain %q", entry.Domain)
	}
	if entry.Label != 0 && entry.Label != 1 {
		return fmt.Errorf("invalid label %d", entry.Label)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return nil
}

func writeExport(ctx context.Context, s Store, writer io.Writer) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	all, err := s.List(ctx, int(count), 0)
	if err != nil {
		return fmt.Errorf("failed to list audit entries: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Count:      len(all),
		Entries:    all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// NopStore discards entries; it backs a disabled audit trail
type NopStore struct{}

// Record implements Store
func (NopStore) Record(ctx context.Context, entry *Entry) error { return prepare(entry) }

// Get implements Store
func (NopStore) Get(ctx context.Context, id string) (*Entry, error) { return nil, ErrNotFound }

// List implements Store
func (NopStore) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	return []*Entry{}, nil
}

// Count implements Store
func (NopStore) Count(ctx context.Context) (int64, error) { return 0, nil }

// ExportJSON implements Store
func (n NopStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return writeExport(ctx, n, writer)
}

// Close implements Store
func (NopStore) Close() error { return nil }
