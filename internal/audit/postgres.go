package audit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"

	"github.com/disease-predictor/internal/database"
	"github.com/disease-predictor/internal/domain"
)

// PostgresStore implements the Store interface on a pgx pool. The schema is
// owned by the database migrations.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a store over an established connection pool
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanRow(row pgx.Row) (*Entry, error) {
	e := &Entry{}
	var d string
	err := row.Scan(
		&e.ID, &d, &e.Label, &e.ModelVersion,
		&e.DocumentOffered, &e.DocumentID, &e.RequestID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Domain = domain.Domain(d)
	return e, nil
}

// Record implements Store
func (s *PostgresStore) Record(ctx context.Context, entry *Entry) error {
	if err := prepare(entry); err != nil {
		return err
	}

	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO predictions (
			id, domain, label, model_version,
			document_offered, document_id, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID,
		string(entry.Domain),
		entry.Label,
		entry.ModelVersion,
		entry.DocumentOffered,
		entry.DocumentID,
		entry.RequestID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.Pool.QueryRow(ctx, "SELECT "+selectColumns+" FROM predictions WHERE id = $1", id)
	e, err := scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entry: %w", err)
	}
	return e, nil
}

// List implements Store
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	rows, err := s.db.Pool.Query(ctx,
		"SELECT "+selectColumns+" FROM predictions ORDER BY created_at DESC, id LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		e, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count implements Store
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM predictions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return count, nil
}

// ExportJSON implements Store
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return writeExport(ctx, s, writer)
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
