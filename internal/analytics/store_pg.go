package analytics

import (
	"context"
	"database/sql"
)

// PGStore persists analytics in analytics_files and analytics_queries.
// Files are ordered by file_order, which is bumped on every upsert so a
// re-ingested file moves to the end like remove-then-append.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed analytics store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) UpsertFile(ctx context.Context, username string, f FileStat) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO analytics_files (username, filename, words, pages)
VALUES ($1, $2, $3, $4)
ON CONFLICT (username, filename) DO UPDATE SET
  words = EXCLUDED.words,
  pages = EXCLUDED.pages,
  file_order = nextval('analytics_file_order'),
  updated_at = now()`, username, f.Filename, f.Words, f.Pages)
	return err
}

func (s *PGStore) AppendQuery(ctx context.Context, username, query string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO analytics_queries (username, query) VALUES ($1, $2)`, username, query)
	return err
}

func (s *PGStore) Get(ctx context.Context, username string) (Record, error) {
	var rec Record

	rows, err := s.DB.QueryContext(ctx, `
SELECT filename, words, pages FROM analytics_files WHERE username = $1 ORDER BY file_order`, username)
	if err != nil {
		return Record{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var f FileStat
		if err := rows.Scan(&f.Filename, &f.Words, &f.Pages); err != nil {
			return Record{}, err
		}
		rec.Files = append(rec.Files, f)
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}

	qrows, err := s.DB.QueryContext(ctx, `
SELECT query FROM analytics_queries WHERE username = $1 ORDER BY id`, username)
	if err != nil {
		return Record{}, err
	}
	defer qrows.Close()
	for qrows.Next() {
		var q string
		if err := qrows.Scan(&q); err != nil {
			return Record{}, err
		}
		rec.Queries = append(rec.Queries, q)
	}
	if err := qrows.Err(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PGStore) Delete(ctx context.Context, username string) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM analytics_files WHERE username = $1`, username); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM analytics_queries WHERE username = $1`, username); err != nil {
		return err
	}
	return tx.Commit()
}
