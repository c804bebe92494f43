package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/procdoc/internal/domain/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_history (
  id         TEXT        PRIMARY KEY,
  filename   TEXT        NOT NULL,
  subject    TEXT        NOT NULL,
  template   TEXT        NOT NULL,
  query      TEXT        NOT NULL,
  size_bytes BIGINT      NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_history_created ON report_history (created_at);
`

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate creates the history table when missing
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts or updates a generation record
func (r *HistoryRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO report_history
  (id, filename, subject, template, query, size_bytes, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  filename=EXCLUDED.filename,
  subject=EXCLUDED.subject,
  template=EXCLUDED.template,
  query=EXCLUDED.query,
  size_bytes=EXCLUDED.size_bytes;
`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.Filename, stringOrDash(rec.Subject), stringOrDash(rec.Template),
		rec.Query, rec.Size, createdAt,
	)
	return err
}

// Paginate returns a page of records ordered by created_at desc
func (r *HistoryRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, filename, subject, template, query, size_bytes, created_at
FROM report_history
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		var created time.Time
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Subject, &rec.Template, &rec.Query, &rec.Size, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = created
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// DeleteBefore prunes records older than cutoff
func (r *HistoryRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM report_history WHERE created_at < $1;`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
