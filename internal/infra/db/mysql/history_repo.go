package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/procdoc/internal/domain/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_history (
  id         VARCHAR(36)  NOT NULL PRIMARY KEY,
  filename   VARCHAR(255) NOT NULL,
  subject    VARCHAR(255) NOT NULL,
  template   VARCHAR(64)  NOT NULL,
  query      TEXT         NOT NULL,
  size_bytes BIGINT       NOT NULL,
  created_at DATETIME(6)  NOT NULL,
  INDEX idx_report_history_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
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

// Save inserts a generation record
func (r *HistoryRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO report_history
  (id, filename, subject, template, query, size_bytes, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  filename=VALUES(filename), subject=VALUES(subject), template=VALUES(template),
  query=VALUES(query), size_bytes=VALUES(size_bytes);
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
LIMIT ? OFFSET ?;
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
	const q = `DELETE FROM report_history WHERE created_at < ?;`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
