package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	domain "github.com/bryanwahyu/procdoc/internal/domain/history"
)

func setupRepo(t *testing.T) (*HistoryRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHistoryRepository(db), mock
}

func TestHistoryMigrate(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_report_history_created")).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistorySaveFillsBlankColumns(t *testing.T) {
	repo, mock := setupRepo(t)
	created := time.Date(2024, 7, 1, 9, 5, 3, 0, time.UTC)
	rec := &domain.Record{
		ID:        "id-1",
		Filename:  "Process_Analysis_X_20240701_090503.docx",
		Subject:   "  ",
		Query:     "q",
		Size:      1234,
		CreatedAt: created,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_history") + "(?s).*" + regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE SET")).
		WithArgs("id-1", rec.Filename, "-", "-", "q", int64(1234), created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistorySavePropagatesError(t *testing.T) {
	repo, mock := setupRepo(t)
	boom := errors.New("boom")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_history")).WillReturnError(boom)

	err := repo.Save(context.Background(), &domain.Record{ID: "x", CreatedAt: time.Now()})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestHistoryPaginate(t *testing.T) {
	repo, mock := setupRepo(t)
	newer := time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"id", "filename", "subject", "template", "query", "size_bytes", "created_at"}).
		AddRow("b", "b.docx", "B", "generic", "", int64(20), newer).
		AddRow("a", "a.docx", "A", "sox_audit", "q", int64(10), older)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC") + `\s+` + regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(10, 10).
		WillReturnRows(rows)

	recs, err := repo.Paginate(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d", len(recs))
	}
	if recs[0].ID != "b" || recs[1].Template != "sox_audit" || !recs[0].CreatedAt.Equal(newer) {
		t.Fatalf("records = %+v %+v", recs[0], recs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryPaginateDefaults(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "subject", "template", "query", "size_bytes", "created_at"}))

	recs, err := repo.Paginate(context.Background(), 0, -1)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("records = %v", recs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryDeleteBefore(t *testing.T) {
	repo, mock := setupRepo(t)
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_history WHERE created_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 3 {
		t.Fatalf("deleted = %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
