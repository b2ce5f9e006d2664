package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/okian/courtquote/internal/domain/model"
)

// DefaultSQLiteDSN opens a WAL database in the working directory.
const DefaultSQLiteDSN = "file:courtquote.db?_journal_mode=WAL&_busy_timeout=5000"

// createdAtLayout is fixed width so created_at sorts chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS quotations (
	id               TEXT PRIMARY KEY,
	quotation_number TEXT NOT NULL UNIQUE,
	status           TEXT NOT NULL,
	sport            TEXT NOT NULL,
	client_name      TEXT NOT NULL,
	total_cost       REAL NOT NULL,
	created_at       TEXT NOT NULL,
	document         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotations_created_at ON quotations (created_at);
CREATE TABLE IF NOT EXISTS code_sequences (
	name    TEXT PRIMARY KEY,
	last_no INTEGER NOT NULL DEFAULT 0
);`

type quotationRow struct {
	ID         string  `db:"id"`
	Number     string  `db:"quotation_number"`
	Status     string  `db:"status"`
	Sport      string  `db:"sport"`
	ClientName string  `db:"client_name"`
	TotalCost  float64 `db:"total_cost"`
	CreatedAt  string  `db:"created_at"`
	Document   string  `db:"document"`
}

// SQLStore persists quotations in SQLite. The quotation counter lives in the
// code_sequences table and is advanced inside a transaction.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore opens dsn, creates the schema and seeds the counter from the
// existing row count on first use.
func NewSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers so sequence transactions never
	// contend for the write lock.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO code_sequences (name, last_no) VALUES (?, (SELECT COUNT(*) FROM quotations))`,
		SequenceName,
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// NextSequence implements Sequencer.
func (s *SQLStore) NextSequence(ctx context.Context) (n int64, err error) {
	defer observe("sequence", time.Now(), &err)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin sequence tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE code_sequences SET last_no = last_no + 1 WHERE name = ?`, SequenceName); err != nil {
		return 0, fmt.Errorf("advance sequence %q: %w", SequenceName, err)
	}
	if err := tx.GetContext(ctx, &n, `SELECT last_no FROM code_sequences WHERE name = ?`, SequenceName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("sequence %q not found", SequenceName)
		}
		return 0, fmt.Errorf("read sequence %q: %w", SequenceName, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence tx: %w", err)
	}
	return n, nil
}

// CountExisting implements Store.
func (s *SQLStore) CountExisting(ctx context.Context) (n int64, err error) {
	defer observe("count", time.Now(), &err)

	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM quotations`); err != nil {
		return 0, fmt.Errorf("count quotations: %w", err)
	}
	return n, nil
}

// Insert implements Store.
func (s *SQLStore) Insert(ctx context.Context, q model.Quotation) (err error) {
	defer observe("insert", time.Now(), &err)

	doc, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quotation: %w", err)
	}
	row := quotationRow{
		ID:         q.ID,
		Number:     q.QuotationNumber,
		Status:     string(q.Status),
		Sport:      q.ProjectInfo.Sport,
		ClientName: q.ClientInfo.Name,
		TotalCost:  q.Pricing.TotalCost,
		CreatedAt:  q.CreatedAt.UTC().Format(createdAtLayout),
		Document:   string(doc),
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO quotations (id, quotation_number, status, sport, client_name, total_cost, created_at, document)
		VALUES (:id, :quotation_number, :status, :sport, :client_name, :total_cost, :created_at, :document)`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, q.QuotationNumber)
		}
		return fmt.Errorf("insert quotation: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, number string) (q model.Quotation, err error) {
	defer observe("get", time.Now(), &err)

	var doc string
	if err := s.db.GetContext(ctx, &doc, `SELECT document FROM quotations WHERE quotation_number = ?`, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Quotation{}, ErrNotFound
		}
		return model.Quotation{}, fmt.Errorf("get quotation: %w", err)
	}
	if err := json.Unmarshal([]byte(doc), &q); err != nil {
		return model.Quotation{}, fmt.Errorf("decode quotation %s: %w", number, err)
	}
	return q, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, limit int) (out []model.Quotation, err error) {
	defer observe("list", time.Now(), &err)

	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	var docs []string
	if err := s.db.SelectContext(ctx, &docs,
		`SELECT document FROM quotations ORDER BY created_at DESC, quotation_number DESC LIMIT ?`, limit,
	); err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	out = make([]model.Quotation, 0, len(docs))
	for _, doc := range docs {
		var q model.Quotation
		if err := json.Unmarshal([]byte(doc), &q); err != nil {
			return nil, fmt.Errorf("decode quotation: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
