package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"OpinionDigest/internal/domain"
	"OpinionDigest/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_cases (
	case_key     TEXT PRIMARY KEY,
	case_name    TEXT NOT NULL,
	opinion_date TEXT,
	precedential INTEGER NOT NULL,
	disposition  TEXT NOT NULL,
	artifact     TEXT NOT NULL,
	processed_at INTEGER NOT NULL
);
`

// SQLiteLedger records per-case completion in a local SQLite file. It is an
// audit trail alongside the directory-based run gate, keyed by
// "<opinion-date>/<case-number>" (or the PDF URL when metadata is unknown).
type SQLiteLedger struct {
	db *sql.DB
}

var _ ports.CaseLedger = (*SQLiteLedger)(nil)

// Open creates or opens the ledger database and ensures the schema exists.
func Open(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Close releases the database handle.
func (l *SQLiteLedger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Key derives the ledger key for a record.
func Key(record domain.CaseRecord) string {
	if record.CaseNumber != "" {
		return record.OpinionDate + "/" + record.CaseNumber
	}
	return record.Document.URL
}

// AlreadyProcessed returns a map with keys that already exist in the ledger.
func (l *SQLiteLedger) AlreadyProcessed(ctx context.Context, keys []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if l.db == nil || len(keys) == 0 {
		return result, nil
	}

	query, args, err := sq.Select("case_key").
		From("processed_cases").
		Where(sq.Eq{"case_key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query processed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		result[key] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveProcessed upserts the case completion snapshot.
func (l *SQLiteLedger) SaveProcessed(ctx context.Context, record domain.CaseRecord) error {
	if l.db == nil {
		return nil
	}

	precedential := 0
	if record.Meta.IsPrecedential {
		precedential = 1
	}

	query, args, err := sq.Insert("processed_cases").
		Columns("case_key", "case_name", "opinion_date", "precedential", "disposition", "artifact", "processed_at").
		Values(Key(record), record.Meta.CaseName, record.OpinionDate, precedential,
			string(record.Disposition), record.ArtifactPath, time.Now().Unix()).
		Suffix("ON CONFLICT (case_key) DO UPDATE SET artifact = excluded.artifact, processed_at = excluded.processed_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert processed: %w", err)
	}

	return nil
}
