package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"expert-ai/spendguard/pkg/breaker/alert"
)

// SQLiteSink implements Sink using a SQLite database file. It is
// suitable for single-instance deployments that want the alert trail to
// survive restarts.
//
// The database uses WAL journaling for concurrent read performance and a
// single writer connection, matching SQLite's write model.
type SQLiteSink struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error

	insertStmt  *sql.Stmt
	selectStmt  *sql.Stmt
	cleanupStmt *sql.Stmt
}

// SQLiteSinkConfig configures the SQLite sink.
type SQLiteSinkConfig struct {
	// DBPath is the path to the SQLite database file. Required.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteSink opens (creating if necessary) the alert trail database
// at dbPath with default settings.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	return NewSQLiteSinkWithConfig(SQLiteSinkConfig{DBPath: dbPath})
}

// NewSQLiteSinkWithConfig opens the alert trail database with custom
// configuration.
func NewSQLiteSinkWithConfig(cfg SQLiteSinkConfig) (*SQLiteSink, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	sink := &SQLiteSink{db: db}

	if err := sink.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := sink.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return sink, nil
}

func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alert_records (
		id TEXT PRIMARY KEY,
		scope_key TEXT NOT NULL,
		threshold REAL NOT NULL,
		actual_spend REAL NOT NULL,
		window_ms INTEGER NOT NULL,
		action TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alert_records_scope
		ON alert_records(scope_key, created_at);
	CREATE INDEX IF NOT EXISTS idx_alert_records_created
		ON alert_records(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteSink) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO alert_records
			(id, scope_key, threshold, actual_spend, window_ms, action, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	s.selectStmt, err = s.db.Prepare(`
		SELECT id, scope_key, threshold, actual_spend, window_ms, action, created_at
		FROM alert_records
		WHERE scope_key = ?
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("prepare select: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM alert_records WHERE created_at < ?`)
	if err != nil {
		return fmt.Errorf("prepare cleanup: %w", err)
	}

	return nil
}

// RecordAlert persists one alert record.
func (s *SQLiteSink) RecordAlert(ctx context.Context, rec alert.Record) error {
	_, err := s.insertStmt.ExecContext(ctx,
		rec.ID,
		rec.ScopeKey,
		rec.Threshold,
		rec.ActualSpend,
		rec.Window.Milliseconds(),
		rec.Action,
		rec.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert record: %w", err)
	}
	return nil
}

// Alerts returns all persisted records for a scope, oldest first.
func (s *SQLiteSink) Alerts(ctx context.Context, scopeKey string) ([]alert.Record, error) {
	rows, err := s.selectStmt.QueryContext(ctx, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert records: %w", err)
	}
	defer rows.Close()

	var records []alert.Record
	for rows.Next() {
		var (
			rec       alert.Record
			windowMS  int64
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.ScopeKey, &rec.Threshold,
			&rec.ActualSpend, &windowMS, &rec.Action, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert record: %w", err)
		}
		rec.Window = time.Duration(windowMS) * time.Millisecond
		rec.Timestamp = time.UnixMilli(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alert records: %w", err)
	}

	return records, nil
}

// Cleanup removes records observed before the cutoff.
func (s *SQLiteSink) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.cleanupStmt.ExecContext(ctx, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup alert records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}

// Close releases the database handle and prepared statements.
func (s *SQLiteSink) Close() error {
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.insertStmt, s.selectStmt, s.cleanupStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
