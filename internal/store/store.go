// Package store provides the SQLite audit log for PromptWarden: completed
// optimizations and caller-supplied templates. Ledger counters stay
// in-memory; the store only feeds the usage/analytics endpoints and
// reloads custom templates at boot.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yourusername/promptwarden/internal/optimizer"
	"github.com/yourusername/promptwarden/internal/template"
)

// Store wraps *sql.DB and provides migration support.
type Store struct {
	*sql.DB
}

// New opens a SQLite connection with WAL mode and foreign keys enabled.
// Driver name is "sqlite" (modernc.org/sqlite, not mattn/go-sqlite3).
func New(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_journal=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store.New: open: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("store.New: ping: %w", err)
	}
	// Limit to 1 writer at a time to avoid SQLITE_BUSY in WAL mode.
	sqlDB.SetMaxOpenConns(1)
	return &Store{sqlDB}, nil
}

const schemaVersion = 1

// Migrate runs all CREATE TABLE IF NOT EXISTS migrations exactly once per
// schema version.
func (s *Store) Migrate() error {
	if _, err := s.Exec(ddlSettings); err != nil {
		return fmt.Errorf("store.Migrate: settings table: %w", err)
	}

	var version int
	row := s.QueryRow(`SELECT value FROM settings WHERE key='schema_version' LIMIT 1`)
	_ = row.Scan(&version) // Row may not exist yet (version=0).
	if version >= schemaVersion {
		return nil
	}

	for _, ddl := range []string{ddlOptimizations, ddlTemplates} {
		if _, err := s.Exec(ddl); err != nil {
			return fmt.Errorf("store.Migrate: %w", err)
		}
	}

	_, err := s.Exec(`INSERT INTO settings (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, schemaVersion)
	if err != nil {
		return fmt.Errorf("store.Migrate: schema_version upsert: %w", err)
	}
	return nil
}

const ddlSettings = `CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

const ddlOptimizations = `CREATE TABLE IF NOT EXISTS optimizations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id    TEXT    NOT NULL,
	tool_name     TEXT    NOT NULL DEFAULT '',
	strategy      TEXT    NOT NULL DEFAULT '',
	template_id   TEXT    NOT NULL DEFAULT '',
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	quality_score REAL    NOT NULL DEFAULT 0,
	date          TEXT    NOT NULL,
	created_at    DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const ddlTemplates = `CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	meta       TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// SaveOptimization inserts a completed optimization. Implements
// optimizer.HistoryWriter.
func (s *Store) SaveOptimization(ctx context.Context, rec optimizer.Record) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO optimizations (request_id, tool_name, strategy, template_id,
		                           input_tokens, output_tokens, quality_score, date)
		VALUES (?,?,?,?,?,?,?,?)`,
		rec.RequestID, rec.ToolName, strings.Join(rec.Strategy, ","),
		rec.Metadata.TemplateUsed,
		rec.TokenSavings.Original, rec.TokenSavings.Optimized,
		rec.QualityScore, rec.CreatedAt.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("store.SaveOptimization: %w", err)
	}
	return nil
}

// UsageRow is one aggregated day of optimization activity.
type UsageRow struct {
	Date         string `json:"date"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
	Requests     int    `json:"requests"`
}

// Usage aggregates optimization activity per day since the given date
// (inclusive, format 2006-01-02), optionally filtered by tool name.
func (s *Store) Usage(ctx context.Context, since, toolName string) ([]UsageRow, error) {
	query := `SELECT date, SUM(input_tokens), SUM(output_tokens),
		SUM(input_tokens+output_tokens), COUNT(*)
		FROM optimizations WHERE date >= ?`
	args := []interface{}{since}
	if toolName != "" {
		query += " AND tool_name=?"
		args = append(args, toolName)
	}
	query += " GROUP BY date ORDER BY date DESC"

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store.Usage: %w", err)
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var u UsageRow
		if err := rows.Scan(&u.Date, &u.InputTokens, &u.OutputTokens, &u.TotalTokens, &u.Requests); err != nil {
			return nil, fmt.Errorf("store.Usage: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SaveTemplate upserts a caller-supplied template so it survives restarts.
func (s *Store) SaveTemplate(ctx context.Context, t template.Template) error {
	meta, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("store.SaveTemplate: marshal: %w", err)
	}
	_, err = s.ExecContext(ctx, `
		INSERT INTO templates (id, body, meta) VALUES (?,?,?)
		ON CONFLICT(id) DO UPDATE SET body=excluded.body, meta=excluded.meta`,
		t.ID, t.Body, string(meta),
	)
	if err != nil {
		return fmt.Errorf("store.SaveTemplate: %w", err)
	}
	return nil
}

// LoadTemplates returns all persisted custom templates, oldest first.
func (s *Store) LoadTemplates(ctx context.Context) ([]template.Template, error) {
	rows, err := s.QueryContext(ctx, `SELECT meta FROM templates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store.LoadTemplates: %w", err)
	}
	defer rows.Close()

	var out []template.Template
	for rows.Next() {
		var meta string
		if err := rows.Scan(&meta); err != nil {
			return nil, fmt.Errorf("store.LoadTemplates: scan: %w", err)
		}
		var t template.Template
		if err := json.Unmarshal([]byte(meta), &t); err != nil {
			return nil, fmt.Errorf("store.LoadTemplates: unmarshal %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Today returns the current date in the store's date column format.
func Today() string {
	return time.Now().Format("2006-01-02")
}
