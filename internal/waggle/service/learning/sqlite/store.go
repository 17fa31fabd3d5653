package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ravenhall/waggle/internal/waggle/service/learning"
)

const (
	TablePatterns = "patterns"
	TableMetrics  = "metrics"
)

// ErrPatternNotFound is returned when a pattern ID is unknown.
var ErrPatternNotFound = errors.New("pattern not found")

// Store is the SQLite-backed learning store. The schema is shared with
// outside collaborators, so creation is strictly IF NOT EXISTS.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the learning database.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open learning store: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + TablePatterns + ` (
			id TEXT PRIMARY KEY,
			strategy TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT '',
			quality REAL NOT NULL,
			use_count INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_domain ON ` + TablePatterns + `(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_quality ON ` + TablePatterns + `(quality)`,
		`CREATE TABLE IF NOT EXISTS ` + TableMetrics + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cpu_percent REAL NOT NULL,
			mem_percent REAL NOT NULL,
			load_avg REAL NOT NULL,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_recorded_at ON ` + TableMetrics + `(recorded_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces a pattern keyed by ID.
func (s *Store) Save(ctx context.Context, p *learning.Pattern) error {
	now := time.Now()
	created := p.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO `+TablePatterns+` (id, strategy, domain, quality, use_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Strategy, p.Domain, p.Quality, p.UseCount, created.UnixMilli(), now.UnixMilli())
	return err
}

// Get retrieves a pattern by ID.
func (s *Store) Get(ctx context.Context, id string) (*learning.Pattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, strategy, domain, quality, use_count, created_at, updated_at FROM `+TablePatterns+` WHERE id = ?`, id)
	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPatternNotFound, id)
	}
	return p, err
}

// Find returns patterns whose strategy or domain contains the query, best
// quality first. Substring matching stands in for the collaborator's
// similarity search.
func (s *Store) Find(ctx context.Context, query string, limit int) ([]*learning.Pattern, error) {
	if limit <= 0 {
		limit = 10
	}
	needle := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy, domain, quality, use_count, created_at, updated_at FROM `+TablePatterns+
			` WHERE strategy LIKE ? OR domain LIKE ? ORDER BY quality DESC, use_count DESC LIMIT ?`,
		needle, needle, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []*learning.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// Touch increments a pattern's use counter.
func (s *Store) Touch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+TablePatterns+` SET use_count = use_count + 1, updated_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPatternNotFound, id)
	}
	return nil
}

// RecordMetric appends a host resource sample.
func (s *Store) RecordMetric(ctx context.Context, m *learning.MetricSample) error {
	at := m.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+TableMetrics+` (cpu_percent, mem_percent, load_avg, recorded_at) VALUES (?, ?, ?, ?)`,
		m.CPUPercent, m.MemPercent, m.LoadAvg, at.UnixMilli())
	return err
}

// Consolidate drops low-quality never-used patterns older than the cutoff.
func (s *Store) Consolidate(ctx context.Context, minQuality float64, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM `+TablePatterns+` WHERE quality < ? AND use_count = 0 AND updated_at < ?`,
		minQuality, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(row rowScanner) (*learning.Pattern, error) {
	var p learning.Pattern
	var createdMs, updatedMs int64
	if err := row.Scan(&p.ID, &p.Strategy, &p.Domain, &p.Quality, &p.UseCount, &createdMs, &updatedMs); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(createdMs)
	p.UpdatedAt = time.UnixMilli(updatedMs)
	return &p, nil
}
