package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"informer/internal/mine"
	"informer/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.MineCache using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.MineCache = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mine_data (
		minion_id TEXT NOT NULL,
		function TEXT NOT NULL,
		data TEXT,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (minion_id, function)
	);

	CREATE INDEX IF NOT EXISTS idx_mine_data_function ON mine_data(function);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Get implements mine.Mine
func (r *Repository) Get(ctx context.Context, target, function string) (map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+mineColumns+`
		FROM mine_data WHERE function = ?
	`, function)
	if err != nil {
		return nil, fmt.Errorf("failed to query mine data: %w", err)
	}
	defer rows.Close()

	result := make(map[string]any)
	for rows.Next() {
		var row mineRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan mine data: %w", err)
		}
		if !mine.Match(target, row.MinionID) {
			continue
		}
		v, err := row.value()
		if err != nil {
			return nil, err
		}
		result[row.MinionID] = v
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mine data: %w", err)
	}

	return result, nil
}

// Store inserts or replaces the value a minion published for function
func (r *Repository) Store(ctx context.Context, id, function string, value any) error {
	if id == "" || function == "" {
		return fmt.Errorf("minion id and function are required")
	}

	data, err := marshalToNull(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s for %s: %w", function, id, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO mine_data (minion_id, function, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(minion_id, function) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, id, function, data, r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store mine data: %w", err)
	}

	return nil
}

// Delete removes every function cached for a minion
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM mine_data WHERE minion_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete minion %s: %w", id, err)
	}
	return nil
}

// ListMinions returns every cached minion identity, sorted
func (r *Repository) ListMinions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT minion_id FROM mine_data`)
	if err != nil {
		return nil, fmt.Errorf("failed to query minions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan minion: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating minions: %w", err)
	}

	sort.Strings(ids)
	return ids, nil
}

// ListEntries returns what is cached, ordered by minion then function
func (r *Repository) ListEntries(ctx context.Context) ([]repository.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+mineColumns+`
		FROM mine_data ORDER BY minion_id, function
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mine data: %w", err)
	}
	defer rows.Close()

	entries := []repository.Entry{}
	for rows.Next() {
		var row mineRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan mine data: %w", err)
		}
		entries = append(entries, repository.Entry{
			MinionID:  row.MinionID,
			Function:  row.Function,
			UpdatedAt: row.updated(),
		})
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
