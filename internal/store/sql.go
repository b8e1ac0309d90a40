package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/gmllt/prepboard/internal/board"
)

type dialect struct {
	driver string
	schema string
	upsert string
	load   string
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `CREATE TABLE IF NOT EXISTS boards (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	upsert: `INSERT INTO boards (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
	load: `SELECT payload FROM boards WHERE name = ?`,
}

var postgresDialect = dialect{
	driver: "pgx",
	schema: `CREATE TABLE IF NOT EXISTS boards (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	upsert: `INSERT INTO boards (name, payload, updated_at) VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
	load: `SELECT payload FROM boards WHERE name = $1`,
}

// SQL stores one row per board in a relational database.
type SQL struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	// SQLite benefits from a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return newSQL(ctx, db, sqliteDialect)
}

// OpenPostgres connects through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, databaseURL string) (*SQL, error) {
	db, err := sql.Open(postgresDialect.driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)
	return newSQL(ctx, db, postgresDialect)
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure boards table: %w", err)
	}
	return &SQL{db: db, dialect: d, now: time.Now}, nil
}

func (s *SQL) Load(ctx context.Context, name string) (board.Board, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.dialect.load, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return board.Board{}, ErrNotFound
	}
	if err != nil {
		return board.Board{}, fmt.Errorf("load board %s: %w", name, err)
	}
	return decode(payload)
}

func (s *SQL) Persist(ctx context.Context, name string, b board.Board) error {
	data, err := encode(b)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, name, string(data), s.now().UTC()); err != nil {
		return fmt.Errorf("save board %s: %w", name, err)
	}
	return nil
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	return s.db.Close()
}
