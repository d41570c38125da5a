package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/serroba/tinyurl/internal/shortener"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS urls (code TEXT PRIMARY KEY, target TEXT)`

// SQLiteStore is a shortener.Gateway backed by a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore prepares a store for the database file at path. The file is
// created on first Open; nothing touches the disk here.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, shortener.WrapStorage("open", fmt.Errorf("could not open SQLite database: %w", err))
	}

	return &SQLiteStore{db: db}, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		return "file::memory:?cache=shared"
	}

	return "file:" + path + "?_busy_timeout=5000"
}

// Open acquires a dedicated connection and ensures the urls table exists.
func (s *SQLiteStore) Open(ctx context.Context) (shortener.Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, shortener.WrapStorage("open", err)
	}

	if _, err = conn.ExecContext(ctx, createTableSQL); err != nil {
		_ = conn.Close()

		return nil, shortener.WrapStorage("ensure schema", err)
	}

	return &sqlSession{conn: conn, isDuplicate: isSQLiteConstraint}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the underlying connection pool.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

func isSQLiteConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// sqlSession runs the gateway queries on one database/sql connection.
type sqlSession struct {
	conn        *sql.Conn
	isDuplicate func(error) bool
}

func (s *sqlSession) FindTargetByCode(ctx context.Context, code shortener.Code) (string, error) {
	var target string

	err := s.conn.QueryRowContext(ctx, "SELECT target FROM urls WHERE code = ?", string(code)).Scan(&target)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("find target by code", err)
	}

	return target, nil
}

func (s *sqlSession) FindCodeByTarget(ctx context.Context, target string) (shortener.Code, error) {
	var code string

	err := s.conn.QueryRowContext(ctx, "SELECT code FROM urls WHERE target = ? LIMIT 1", target).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("find code by target", err)
	}

	return shortener.Code(code), nil
}

// MaxCode orders by length then text, which is numeric order for canonical base62 codes.
func (s *sqlSession) MaxCode(ctx context.Context) (shortener.Code, error) {
	var code string

	err := s.conn.QueryRowContext(ctx,
		"SELECT code FROM urls ORDER BY length(code) DESC, code DESC LIMIT 1",
	).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("max code", err)
	}

	return shortener.Code(code), nil
}

func (s *sqlSession) Insert(ctx context.Context, mapping shortener.ShortMapping) error {
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO urls (code, target) VALUES (?, ?)",
		string(mapping.Code), mapping.Target,
	)
	if err != nil {
		if s.isDuplicate(err) {
			return shortener.WrapStorage("insert", fmt.Errorf("%w: %s", shortener.ErrDuplicateCode, mapping.Code))
		}

		return shortener.WrapStorage("insert", err)
	}

	return nil
}

func (s *sqlSession) Close() error {
	return s.conn.Close()
}

var _ shortener.Gateway = (*SQLiteStore)(nil)
