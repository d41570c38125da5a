package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/tinyurl/internal/shortener"
)

const uniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of shortener.Gateway.
type PostgresStore struct {
	pool *pgxpool.Pool

	// schemaMu serializes schema creation; concurrent CREATE TABLE IF NOT EXISTS
	// on PostgreSQL can fail with a pg_type unique violation.
	schemaMu    sync.Mutex
	schemaReady bool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Open acquires a pooled connection. The first successful Open creates the urls table.
func (p *PostgresStore) Open(ctx context.Context) (shortener.Session, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, shortener.WrapStorage("open", err)
	}

	if err = p.ensureSchema(ctx, conn); err != nil {
		conn.Release()

		return nil, shortener.WrapStorage("ensure schema", err)
	}

	return &postgresSession{conn: conn}, nil
}

// ensureSchema runs until it succeeds once, so a failed attempt is retried by the next Open.
func (p *PostgresStore) ensureSchema(ctx context.Context, conn *pgxpool.Conn) error {
	p.schemaMu.Lock()
	defer p.schemaMu.Unlock()

	if p.schemaReady {
		return nil
	}

	if _, err := conn.Exec(ctx, createTableSQL); err != nil {
		return err
	}

	p.schemaReady = true

	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

type postgresSession struct {
	conn *pgxpool.Conn
}

func (s *postgresSession) FindTargetByCode(ctx context.Context, code shortener.Code) (string, error) {
	var target string

	err := s.conn.QueryRow(ctx, "SELECT target FROM urls WHERE code = $1", string(code)).Scan(&target)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("find target by code", err)
	}

	return target, nil
}

func (s *postgresSession) FindCodeByTarget(ctx context.Context, target string) (shortener.Code, error) {
	var code string

	err := s.conn.QueryRow(ctx, "SELECT code FROM urls WHERE target = $1 LIMIT 1", target).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("find code by target", err)
	}

	return shortener.Code(code), nil
}

// MaxCode uses the C collation so text order matches the base62 alphabet.
func (s *postgresSession) MaxCode(ctx context.Context) (shortener.Code, error) {
	var code string

	err := s.conn.QueryRow(ctx,
		`SELECT code FROM urls ORDER BY length(code) DESC, code COLLATE "C" DESC LIMIT 1`,
	).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("max code", err)
	}

	return shortener.Code(code), nil
}

func (s *postgresSession) Insert(ctx context.Context, mapping shortener.ShortMapping) error {
	_, err := s.conn.Exec(ctx,
		"INSERT INTO urls (code, target) VALUES ($1, $2)",
		string(mapping.Code), mapping.Target,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return shortener.WrapStorage("insert", fmt.Errorf("%w: %s", shortener.ErrDuplicateCode, mapping.Code))
		}

		return shortener.WrapStorage("insert", err)
	}

	return nil
}

func (s *postgresSession) Close() error {
	s.conn.Release()

	return nil
}

var _ shortener.Gateway = (*PostgresStore)(nil)
