package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/tinyurl/internal/base62"
	"github.com/serroba/tinyurl/internal/shortener"
)

// RedisStore is a Redis implementation of shortener.Gateway.
type RedisStore struct {
	client    *redis.Client
	prefix    string // "url:" for code->target (string keys)
	targetKey string // "url_targets" for target->code (hash map)
	codesKey  string // "url_codes" sorted set scored by decoded code
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    "url:",
		targetKey: "url_targets",
		codesKey:  "url_codes",
	}
}

// Open takes a dedicated connection from the client pool.
func (r *RedisStore) Open(ctx context.Context) (shortener.Session, error) {
	conn := r.client.Conn()

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()

		return nil, shortener.WrapStorage("open", err)
	}

	return &redisSession{store: r, conn: conn}, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Shutdown closes the client.
func (r *RedisStore) Shutdown() error {
	return r.client.Close()
}

type redisSession struct {
	store *RedisStore
	conn  *redis.Conn
}

func (s *redisSession) FindTargetByCode(ctx context.Context, code shortener.Code) (string, error) {
	target, err := s.conn.Get(ctx, s.store.prefix+string(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("find target by code", err)
	}

	return target, nil
}

func (s *redisSession) FindCodeByTarget(ctx context.Context, target string) (shortener.Code, error) {
	code, err := s.conn.HGet(ctx, s.store.targetKey, target).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortener.ErrNotFound
		}

		return "", shortener.WrapStorage("find code by target", err)
	}

	return shortener.Code(code), nil
}

func (s *redisSession) MaxCode(ctx context.Context) (shortener.Code, error) {
	codes, err := s.conn.ZRevRange(ctx, s.store.codesKey, 0, 0).Result()
	if err != nil {
		return "", shortener.WrapStorage("max code", err)
	}

	if len(codes) == 0 {
		return "", shortener.ErrNotFound
	}

	return shortener.Code(codes[0]), nil
}

// insertScript claims the code key and writes both indexes in one step, so a
// failure never leaves a claimed code that MaxCode and FindCodeByTarget miss.
// Index key types are checked before any write; Redis keeps the writes of a
// script that errors halfway.
var insertScript = redis.NewScript(`
local targets = redis.call('TYPE', KEYS[2]).ok
local codes = redis.call('TYPE', KEYS[3]).ok
if (targets ~= 'none' and targets ~= 'hash') or (codes ~= 'none' and codes ~= 'zset') then
  return redis.error_reply('WRONGTYPE url index key holds the wrong kind of value')
end
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call('HSETNX', KEYS[2], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[3], ARGV[3], ARGV[2])
return 1
`)

func (s *redisSession) Insert(ctx context.Context, mapping shortener.ShortMapping) error {
	score, err := base62.Decode(string(mapping.Code))
	if err != nil {
		return shortener.WrapStorage("insert", err)
	}

	keys := []string{s.store.prefix + string(mapping.Code), s.store.targetKey, s.store.codesKey}

	claimed, err := insertScript.Run(ctx, s.conn, keys, mapping.Target, string(mapping.Code), score).Int()
	if err != nil {
		return shortener.WrapStorage("insert", err)
	}

	if claimed == 0 {
		return shortener.WrapStorage("insert", fmt.Errorf("%w: %s", shortener.ErrDuplicateCode, mapping.Code))
	}

	return nil
}

func (s *redisSession) Close() error {
	return s.conn.Close()
}

var _ shortener.Gateway = (*RedisStore)(nil)
