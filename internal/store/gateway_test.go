package store_test

import (
	"context"
	"testing"

	"github.com/serroba/tinyurl/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runGatewayTests exercises the behaviour every shortener.Gateway must share.
// newGateway must return a gateway over an empty table.
func runGatewayTests(t *testing.T, newGateway func(t *testing.T) shortener.Gateway) {
	t.Helper()

	ctx := context.Background()

	open := func(t *testing.T, g shortener.Gateway) shortener.Session {
		t.Helper()

		session, err := g.Open(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = session.Close() })

		return session
	}

	t.Run("ping succeeds", func(t *testing.T) {
		assert.NoError(t, newGateway(t).Ping(ctx))
	})

	t.Run("lookups on an empty table return ErrNotFound", func(t *testing.T) {
		s := open(t, newGateway(t))

		_, err := s.FindTargetByCode(ctx, "0")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = s.FindCodeByTarget(ctx, "http://a.com")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = s.MaxCode(ctx)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("insert then find both ways", func(t *testing.T) {
		s := open(t, newGateway(t))

		err := s.Insert(ctx, shortener.ShortMapping{Code: "0", Target: "http://a.com"})
		require.NoError(t, err)

		target, err := s.FindTargetByCode(ctx, "0")
		require.NoError(t, err)
		assert.Equal(t, "http://a.com", target)

		code, err := s.FindCodeByTarget(ctx, "http://a.com")
		require.NoError(t, err)
		assert.Equal(t, shortener.Code("0"), code)
	})

	t.Run("target lookup is an exact string match", func(t *testing.T) {
		s := open(t, newGateway(t))

		require.NoError(t, s.Insert(ctx, shortener.ShortMapping{Code: "0", Target: "http://a.com"}))

		_, err := s.FindCodeByTarget(ctx, "http://a.com/")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = s.FindCodeByTarget(ctx, "HTTP://a.com")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("duplicate code is a storage error", func(t *testing.T) {
		s := open(t, newGateway(t))

		require.NoError(t, s.Insert(ctx, shortener.ShortMapping{Code: "0", Target: "http://a.com"}))

		err := s.Insert(ctx, shortener.ShortMapping{Code: "0", Target: "http://b.com"})

		require.Error(t, err)
		assert.ErrorIs(t, err, shortener.ErrDuplicateCode)
		assert.True(t, shortener.IsStorageError(err))

		target, err := s.FindTargetByCode(ctx, "0")
		require.NoError(t, err)
		assert.Equal(t, "http://a.com", target, "first value should be preserved")
	})

	t.Run("rejected insert leaves the indexes untouched", func(t *testing.T) {
		s := open(t, newGateway(t))

		require.NoError(t, s.Insert(ctx, shortener.ShortMapping{Code: "5", Target: "http://a.com"}))
		require.Error(t, s.Insert(ctx, shortener.ShortMapping{Code: "5", Target: "http://b.com"}))

		code, err := s.MaxCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, shortener.Code("5"), code)

		_, err = s.FindCodeByTarget(ctx, "http://b.com")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		require.NoError(t, s.Insert(ctx, shortener.ShortMapping{Code: "6", Target: "http://b.com"}))

		code, err = s.MaxCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, shortener.Code("6"), code)
	})

	t.Run("max code uses numeric order", func(t *testing.T) {
		s := open(t, newGateway(t))

		for i, code := range []shortener.Code{"0", "z", "9", "10", "Z", "a"} {
			target := "http://example.com/" + string(rune('a'+i))
			require.NoError(t, s.Insert(ctx, shortener.ShortMapping{Code: code, Target: target}))
		}

		code, err := s.MaxCode(ctx)

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("10"), code)
	})

	t.Run("data outlives the session", func(t *testing.T) {
		g := newGateway(t)

		first, err := g.Open(ctx)
		require.NoError(t, err)
		require.NoError(t, first.Insert(ctx, shortener.ShortMapping{Code: "0", Target: "http://a.com"}))
		require.NoError(t, first.Close())

		second := open(t, g)

		target, err := second.FindTargetByCode(ctx, "0")
		require.NoError(t, err)
		assert.Equal(t, "http://a.com", target)
	})
}
