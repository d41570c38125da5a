package shortener

import (
	"context"
	"errors"

	"github.com/serroba/tinyurl/internal/base62"
)

// Result is the outcome of a Shorten call.
type Result struct {
	ShortMapping

	// Created is false when the target was already shortened.
	Created bool
}

// Service allocates and resolves short codes. It holds no state between calls;
// every call opens its own session on the gateway and releases it before returning.
type Service struct {
	gateway Gateway
}

// NewService creates a new Service backed by gateway.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// Shorten normalizes and validates rawURL and returns its code, allocating the
// next one in sequence when the exact target has not been stored before.
//
// Two concurrent calls may compute the same next code; the loser's insert fails
// with a StorageError wrapping ErrDuplicateCode and is not retried.
func (s *Service) Shorten(ctx context.Context, rawURL string) (*Result, error) {
	target := NormalizeURL(rawURL)
	if err := ValidateURL(target); err != nil {
		return nil, err
	}

	var result *Result

	err := s.withSession(ctx, func(session Session) error {
		existing, err := session.FindCodeByTarget(ctx, target)
		if err == nil {
			result = &Result{ShortMapping: ShortMapping{Code: existing, Target: target}}

			return nil
		}

		if !errors.Is(err, ErrNotFound) {
			return WrapStorage("find code by target", err)
		}

		code, err := nextCode(ctx, session)
		if err != nil {
			return err
		}

		mapping := ShortMapping{Code: code, Target: target}
		if err = session.Insert(ctx, mapping); err != nil {
			return WrapStorage("insert", err)
		}

		result = &Result{ShortMapping: mapping, Created: true}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Resolve returns the target stored for code, or ErrNotFound.
func (s *Service) Resolve(ctx context.Context, code Code) (string, error) {
	var target string

	err := s.withSession(ctx, func(session Session) error {
		var err error

		target, err = session.FindTargetByCode(ctx, code)

		return WrapStorage("find target by code", err)
	})

	return target, err
}

// Ping reports whether the gateway is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}

func nextCode(ctx context.Context, session Session) (Code, error) {
	maxCode, err := session.MaxCode(ctx)
	if errors.Is(err, ErrNotFound) {
		return FirstCode, nil
	}

	if err != nil {
		return "", WrapStorage("max code", err)
	}

	next, err := base62.Next(string(maxCode))
	if err != nil {
		return "", &StorageError{Op: "allocate", Err: err}
	}

	return Code(next), nil
}

func (s *Service) withSession(ctx context.Context, fn func(Session) error) (err error) {
	session, err := s.gateway.Open(ctx)
	if err != nil {
		return WrapStorage("open", err)
	}

	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = &StorageError{Op: "close", Err: closeErr}
		}
	}()

	return fn(session)
}
