package shortener_test

import (
	"context"
	"errors"

	"github.com/serroba/tinyurl/internal/shortener"
)

var errMock = errors.New("mock error")

// mockGateway is a test double for shortener.Gateway that can be configured to return errors.
type mockGateway struct {
	openErr        error
	findTargetErr  error
	findCodeErr    error
	maxCodeErr     error
	insertErr      error
	closeErr       error
	maxCode        shortener.Code
	opened, closed int
	inserted       []shortener.ShortMapping
}

func (m *mockGateway) Open(_ context.Context) (shortener.Session, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}

	m.opened++

	return &mockSession{gateway: m}, nil
}

func (m *mockGateway) Ping(_ context.Context) error {
	return m.openErr
}

type mockSession struct {
	gateway *mockGateway
}

func (s *mockSession) FindTargetByCode(_ context.Context, _ shortener.Code) (string, error) {
	if s.gateway.findTargetErr != nil {
		return "", s.gateway.findTargetErr
	}

	return "https://example.com", nil
}

func (s *mockSession) FindCodeByTarget(_ context.Context, _ string) (shortener.Code, error) {
	if s.gateway.findCodeErr != nil {
		return "", s.gateway.findCodeErr
	}

	return "abc", nil
}

func (s *mockSession) MaxCode(_ context.Context) (shortener.Code, error) {
	if s.gateway.maxCodeErr != nil {
		return "", s.gateway.maxCodeErr
	}

	return s.gateway.maxCode, nil
}

func (s *mockSession) Insert(_ context.Context, mapping shortener.ShortMapping) error {
	if s.gateway.insertErr != nil {
		return s.gateway.insertErr
	}

	s.gateway.inserted = append(s.gateway.inserted, mapping)

	return nil
}

func (s *mockSession) Close() error {
	s.gateway.closed++

	return s.gateway.closeErr
}
