package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/serroba/tinyurl/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDs(t *testing.T) {
	t.Run("generates an id when none is sent", func(t *testing.T) {
		var seen string

		h := middleware.RequestIDs(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = middleware.RequestID(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("reuses an incoming id", func(t *testing.T) {
		var seen string

		h := middleware.RequestIDs(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = middleware.RequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("empty context has no id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Empty(t, middleware.RequestID(req.Context()))
	})
}

func TestLogging(t *testing.T) {
	t.Run("logs status and path", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		h := middleware.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusFound)
		}))

		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")

		h.ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, 1, logs.Len())

		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "/abc", fields["path"])
		assert.Equal(t, int64(http.StatusFound), fields["status"])
		assert.Equal(t, "192.168.1.1", fields["client_ip"])
	})

	t.Run("defaults to 200 when handler only writes a body", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		h := middleware.Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
	})
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)

	h := middleware.Recovery(zap.New(core))(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"single forwarded ip", map[string]string{"X-Forwarded-For": "192.168.1.1"}, "10.0.0.1:1234", "192.168.1.1"},
		{"first of many forwarded ips", map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"}, "10.0.0.1:1234", "192.168.1.1"},
		{"real ip header", map[string]string{"X-Real-IP": "172.16.0.1"}, "10.0.0.1:1234", "172.16.0.1"},
		{"remote addr with port", nil, "10.0.0.1:1234", "10.0.0.1"},
		{"remote addr without port", nil, "10.0.0.1", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote

			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, middleware.ClientIP(req))
		})
	}
}
