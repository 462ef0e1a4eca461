package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pingOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestLogger(zap.New(core)))

	huma.Get(api, "/items/{id}", func(_ context.Context, _ *struct {
		ID string `path:"id"`
	}) (*pingOutput, error) {
		return &pingOutput{}, nil
	})

	huma.Get(api, "/boom", func(_ context.Context, _ *struct{}) (*pingOutput, error) {
		return nil, huma.Error500InternalServerError("boom")
	})

	t.Run("logs successful request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
		req.Header.Set("X-Real-IP", "203.0.113.9")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)

		fields := entries[0].ContextMap()
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/items/42", fields["path"])
		assert.Equal(t, "/items/{id}", fields["operation"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
		assert.Equal(t, "203.0.113.9", fields["client_ip"])
	})

	t.Run("logs server errors at error level", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})
}
