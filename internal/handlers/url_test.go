package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testHandle = "5f0c3c2e-8a51-4c1e-9f0e-8f3c1f7b9a10"

func testLink() *shortener.ShortLink {
	return &shortener.ShortLink{
		Handle:    testHandle,
		Code:      "abc1234",
		LongURL:   "https://example.com/very/long/path",
		ShortURL:  "http://localhost:8888/abc1234",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func init() {
	huma.NewError = handlers.NewError
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var se huma.StatusError
	require.ErrorAs(t, err, &se)

	return se.GetStatus()
}

func TestLinkHandler_Shorten(t *testing.T) {
	t.Run("creates short link and publishes event", func(t *testing.T) {
		svc := &mockService{link: testLink()}
		rec := &recordingPublishers{}
		h := handlers.NewLinkHandler(svc, rec.publishers(), zap.NewNop())

		resp, err := h.Shorten(context.Background(), &handlers.ShortenRequest{
			Body: &handlers.ShortenBody{OriginalURL: "https://example.com/very/long/path"},
		})

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/very/long/path", svc.shortenedURL)
		assert.True(t, resp.Body.Success)
		assert.Equal(t, "URL shortened successfully", resp.Body.Message)
		assert.Equal(t, "abc1234", resp.Body.Data.ShortID)
		assert.Equal(t, "https://example.com/very/long/path", resp.Body.Data.LongURL)
		assert.Equal(t, "http://localhost:8888/abc1234", resp.Body.Data.ShortURL)
		assert.Equal(t, resp.Body.Data.ShortURL, resp.Location)

		require.Len(t, rec.created, 1)
		assert.Equal(t, "abc1234", rec.created[0].ShortID)
		assert.Equal(t, testHandle, rec.created[0].Handle)
	})

	t.Run("missing body is passed on as empty url", func(t *testing.T) {
		svc := &mockService{err: &shortener.InputError{Msg: "URL is required"}}
		h := handlers.NewLinkHandler(svc, (&recordingPublishers{}).publishers(), zap.NewNop())

		_, err := h.Shorten(context.Background(), &handlers.ShortenRequest{})

		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.EqualError(t, err, "URL is required")
		assert.Empty(t, svc.shortenedURL)
	})

	t.Run("server error hides the cause and publishes nothing", func(t *testing.T) {
		svc := &mockService{err: errMock}
		rec := &recordingPublishers{}
		h := handlers.NewLinkHandler(svc, rec.publishers(), zap.NewNop())

		_, err := h.Shorten(context.Background(), &handlers.ShortenRequest{
			Body: &handlers.ShortenBody{OriginalURL: "https://example.com"},
		})

		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
		assert.EqualError(t, err, handlers.MessageServerError)
		assert.Empty(t, rec.created)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		rec := &recordingPublishers{err: errMock}
		h := handlers.NewLinkHandler(&mockService{link: testLink()}, rec.publishers(), zap.NewNop())

		resp, err := h.Shorten(context.Background(), &handlers.ShortenRequest{
			Body: &handlers.ShortenBody{OriginalURL: "https://example.com/very/long/path"},
		})

		require.NoError(t, err)
		assert.True(t, resp.Body.Success)
	})
}

func TestLinkHandler_Redirect(t *testing.T) {
	t.Run("redirects with 302", func(t *testing.T) {
		svc := &mockService{link: testLink()}
		h := handlers.NewLinkHandler(svc, (&recordingPublishers{}).publishers(), zap.NewNop())

		resp, err := h.Redirect(context.Background(), &handlers.RedirectRequest{ShortID: "abc1234"})

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("abc1234"), svc.resolvedCode)
		assert.Equal(t, http.StatusFound, resp.Status)
		assert.Equal(t, "https://example.com/very/long/path", resp.Location)
	})

	t.Run("unknown short id", func(t *testing.T) {
		h := handlers.NewLinkHandler(&mockService{err: shortener.ErrNotFound},
			(&recordingPublishers{}).publishers(), zap.NewNop())

		_, err := h.Redirect(context.Background(), &handlers.RedirectRequest{ShortID: "missing"})

		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
		assert.EqualError(t, err, "Short URL not found")
	})

	t.Run("store failure", func(t *testing.T) {
		h := handlers.NewLinkHandler(&mockService{err: errMock}, (&recordingPublishers{}).publishers(), zap.NewNop())

		_, err := h.Redirect(context.Background(), &handlers.RedirectRequest{ShortID: "abc1234"})

		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})
}

func TestLinkHandler_List(t *testing.T) {
	t.Run("maps links to items", func(t *testing.T) {
		svc := &mockService{links: []*shortener.ShortLink{testLink()}}
		h := handlers.NewLinkHandler(svc, (&recordingPublishers{}).publishers(), zap.NewNop())

		resp, err := h.List(context.Background(), nil)

		require.NoError(t, err)
		assert.True(t, resp.Body.Success)
		require.Len(t, resp.Body.URLs, 1)

		item := resp.Body.URLs[0]
		assert.Equal(t, testHandle, item.ID)
		assert.Equal(t, "abc1234", item.ShortID)
		assert.Equal(t, "https://example.com/very/long/path", item.LongURL)
		assert.Equal(t, "http://localhost:8888/abc1234", item.ShortURL)
		assert.Equal(t, testLink().CreatedAt, item.CreatedAt)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		h := handlers.NewLinkHandler(&mockService{}, (&recordingPublishers{}).publishers(), zap.NewNop())

		resp, err := h.List(context.Background(), nil)

		require.NoError(t, err)
		assert.NotNil(t, resp.Body.URLs)
		assert.Empty(t, resp.Body.URLs)
	})

	t.Run("store failure", func(t *testing.T) {
		h := handlers.NewLinkHandler(&mockService{err: errMock}, (&recordingPublishers{}).publishers(), zap.NewNop())

		_, err := h.List(context.Background(), nil)

		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})
}

func TestLinkHandler_Delete(t *testing.T) {
	t.Run("deletes and publishes event", func(t *testing.T) {
		svc := &mockService{link: testLink()}
		rec := &recordingPublishers{}
		h := handlers.NewLinkHandler(svc, rec.publishers(), zap.NewNop())

		resp, err := h.Delete(context.Background(), &handlers.DeleteRequest{ID: testHandle})

		require.NoError(t, err)
		assert.Equal(t, shortener.Handle(testHandle), svc.deleted)
		assert.True(t, resp.Body.Success)
		assert.Equal(t, "URL deleted", resp.Body.Message)
		assert.Equal(t, testHandle, resp.Body.ID)

		require.Len(t, rec.deleted, 1)
		assert.Equal(t, "abc1234", rec.deleted[0].ShortID)
		assert.False(t, rec.deleted[0].DeletedAt.IsZero())
	})

	t.Run("unknown handle", func(t *testing.T) {
		rec := &recordingPublishers{}
		h := handlers.NewLinkHandler(&mockService{err: shortener.ErrNotFound}, rec.publishers(), zap.NewNop())

		_, err := h.Delete(context.Background(), &handlers.DeleteRequest{ID: "nope"})

		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
		assert.EqualError(t, err, "URL not found")
		assert.Empty(t, rec.deleted)
	})

	t.Run("store failure", func(t *testing.T) {
		h := handlers.NewLinkHandler(&mockService{err: errMock}, (&recordingPublishers{}).publishers(), zap.NewNop())

		_, err := h.Delete(context.Background(), &handlers.DeleteRequest{ID: testHandle})

		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})
}
