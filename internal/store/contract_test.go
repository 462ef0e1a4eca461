package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the behaviour every backend must share.
// newBackend must return an empty store.
func testRepository(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Helper()

	ctx := context.Background()

	t.Run("create and find by code", func(t *testing.T) {
		s := newBackend(t)

		created, err := s.Create(ctx, "abc1234", "https://example.com/a")
		require.NoError(t, err)

		assert.Equal(t, shortener.Code("abc1234"), created.Code)
		assert.Equal(t, "https://example.com/a", created.LongURL)
		assert.False(t, created.CreatedAt.IsZero())

		_, err = uuid.Parse(string(created.Handle))
		require.NoError(t, err, "handle should be a UUID")

		found, err := s.FindByCode(ctx, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, created.Handle, found.Handle)
		assert.Equal(t, created.LongURL, found.LongURL)
		assert.WithinDuration(t, created.CreatedAt, found.CreatedAt, 0)
	})

	t.Run("rejects duplicate code and keeps original", func(t *testing.T) {
		s := newBackend(t)

		_, err := s.Create(ctx, "dupcode1", "https://example.com/first")
		require.NoError(t, err)

		_, err = s.Create(ctx, "dupcode1", "https://example.com/second")
		require.ErrorIs(t, err, shortener.ErrDuplicateKey)

		found, err := s.FindByCode(ctx, "dupcode1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/first", found.LongURL)
	})

	t.Run("same url gets distinct records", func(t *testing.T) {
		s := newBackend(t)

		a, err := s.Create(ctx, "samea01", "https://example.com")
		require.NoError(t, err)

		b, err := s.Create(ctx, "sameb01", "https://example.com")
		require.NoError(t, err)

		assert.NotEqual(t, a.Handle, b.Handle)
	})

	t.Run("find is case sensitive", func(t *testing.T) {
		s := newBackend(t)

		_, err := s.Create(ctx, "CaseCode", "https://example.com")
		require.NoError(t, err)

		_, err = s.FindByCode(ctx, "casecode")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("find missing code", func(t *testing.T) {
		s := newBackend(t)

		_, err := s.FindByCode(ctx, "missing1")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("list is empty on a new store", func(t *testing.T) {
		s := newBackend(t)

		links, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("list returns newest first", func(t *testing.T) {
		s := newBackend(t)

		for _, code := range []shortener.Code{"ordera1", "orderb1", "orderc1"} {
			_, err := s.Create(ctx, code, "https://example.com/"+string(code))
			require.NoError(t, err)
		}

		links, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, links, 3)

		assert.Equal(t, shortener.Code("orderc1"), links[0].Code)
		assert.Equal(t, shortener.Code("orderb1"), links[1].Code)
		assert.Equal(t, shortener.Code("ordera1"), links[2].Code)
	})

	t.Run("delete by handle", func(t *testing.T) {
		s := newBackend(t)

		keep, err := s.Create(ctx, "keep001", "https://example.com/keep")
		require.NoError(t, err)

		gone, err := s.Create(ctx, "gone001", "https://example.com/gone")
		require.NoError(t, err)

		deleted, err := s.DeleteByHandle(ctx, gone.Handle)
		require.NoError(t, err)
		assert.Equal(t, gone.Code, deleted.Code)
		assert.Equal(t, gone.LongURL, deleted.LongURL)

		_, err = s.FindByCode(ctx, "gone001")
		require.ErrorIs(t, err, shortener.ErrNotFound)

		links, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, keep.Handle, links[0].Handle)

		_, err = s.DeleteByHandle(ctx, gone.Handle)
		assert.ErrorIs(t, err, shortener.ErrNotFound, "second delete should not find the record")
	})

	t.Run("delete unknown handle", func(t *testing.T) {
		s := newBackend(t)

		_, err := s.DeleteByHandle(ctx, shortener.Handle(uuid.NewString()))
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("code can be reused after delete", func(t *testing.T) {
		s := newBackend(t)

		first, err := s.Create(ctx, "reuse01", "https://example.com/one")
		require.NoError(t, err)

		_, err = s.DeleteByHandle(ctx, first.Handle)
		require.NoError(t, err)

		second, err := s.Create(ctx, "reuse01", "https://example.com/two")
		require.NoError(t, err)
		assert.NotEqual(t, first.Handle, second.Handle)
	})

	t.Run("ping", func(t *testing.T) {
		s := newBackend(t)

		assert.NoError(t, s.Ping(ctx))
	})
}
