package shortener_test

import (
	"context"
	"errors"

	"github.com/serroba/shortlink/internal/shortener"
)

var errMock = errors.New("mock error")

// mockRepository wraps a real repository and lets tests inject failures.
type mockRepository struct {
	shortener.Repository

	createErrs  []error // consumed one per Create call
	createCalls int
	findErr     error
	listErr     error
	deleteCalls int
	deleted     []shortener.Handle
	blockCreate bool
}

func (m *mockRepository) Create(ctx context.Context, code shortener.Code, longURL string) (*shortener.ShortLink, error) {
	m.createCalls++

	if m.blockCreate {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]

		if err != nil {
			return nil, err
		}
	}

	return m.Repository.Create(ctx, code, longURL)
}

func (m *mockRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}

	return m.Repository.FindByCode(ctx, code)
}

func (m *mockRepository) List(ctx context.Context) ([]*shortener.ShortLink, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	return m.Repository.List(ctx)
}

func (m *mockRepository) DeleteByHandle(ctx context.Context, handle shortener.Handle) (*shortener.ShortLink, error) {
	m.deleteCalls++
	m.deleted = append(m.deleted, handle)

	return m.Repository.DeleteByHandle(ctx, handle)
}

// sequence returns a generator that yields codes in order and then repeats the last one.
func sequence(codes ...string) shortener.CodeGenerator {
	i := 0

	return func() string {
		code := codes[min(i, len(codes)-1)]
		i++

		return code
	}
}
