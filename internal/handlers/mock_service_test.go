package handlers_test

import (
	"context"
	"errors"

	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/shortener"
)

var errMock = errors.New("mock error")

// mockService is a LinkService whose results are set per test.
type mockService struct {
	link  *shortener.ShortLink
	links []*shortener.ShortLink
	err   error

	shortenedURL string
	resolvedCode shortener.Code
	deleted      shortener.Handle
}

func (m *mockService) Shorten(_ context.Context, longURL string) (*shortener.ShortLink, error) {
	m.shortenedURL = longURL

	return m.link, m.err
}

func (m *mockService) Resolve(_ context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	m.resolvedCode = code

	return m.link, m.err
}

func (m *mockService) List(_ context.Context) ([]*shortener.ShortLink, error) {
	return m.links, m.err
}

func (m *mockService) Delete(_ context.Context, handle shortener.Handle) (*shortener.ShortLink, error) {
	m.deleted = handle

	return m.link, m.err
}

// recordingPublishers captures published events.
type recordingPublishers struct {
	created []*events.LinkCreated
	deleted []*events.LinkDeleted
	err     error
}

func (r *recordingPublishers) publishers() *events.Publishers {
	return &events.Publishers{
		LinkCreated: func(_ context.Context, e *events.LinkCreated) error {
			r.created = append(r.created, e)

			return r.err
		},
		LinkDeleted: func(_ context.Context, e *events.LinkDeleted) error {
			r.deleted = append(r.deleted, e)

			return r.err
		},
	}
}
