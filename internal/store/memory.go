package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu       sync.RWMutex
	byCode   map[shortener.Code]*shortener.ShortLink
	byHandle map[shortener.Handle]*shortener.ShortLink
	order    []shortener.Handle // insertion order, oldest first
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCode:   make(map[shortener.Code]*shortener.ShortLink),
		byHandle: make(map[shortener.Handle]*shortener.ShortLink),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, code shortener.Code, longURL string) (*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byCode[code]; exists {
		return nil, shortener.ErrDuplicateKey
	}

	link := &shortener.ShortLink{
		Handle:    shortener.Handle(uuid.NewString()),
		Code:      code,
		LongURL:   longURL,
		CreatedAt: m.now().UTC(),
	}

	m.byCode[code] = link
	m.byHandle[link.Handle] = link
	m.order = append(m.order, link.Handle)

	return clone(link), nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return clone(link), nil
}

func (m *MemoryStore) List(_ context.Context) ([]*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]*shortener.ShortLink, 0, len(m.order))
	for _, handle := range slices.Backward(m.order) {
		links = append(links, clone(m.byHandle[handle]))
	}

	return links, nil
}

func (m *MemoryStore) DeleteByHandle(_ context.Context, handle shortener.Handle) (*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.byHandle[handle]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	delete(m.byHandle, handle)
	delete(m.byCode, link.Code)
	m.order = slices.DeleteFunc(m.order, func(h shortener.Handle) bool { return h == handle })

	return clone(link), nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Shutdown is a no-op for MemoryStore.
func (m *MemoryStore) Shutdown() error {
	return nil
}

// clone keeps callers from mutating stored records.
func clone(link *shortener.ShortLink) *shortener.ShortLink {
	c := *link

	return &c
}
