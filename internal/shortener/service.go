package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts  = 5
	DefaultStoreTimeout = 3 * time.Second
)

// Config controls how the Service talks to its Repository.
type Config struct {
	BaseURL      string
	MaxAttempts  int
	StoreTimeout time.Duration
}

// Service implements the shorten, resolve, list and delete workflows on top of a Repository.
type Service struct {
	store        Repository
	generateCode CodeGenerator
	baseURL      string
	maxAttempts  int
	timeout      time.Duration
	logger       *zap.Logger
}

// NewService creates a Service. Zero values in cfg fall back to the defaults.
func NewService(store Repository, generator CodeGenerator, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}

	return &Service{
		store:        store,
		generateCode: generator,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts:  cfg.MaxAttempts,
		timeout:      cfg.StoreTimeout,
		logger:       logger,
	}
}

// ShortURL builds the public short URL for a code.
func (s *Service) ShortURL(code Code) string {
	return s.baseURL + "/" + string(code)
}

// Shorten validates longURL and stores it under a freshly generated code.
// Colliding codes are regenerated up to the configured attempt limit.
func (s *Service) Shorten(ctx context.Context, longURL string) (*ShortLink, error) {
	target, err := ValidateURL(longURL)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := Code(s.generateCode())

		link, err := s.create(ctx, code, target)
		if err == nil {
			return s.withShortURL(link), nil
		}

		if !errors.Is(err, ErrDuplicateKey) {
			return nil, fmt.Errorf("create short link: %w", err)
		}

		s.logger.Warn("short code collision, regenerating",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt),
		)
	}

	return nil, fmt.Errorf("no free short code after %d attempts: %w", s.maxAttempts, ErrDuplicateKey)
}

// Resolve returns the link stored under code. The code is matched exactly.
func (s *Service) Resolve(ctx context.Context, code Code) (*ShortLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.withShortURL(link), nil
}

// List returns all links, newest first.
func (s *Service) List(ctx context.Context) ([]*ShortLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	links, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, link := range links {
		s.withShortURL(link)
	}

	return links, nil
}

// Delete removes the link identified by handle and returns it.
// Handles that are not UUIDs cannot exist, so they are reported as ErrNotFound.
// Any accepted UUID spelling is reduced to the lowercase hyphenated form
// every backend stores.
func (s *Service) Delete(ctx context.Context, handle Handle) (*ShortLink, error) {
	id, err := uuid.Parse(string(handle))
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	link, err := s.store.DeleteByHandle(ctx, Handle(id.String()))
	if err != nil {
		return nil, err
	}

	return s.withShortURL(link), nil
}

func (s *Service) create(ctx context.Context, code Code, longURL string) (*ShortLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.store.Create(ctx, code, longURL)
}

func (s *Service) withShortURL(link *ShortLink) *ShortLink {
	link.ShortURL = s.ShortURL(link.Code)

	return link
}
