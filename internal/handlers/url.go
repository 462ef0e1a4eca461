package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

const (
	MessageShortened     = "URL shortened successfully"
	MessageListed        = "URLs retrieved successfully"
	MessageDeleted       = "URL deleted"
	MessageShortNotFound = "Short URL not found"
	MessageNotFound      = "URL not found"
)

// LinkService is the subset of shortener.Service the HTTP layer needs.
type LinkService interface {
	Shorten(ctx context.Context, longURL string) (*shortener.ShortLink, error)
	Resolve(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error)
	List(ctx context.Context) ([]*shortener.ShortLink, error)
	Delete(ctx context.Context, handle shortener.Handle) (*shortener.ShortLink, error)
}

// LinkHandler handles short link operations.
type LinkHandler struct {
	service LinkService
	events  *events.Publishers
	logger  *zap.Logger
	now     func() time.Time
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(service LinkService, publishers *events.Publishers, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service: service,
		events:  publishers,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *LinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	var longURL string
	if req.Body != nil {
		longURL = req.Body.OriginalURL
	}

	link, err := h.service.Shorten(ctx, longURL)
	if err != nil {
		var inputErr *shortener.InputError
		if errors.As(err, &inputErr) {
			h.logger.Debug("rejected url", zap.String("reason", inputErr.Msg))

			return nil, huma.Error400BadRequest(inputErr.Msg)
		}

		return nil, h.serverError("shorten", err)
	}

	if err := h.events.LinkCreated(context.WithoutCancel(ctx), events.NewLinkCreated(link)); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("shortId", string(link.Code)),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{Location: link.ShortURL}
	resp.Body.Success = true
	resp.Body.Message = MessageShortened
	resp.Body.Data = LinkData{
		ShortID:  string(link.Code),
		LongURL:  link.LongURL,
		ShortURL: link.ShortURL,
	}

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.service.Resolve(ctx, shortener.Code(req.ShortID))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound(MessageShortNotFound)
		}

		return nil, h.serverError("redirect", err)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.LongURL,
	}, nil
}

func (h *LinkHandler) List(ctx context.Context, _ *struct{}) (*ListResponse, error) {
	links, err := h.service.List(ctx)
	if err != nil {
		return nil, h.serverError("list", err)
	}

	resp := &ListResponse{}
	resp.Body.Success = true
	resp.Body.Message = MessageListed
	resp.Body.URLs = make([]LinkItem, 0, len(links))

	for _, link := range links {
		resp.Body.URLs = append(resp.Body.URLs, LinkItem{
			ID:        string(link.Handle),
			ShortID:   string(link.Code),
			LongURL:   link.LongURL,
			ShortURL:  link.ShortURL,
			CreatedAt: link.CreatedAt,
		})
	}

	return resp, nil
}

func (h *LinkHandler) Delete(ctx context.Context, req *DeleteRequest) (*DeleteResponse, error) {
	link, err := h.service.Delete(ctx, shortener.Handle(req.ID))
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound(MessageNotFound)
		}

		return nil, h.serverError("delete", err)
	}

	if err := h.events.LinkDeleted(context.WithoutCancel(ctx), events.NewLinkDeleted(link, h.now())); err != nil {
		h.logger.Error("failed to publish link deleted event",
			zap.String("shortId", string(link.Code)),
			zap.Error(err),
		)
	}

	resp := &DeleteResponse{}
	resp.Body.Success = true
	resp.Body.Message = MessageDeleted
	resp.Body.ID = string(link.Handle)

	return resp, nil
}

// serverError logs the cause and hides it from the client.
func (h *LinkHandler) serverError(op string, err error) error {
	h.logger.Error("request failed", zap.String("operation", op), zap.Error(err))

	return huma.Error500InternalServerError(MessageServerError)
}
