package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
)

// RegisterRoutes registers the short link routes with per-endpoint rate limits.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "shorten",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Stores the URL under a new short id. Shortening the same URL twice yields two links.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusOK,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
				},
			},
		},
	}, h.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "list-urls",
		Method:      http.MethodGet,
		Path:        "/urls",
		Summary:     "List short URLs",
		Description: "Lists every stored link, newest first.",
		Tags:        []string{"URLs"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "delete-url",
		Method:      http.MethodDelete,
		Path:        "/urls/{id}",
		Summary:     "Delete short URL",
		Description: "Deletes a link by its record handle. The short id stops resolving immediately.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
				},
			},
		},
	}, h.Delete)

	// chi prefers the static routes above over this pattern.
	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{shortId}",
		Summary:       "Redirect to original URL",
		Description:   "Redirects to the original URL associated with the short id.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusFound,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, h.Redirect)
}
