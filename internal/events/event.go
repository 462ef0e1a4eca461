// Package events defines the link lifecycle events and their consumers.
package events

import (
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

const (
	TopicLinkCreated = "link.created"
	TopicLinkDeleted = "link.deleted"
)

// LinkCreated is emitted after a short link has been stored.
type LinkCreated struct {
	Handle    string    `json:"handle"`
	ShortID   string    `json:"shortId"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// LinkDeleted is emitted after a short link has been removed.
type LinkDeleted struct {
	Handle    string    `json:"handle"`
	ShortID   string    `json:"shortId"`
	DeletedAt time.Time `json:"deletedAt"`
}

func NewLinkCreated(link *shortener.ShortLink) *LinkCreated {
	return &LinkCreated{
		Handle:    string(link.Handle),
		ShortID:   string(link.Code),
		LongURL:   link.LongURL,
		CreatedAt: link.CreatedAt,
	}
}

func NewLinkDeleted(link *shortener.ShortLink, at time.Time) *LinkDeleted {
	return &LinkDeleted{
		Handle:    string(link.Handle),
		ShortID:   string(link.Code),
		DeletedAt: at.UTC(),
	}
}
