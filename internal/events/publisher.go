package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlink/internal/messaging"
)

// Publishers bundles the typed publish functions for every lifecycle topic.
type Publishers struct {
	LinkCreated messaging.Publish[LinkCreated]
	LinkDeleted messaging.Publish[LinkDeleted]
}

// NewPublishers binds each topic to publisher.
func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		LinkCreated: messaging.NewPublishFunc[LinkCreated](publisher, TopicLinkCreated),
		LinkDeleted: messaging.NewPublishFunc[LinkDeleted](publisher, TopicLinkDeleted),
	}
}

// Discard returns Publishers that drop every event.
func Discard() *Publishers {
	return &Publishers{
		LinkCreated: func(context.Context, *LinkCreated) error { return nil },
		LinkDeleted: func(context.Context, *LinkDeleted) error { return nil },
	}
}
