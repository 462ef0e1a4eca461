package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// Auditor writes one log line per lifecycle event.
type Auditor struct {
	logger *zap.Logger
}

// NewAuditor creates a new audit log consumer.
func NewAuditor(logger *zap.Logger) *Auditor {
	return &Auditor{logger: logger.Named("audit")}
}

func (a *Auditor) LinkCreated(_ context.Context, event *LinkCreated) error {
	a.logger.Info("link created",
		zap.String("handle", event.Handle),
		zap.String("shortId", event.ShortID),
		zap.String("longUrl", event.LongURL),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (a *Auditor) LinkDeleted(_ context.Context, event *LinkDeleted) error {
	a.logger.Info("link deleted",
		zap.String("handle", event.Handle),
		zap.String("shortId", event.ShortID),
		zap.Time("deletedAt", event.DeletedAt),
	)

	return nil
}

// RegisterAuditConsumers subscribes auditor to every lifecycle topic.
func RegisterAuditConsumers(
	group *messaging.ConsumerGroup,
	subscriber message.Subscriber,
	auditor *Auditor,
	logger *zap.Logger,
) {
	group.Add(messaging.NewConsumer(subscriber, TopicLinkCreated, auditor.LinkCreated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicLinkDeleted, auditor.LinkDeleted, logger))
}
