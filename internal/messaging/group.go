package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is anything the group can start and stop.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs consumers that share one subscriber and owns that
// subscriber's lifetime.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger
	consumers  []Runnable
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{subscriber: subscriber, logger: logger}
}

func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

func (g *ConsumerGroup) Len() int {
	return len(g.consumers)
}

// Start starts consumers in the order they were added. On failure the ones
// already running are stopped again.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			_ = stopAll(g.consumers[:i])

			return fmt.Errorf("start consumer %d: %w", i, err)
		}
	}

	g.logger.Info("consumer group started", zap.Int("count", len(g.consumers)))

	return nil
}

// Shutdown stops every consumer, then closes the subscriber.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("stopping consumer group", zap.Int("count", len(g.consumers)))

	err := stopAll(g.consumers)

	if closeErr := g.subscriber.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close subscriber: %w", closeErr))
	}

	return err
}

// stopAll shuts consumers down newest first and joins their errors.
func stopAll(consumers []Runnable) error {
	var errs []error

	for i := len(consumers) - 1; i >= 0; i-- {
		if err := consumers[i].Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
