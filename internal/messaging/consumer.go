package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes a single event. A returned error nacks the message.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer decodes the JSON messages of one topic into T and hands them to a Handler.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handle     Handler[T]
	logger     *zap.Logger

	stop context.CancelFunc
	wg   sync.WaitGroup
}

func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handle:     handler,
		logger:     logger.With(zap.String("topic", topic)),
	}
}

func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in the background until ctx is
// cancelled, the subscription closes or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	runCtx, stop := context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(runCtx, c.topic)
	if err != nil {
		stop()

		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	c.stop = stop

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		c.run(runCtx, msgs)
	}()

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			if err := c.process(ctx, msg); err != nil {
				c.logger.Error("event rejected", zap.String("message_uuid", msg.UUID), zap.Error(err))
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) error {
	event := new(T)
	if err := json.Unmarshal(msg.Payload, event); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := c.handle(ctx, event); err != nil {
		return fmt.Errorf("handle: %w", err)
	}

	c.logger.Debug("event processed", zap.String("message_uuid", msg.UUID))

	return nil
}

// Shutdown stops the consumer and waits for the in-flight message. Calling it
// before Start is a no-op.
func (c *Consumer[T]) Shutdown() error {
	if c.stop != nil {
		c.stop()
	}

	c.wg.Wait()

	return nil
}
