package messaging

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// NewInProcess returns a pub/sub that only delivers within this process.
// The same value serves as both publisher and subscriber.
func NewInProcess(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
}

// NewRedisPublisher publishes to Redis streams named after the topic.
func NewRedisPublisher(client redis.UniversalClient, logger watermill.LoggerAdapter) (message.Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client:     client,
		Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create redis stream publisher: %w", err)
	}

	return publisher, nil
}

// NewRedisSubscriber reads Redis streams as a member of consumerGroup, so
// several processes can share the work.
func NewRedisSubscriber(
	client redis.UniversalClient,
	consumerGroup string,
	logger watermill.LoggerAdapter,
) (message.Subscriber, error) {
	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: consumerGroup,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create redis stream subscriber: %w", err)
	}

	return subscriber, nil
}
