// Package gpubsub backs messaging.BufferedPublisher with Google Cloud Pub/Sub.
package gpubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/marcodd23/go-serving-stmt/pkg/messaging"
	"google.golang.org/api/option"
)

// NewPubSubBufferedPublisherFactory - factory that create a pubsub client and then initialize a messaging.BufferedPublisher.
// The client honours PUBSUB_EMULATOR_HOST.
func NewPubSubBufferedPublisherFactory(
	ctx context.Context,
	projectID string,
	publishConfig messaging.TopicPublishConfig,
	opts ...option.ClientOption) (messaging.BufferedPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, messaging.NewMessagingErrorCode(messaging.ErrorInitializingClient, err)
	}

	return messaging.NewBufferedPublisher(&pubSubClient{client: client}, publishConfig)
}

// pubSubClient - messaging.Client implementation for PubSub.
type pubSubClient struct {
	client *pubsub.Client
}

func (w *pubSubClient) Topic(id string) messaging.Topic {
	return &pubSubTopic{topic: w.client.Topic(id)}
}

func (w *pubSubClient) Close() error {
	return w.client.Close()
}

// pubSubTopic - messaging.Topic implementation for PubSub.
type pubSubTopic struct {
	topic *pubsub.Topic
}

func (w *pubSubTopic) Publish(ctx context.Context, msg messaging.Message) messaging.PublishResult {
	return w.topic.Publish(ctx, &pubsub.Message{
		Attributes: msg.GetAttributes(),
		Data:       msg.GetPayload(),
	})
}

func (w *pubSubTopic) Stop() {
	w.topic.Stop()
}

func (w *pubSubTopic) Flush() {
	w.topic.Flush()
}

func (w *pubSubTopic) String() string {
	return w.topic.String()
}

func (w *pubSubTopic) ConfigPublishSettings(config messaging.TopicPublishConfig) {
	w.topic.PublishSettings.CountThreshold = int(config.BatchSize)
	w.topic.PublishSettings.DelayThreshold = config.FlushDelayThreshold
}
