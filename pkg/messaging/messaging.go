// Package messaging publishes messages to a broker topic in batches, retrying failed messages.
package messaging

import (
	"context"
	"time"
)

const (
	DefaultBatchSize            = 100
	DefaultFlushDelayThreshold  = 10 * time.Millisecond
	DefaultMaxRetryCount        = 3
	DefaultInitialRetryInterval = 50 * time.Millisecond
)

// Message - broker message payload interface.
type Message interface {
	GetMsgRefId() string
	GetPayload() []byte
	GetAttributes() map[string]string
}

// Client - broker client wrapper interface.
type Client interface {
	Topic(id string) Topic
	Close() error
}

// Topic - topic wrapper interface.
type Topic interface {
	Publish(ctx context.Context, msg Message) PublishResult
	Stop()
	Flush()
	String() string
	ConfigPublishSettings(config TopicPublishConfig)
}

// PublishResult - publish result wrapper interface.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
	Ready() <-chan struct{}
}

// TopicPublishConfig - configuration struct for the publisher.
type TopicPublishConfig struct {
	BatchSize            int32
	FlushDelayThreshold  time.Duration
	InitialRetryInterval time.Duration
	MaxRetryCount        int16
}

// WithDefaults returns the config with every unset value replaced by its default.
func (c TopicPublishConfig) WithDefaults() TopicPublishConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushDelayThreshold <= 0 {
		c.FlushDelayThreshold = DefaultFlushDelayThreshold
	}
	if c.InitialRetryInterval <= 0 {
		c.InitialRetryInterval = DefaultInitialRetryInterval
	}
	if c.MaxRetryCount <= 0 {
		c.MaxRetryCount = DefaultMaxRetryCount
	}

	return c
}

// MsgPayload - Message implementation.
type MsgPayload struct {
	MessageId  string
	Data       []byte
	Attributes map[string]string
}

// GetMsgRefId - Get message id
func (msg *MsgPayload) GetMsgRefId() string {
	return msg.MessageId
}

// GetPayload - Get message payload
func (msg *MsgPayload) GetPayload() []byte {
	return msg.Data
}

// GetAttributes - Get message attributes
func (msg *MsgPayload) GetAttributes() map[string]string {
	return msg.Attributes
}
