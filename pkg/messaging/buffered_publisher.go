package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marcodd23/go-serving-stmt/pkg/logx"
)

// BufferedPublisher - interface for the publisher.
type BufferedPublisher interface {
	Publish(ctx context.Context, topicName string, payloadBatch []Message) (*BatchResult, error)
	Close(ctx context.Context) error
}

// BfPublisher - BufferedPublisher implementation. Messages that fail are published again, up to
// MaxRetryCount times, waiting InitialRetryInterval before the first retry and twice as long before each next one.
type BfPublisher struct {
	sync.Mutex
	client        Client
	publishConfig TopicPublishConfig
	Done          chan struct{}
}

// NewBufferedPublisher - Constructor of BufferedPublisher.
func NewBufferedPublisher(client Client, publishConfig TopicPublishConfig) (BufferedPublisher, error) {
	return &BfPublisher{
		client:        client,
		publishConfig: publishConfig.WithDefaults(),
		Done:          make(chan struct{}),
	}, nil
}

// BatchResult - result from batch publishing, one entry per message in the order they were given.
type BatchResult struct {
	Results []*BufferedPublishResult
}

// Failed returns the results of the messages that could not be published.
func (br *BatchResult) Failed() []*BufferedPublishResult {
	var failed []*BufferedPublishResult
	for _, res := range br.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}

	return failed
}

// BufferedPublishResult - published result.
type BufferedPublishResult struct {
	MsgRefId    string
	ServerMsgId string
	Success     bool
	Attempts    int
	Err         error
}

// Publish - publish a batch of messages and wait for the broker to acknowledge them.
func (p *BfPublisher) Publish(ctx context.Context, topicName string, payloadBatch []Message) (*BatchResult, error) {
	p.Lock()
	defer p.Unlock()

	// Non-blocking check if the Done channel is closed
	select {
	case <-p.Done:
		return nil, NewMessagingErrorCode(ErrorPublisherClosed, nil)
	default:
	}

	if int32(len(payloadBatch)) > p.publishConfig.BatchSize {
		return nil, NewMessagingErrorCode(ErrorBatchTooLarge,
			fmt.Errorf("%d messages, batch size %d", len(payloadBatch), p.publishConfig.BatchSize))
	}

	batchResult := &BatchResult{Results: make([]*BufferedPublishResult, len(payloadBatch))}
	pending := make([]int, len(payloadBatch))
	for i, msg := range payloadBatch {
		batchResult.Results[i] = &BufferedPublishResult{MsgRefId: msg.GetMsgRefId()}
		pending[i] = i
	}

	topic := p.client.Topic(topicName)
	topic.ConfigPublishSettings(p.publishConfig)
	defer topic.Stop()

	retryInterval := p.publishConfig.InitialRetryInterval

	for attempt := 0; len(pending) > 0; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return batchResult, nil
			case <-time.After(retryInterval):
			}
			retryInterval *= 2
		}

		pending = p.publishBatch(ctx, topic, payloadBatch, pending, batchResult)

		if attempt >= int(p.publishConfig.MaxRetryCount) {
			break
		}
	}

	return batchResult, nil
}

// publishBatch publishes the pending messages and returns the positions of those that failed.
func (p *BfPublisher) publishBatch(ctx context.Context, topic Topic, batch []Message, pending []int, batchResult *BatchResult) []int {
	results := make(map[int]PublishResult, len(pending))
	for _, i := range pending {
		results[i] = topic.Publish(ctx, batch[i])
	}

	topic.Flush()

	var failed []int
	for _, i := range pending {
		res := batchResult.Results[i]
		res.Attempts++

		serverID, err := results[i].Get(ctx)
		if err != nil {
			logx.GetLogger().LogWarning(ctx, fmt.Sprintf("failed to publish message %s to topic %s (attempt %d)",
				res.MsgRefId, topic.String(), res.Attempts), err)
			res.Err = err
			failed = append(failed, i)

			continue
		}

		res.Success = true
		res.ServerMsgId = serverID
		res.Err = nil
	}

	return failed
}

// Close - close the BufferedPublisher and the broker client.
func (p *BfPublisher) Close(ctx context.Context) error {
	p.Lock()
	defer p.Unlock()

	select {
	case <-p.Done:
		return NewMessagingErrorCode(ErrorPublisherClosed, nil)
	default:
		close(p.Done)

		if err := p.client.Close(); err != nil {
			return NewMessagingErrorCode(ErrorClosingClient, err)
		}

		logx.GetLogger().LogDebug(ctx, "Buffered publisher closed")

		return nil
	}
}
