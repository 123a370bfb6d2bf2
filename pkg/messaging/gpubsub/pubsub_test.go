package gpubsub_test

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/marcodd23/go-serving-stmt/pkg/messaging"
	"github.com/marcodd23/go-serving-stmt/pkg/messaging/gpubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	projectID = "test-project"
	topicID   = "catalog-changes"
)

// startFakePubSub runs an in-process Pub/Sub server with the test topic, returning client options to reach it.
func startFakePubSub(ctx context.Context, t *testing.T) (*pstest.Server, []option.ClientOption) {
	t.Helper()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	newConnOptions := func() []option.ClientOption {
		conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		require.NoError(t, err)
		return []option.ClientOption{option.WithGRPCConn(conn)}
	}

	admin, err := pubsub.NewClient(ctx, projectID, newConnOptions()...)
	require.NoError(t, err)
	_, err = admin.CreateTopic(ctx, topicID)
	require.NoError(t, err)
	require.NoError(t, admin.Close())

	return srv, newConnOptions()
}

func TestPubSubBufferedPublisher(t *testing.T) {
	ctx := context.Background()
	srv, opts := startFakePubSub(ctx, t)

	bp, err := gpubsub.NewPubSubBufferedPublisherFactory(ctx, projectID, messaging.TopicPublishConfig{BatchSize: 2}, opts...)
	require.NoError(t, err)

	batch := []messaging.Message{
		&messaging.MsgPayload{MessageId: "m1", Data: []byte(`{"action":"REPLACED"}`), Attributes: map[string]string{"action": "REPLACED"}},
		&messaging.MsgPayload{MessageId: "m2", Data: []byte(`{"action":"DELETED"}`), Attributes: map[string]string{"action": "DELETED"}},
	}

	res, err := bp.Publish(ctx, topicID, batch)
	require.NoError(t, err)
	assert.Empty(t, res.Failed())
	for _, r := range res.Results {
		assert.NotEmpty(t, r.ServerMsgId)
	}

	msgs := srv.Messages()
	require.Len(t, msgs, 2)

	actions := map[string]string{}
	for _, m := range msgs {
		actions[m.Attributes["action"]] = string(m.Data)
	}
	assert.Equal(t, map[string]string{
		"REPLACED": `{"action":"REPLACED"}`,
		"DELETED":  `{"action":"DELETED"}`,
	}, actions)

	require.NoError(t, bp.Close(ctx))
}

func TestPubSubBufferedPublisherUnknownTopic(t *testing.T) {
	ctx := context.Background()
	_, opts := startFakePubSub(ctx, t)

	bp, err := gpubsub.NewPubSubBufferedPublisherFactory(ctx, projectID, messaging.TopicPublishConfig{BatchSize: 1, MaxRetryCount: 1}, opts...)
	require.NoError(t, err)
	defer func() { _ = bp.Close(ctx) }()

	res, err := bp.Publish(ctx, "missing-topic", []messaging.Message{&messaging.MsgPayload{MessageId: "m1", Data: []byte("x")}})
	require.NoError(t, err)
	assert.Len(t, res.Failed(), 1)
}
