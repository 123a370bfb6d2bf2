package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/messaging"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx"
)

// ChangeAction tells what happened to the statements of a feature view.
type ChangeAction string

const (
	ActionReplaced ChangeAction = "REPLACED"
	ActionDeleted  ChangeAction = "DELETED"
)

// Attribute keys of a change message.
const (
	AttrAction             = "action"
	AttrFeatureStoreID     = "featureStoreId"
	AttrFeatureViewName    = "featureViewName"
	AttrFeatureViewVersion = "featureViewVersion"
)

// ChangeEvent is published after the statements of a feature view changed, so serving nodes can reload them.
type ChangeEvent struct {
	EventID            string       `json:"eventId"`
	Action             ChangeAction `json:"action"`
	FeatureStoreID     int          `json:"featureStoreId"`
	FeatureViewName    string       `json:"featureViewName"`
	FeatureViewVersion int          `json:"featureViewVersion"`
	Count              int64        `json:"count"`
	Timestamp          time.Time    `json:"timestamp"`
}

func newChangeEvent(view FeatureView, action ChangeAction, count int64) ChangeEvent {
	return ChangeEvent{
		EventID:            utilx.GenerateUUID().String(),
		Action:             action,
		FeatureStoreID:     view.FeatureStoreID,
		FeatureViewName:    view.Name,
		FeatureViewVersion: view.Version,
		Count:              count,
		Timestamp:          time.Now().UTC(),
	}
}

// toMessage encodes the event as JSON, with its identity repeated in the attributes for subscription filters.
func (e ChangeEvent) toMessage() (messaging.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, messaging.NewMessagingErrorCode(messaging.ErrorSerializingJsonMessage, err)
	}

	return &messaging.MsgPayload{
		MessageId: e.EventID,
		Data:      data,
		Attributes: map[string]string{
			AttrAction:             string(e.Action),
			AttrFeatureStoreID:     strconv.Itoa(e.FeatureStoreID),
			AttrFeatureViewName:    e.FeatureViewName,
			AttrFeatureViewVersion: strconv.Itoa(e.FeatureViewVersion),
		},
	}, nil
}

// NotifyingStore is a Store that publishes a ChangeEvent after every successful write.
// A failed publish is logged and never fails the write, which is already committed.
type NotifyingStore struct {
	Store
	publisher messaging.BufferedPublisher
	topic     string
}

func NewNotifyingStore(store Store, publisher messaging.BufferedPublisher, topic string) *NotifyingStore {
	return &NotifyingStore{Store: store, publisher: publisher, topic: topic}
}

func (s *NotifyingStore) Replace(ctx context.Context, view FeatureView, stmts []*servingstmt.ServingPreparedStatement) error {
	if err := s.Store.Replace(ctx, view, stmts); err != nil {
		return err
	}

	var count int64
	for _, stmt := range stmts {
		if stmt != nil {
			count++
		}
	}

	s.notify(ctx, newChangeEvent(view, ActionReplaced, count))

	return nil
}

func (s *NotifyingStore) Delete(ctx context.Context, view FeatureView) (int64, error) {
	deleted, err := s.Store.Delete(ctx, view)
	if err != nil {
		return deleted, err
	}

	s.notify(ctx, newChangeEvent(view, ActionDeleted, deleted))

	return deleted, nil
}

func (s *NotifyingStore) notify(ctx context.Context, event ChangeEvent) {
	msg, err := event.toMessage()
	if err != nil {
		logx.GetLogger().LogError(ctx, "error encoding catalog change event", err)
		return
	}

	res, err := s.publisher.Publish(ctx, s.topic, []messaging.Message{msg})
	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error publishing catalog change event %s", event.EventID), err)
		return
	}

	for _, failed := range res.Failed() {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("catalog change event %s not published after %d attempts", failed.MsgRefId, failed.Attempts), failed.Err)
	}
}
