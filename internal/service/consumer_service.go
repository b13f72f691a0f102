package service

import (
	"context"
	"encoding/json"

	"voicenotes-be/internal/dto"
	"voicenotes-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// NoteEventDelivery pushes a note lifecycle event to an owner's connected
// clients. Implemented by the websocket hub.
type NoteEventDelivery interface {
	Send(userID uuid.UUID, event dto.NoteEventMessage)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  NoteEventDelivery
	log       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery NoteEventDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event dto.NoteEventMessage
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.log.Error("Consumer", "Failed to unmarshal note event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // ack invalid messages to prevent infinite retry
		return
	}

	cs.delivery.Send(event.UserId, event)

	cs.log.Info("Consumer", "Delivered note event", map[string]interface{}{
		"type": event.Type, "note_id": event.NoteId, "user_id": event.UserId,
	})
	msg.Ack()
}
