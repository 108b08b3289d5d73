package service

import (
	"context"
	"encoding/json"
	"log"

	"studio-assistant-be/internal/dto"
	"studio-assistant-be/pkg/indexsync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService listens for knowledge change messages and re-indexes
// the affected row. Heavy work (chunking, embedding) happens here so
// writers never wait on the index.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	orchestrator *indexsync.Orchestrator
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	orchestrator *indexsync.Orchestrator,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		orchestrator: orchestrator,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.KnowledgeChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if payload.Type == "" || payload.BusinessId == "" {
		log.Printf("[ERROR] Knowledge change message missing type or business_id")
		msg.Ack()
		return
	}

	log.Printf("[INFO] Re-indexing %s/%s", payload.Type, payload.BusinessId)

	if err := cs.orchestrator.SyncOne(ctx, payload.Type, payload.BusinessId); err != nil {
		log.Printf("[ERROR] Failed to sync %s/%s: %v", payload.Type, payload.BusinessId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[SUCCESS] Indexed %s/%s", payload.Type, payload.BusinessId)
	msg.Ack()
}
