package service

import (
	"context"
	"encoding/json"
	"log"

	"studio-assistant-be/internal/dto"
	"studio-assistant-be/pkg/events"
	pktNats "studio-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishChange(ctx context.Context, docType, businessID string) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	natsPub   *pktNats.Publisher
}

// NewPublisherService announces row changes on the in-process topic
// and, when a NATS publisher is supplied, mirrors them onto the
// knowledge stream for sibling instances.
func NewPublisherService(topicName string, pubSub *gochannel.GoChannel, natsPub *pktNats.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		natsPub:   natsPub,
	}
}

func (ps *publisherService) PublishChange(ctx context.Context, docType, businessID string) error {
	payload, err := json.Marshal(dto.KnowledgeChangedMessage{
		Type:       docType,
		BusinessId: businessID,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return err
	}

	// Local indexing already got the message; a bus failure is logged
	// rather than surfaced to the writer.
	if ps.natsPub != nil {
		if err := ps.natsPub.Publish(ctx, events.NewKnowledgeChanged(docType, businessID)); err != nil {
			log.Printf("[WARN] Failed to mirror change event to NATS: %v", err)
		}
	}
	return nil
}
