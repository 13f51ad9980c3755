// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/mailer"
	"ai-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventPublisher is the outbound side of the lead hand-off (NATS).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	publisher   EventPublisher
	mailer      mailer.IEmailService
	notifyEmail string
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	publisher EventPublisher,
	emailService mailer.IEmailService,
	notifyEmail string,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		publisher:   publisher,
		mailer:      emailService,
		notifyEmail: notifyEmail,
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

// processMessage fans one captured lead out to NATS and the sales inbox.
// Both deliveries are best effort: the lead stays flagged on the session
// either way, so the message is always acked.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.LeadCapturedMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal lead message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing captured lead %s (session %s)", payload.LeadID, payload.SessionID)

	if cs.publisher != nil {
		event := events.NewLeadCaptured(
			payload.LeadID,
			payload.SessionID,
			payload.Name,
			payload.Company,
			payload.Email,
			payload.Phone,
			payload.PreferredTime,
			payload.Summary,
		)
		if err := cs.publisher.Publish(ctx, event); err != nil {
			log.Printf("[ERROR] Failed to publish lead %s to event bus: %v", payload.LeadID, err)
		}
	}

	if cs.mailer != nil && cs.notifyEmail != "" {
		details := mailer.LeadDetails{
			LeadID:        payload.LeadID,
			SessionID:     payload.SessionID,
			Name:          payload.Name,
			Company:       payload.Company,
			Email:         payload.Email,
			Phone:         payload.Phone,
			PreferredTime: payload.PreferredTime,
			Summary:       payload.Summary,
		}
		if err := cs.mailer.SendLeadNotification(cs.notifyEmail, details); err != nil {
			log.Printf("[ERROR] Failed to send lead notification for %s: %v", payload.LeadID, err)
		}
	}

	log.Printf("[SUCCESS] Lead %s handed off", payload.LeadID)
	msg.Ack()
}
