package kafka

import (
	"context"
	"encoding/json"

	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/usecase"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// EventPublisher writes claim events to TopicClaimEvents without waiting for the
// broker. Delivery failures are logged and never affect the claim.
type EventPublisher struct {
	client *kgo.Client
	logger *zap.Logger
}

func NewEventPublisher(client *kgo.Client, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{client: client, logger: logger}
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.ClaimEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode claim event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	record := &kgo.Record{
		Topic: TopicClaimEvents,
		Key:   []byte(event.RecipientID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("failed to publish claim event",
				zap.String("type", event.Type),
				zap.String("claim_id", event.ClaimID),
				zap.Error(err))
		}
	})
}

var _ usecase.EventPublisher = (*EventPublisher)(nil)
