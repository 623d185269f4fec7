package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/azizikri/streak-rewards/internal/config"
	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/usecase"
	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

var ErrReplyTimeout = errors.New("timeout waiting for response")

// Gateway sends requests to the claim workers and waits for the reply on this
// instance's reply topic. Records are keyed by recipient, so one worker handles
// every request for a given recipient in order.
type Gateway struct {
	client      *kgo.Client
	cfg         *config.Config
	logger      *zap.Logger
	timeout     time.Duration
	pendingResp sync.Map
}

func NewGateway(cfg *config.Config, client *kgo.Client, logger *zap.Logger) *Gateway {
	return &Gateway{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		timeout: cfg.ReplyTimeout(),
	}
}

func (g *Gateway) ClaimReward(ctx context.Context, recipientID string) (*domain.RewardRecord, error) {
	req := g.newRequest()
	req.RecipientID = recipientID

	resp, err := g.requestReply(ctx, TopicAirdropRequest, []byte(recipientID), req)
	if err != nil {
		return nil, err
	}
	if resp.Status == StatusError {
		return nil, errorFromCode(resp.ErrorCode, resp.ErrorMessage)
	}
	return resp.Record, nil
}

func (g *Gateway) Claim(ctx context.Context, claim domain.ClaimRequest) (*domain.ClaimOutcome, error) {
	req := g.newRequest()
	req.RecipientID = claim.RecipientID
	req.Milestone = claim.Milestone
	req.Year = claim.Year
	req.AuthProof = claim.AuthProof

	resp, err := g.requestReply(ctx, TopicClaimRequest, []byte(claim.RecipientID), req)
	if err != nil {
		return nil, err
	}
	if resp.Status == StatusError {
		return nil, errorFromCode(resp.ErrorCode, resp.ErrorMessage)
	}
	if resp.Outcome != nil && resp.OutcomeError != "" {
		resp.Outcome.Err = errorFromCode(resp.OutcomeError, resp.Outcome.FailureReason)
	}
	return resp.Outcome, nil
}

func (g *Gateway) RewardStats(ctx context.Context) (*domain.RewardStats, error) {
	req := g.newRequest()

	resp, err := g.requestReply(ctx, TopicStatsRequest, nil, req)
	if err != nil {
		return nil, err
	}
	if resp.Status == StatusError {
		return nil, errorFromCode(resp.ErrorCode, resp.ErrorMessage)
	}
	return resp.Stats, nil
}

func (g *Gateway) newRequest() RequestPayload {
	return RequestPayload{
		SchemaVersion: 1,
		CorrelationID: uuid.New().String(),
		ReplyTo:       ReplyTopic(g.cfg.KafkaInstanceID),
	}
}

func (g *Gateway) requestReply(ctx context.Context, topic string, key []byte, req RequestPayload) (*ResponsePayload, error) {
	respChan := make(chan *ResponsePayload, 1)
	g.pendingResp.Store(req.CorrelationID, respChan)
	defer g.pendingResp.Delete(req.CorrelationID)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", topic, err)
	}
	record := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: payload,
	}

	if err := g.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case resp := <-respChan:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("%w on %s after %s", ErrReplyTimeout, topic, g.timeout)
	}
}

func (g *Gateway) HandleResponse(payload []byte) {
	var resp ResponsePayload
	if err := json.Unmarshal(payload, &resp); err != nil {
		g.logger.Warn("failed to decode response payload", zap.Error(err))
		return
	}

	if ch, ok := g.pendingResp.Load(resp.CorrelationID); ok {
		select {
		case ch.(chan *ResponsePayload) <- &resp:
		default:
		}
		return
	}

	g.logger.Debug("no pending response", zap.String("correlation_id", resp.CorrelationID))
}

var _ usecase.RewardGateway = (*Gateway)(nil)
