package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/azizikri/streak-rewards/internal/config"
	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/usecase"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Consumer serves gateway requests. Records within a partition are handled one at
// a time, which serialises claims for the same recipient.
type Consumer struct {
	client  *kgo.Client
	cfg     *config.Config
	service usecase.RewardGateway
	logger  *zap.Logger
	now     func() time.Time
	ready   chan struct{}
}

func NewConsumer(cfg *config.Config, client *kgo.Client, service usecase.RewardGateway, logger *zap.Logger) *Consumer {
	return &Consumer{
		client:  client,
		cfg:     cfg,
		service: service,
		logger:  logger,
		now:     time.Now,
		ready:   make(chan struct{}),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	close(c.ready)
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, e := range errs {
				c.logger.Warn("consumer poll error", zap.String("topic", e.Topic), zap.Int32("partition", e.Partition), zap.Error(e.Err))
			}
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			c.processRecord(ctx, record)
		}

		if err := c.client.CommitRecords(ctx, fetches.Records()...); err != nil {
			c.logger.Warn("failed to commit records", zap.Error(err))
		}
	}
}

// StartRetry moves records from the retry topics back onto their request topic
// once their backoff has elapsed.
func (c *Consumer) StartRetry(ctx context.Context) {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()

			if nextAt, ok := retryNextAt(record); ok && c.now().Before(nextAt) {
				select {
				case <-time.After(nextAt.Sub(c.now())):
				case <-ctx.Done():
					return
				}
			}

			mainTopic := strings.TrimSuffix(record.Topic, TopicRetrySuffix) + TopicRequestSuffix
			newRecord := &kgo.Record{
				Topic:   mainTopic,
				Key:     record.Key,
				Value:   record.Value,
				Headers: record.Headers,
			}
			if err := c.client.ProduceSync(ctx, newRecord).FirstErr(); err != nil {
				c.logger.Warn("failed to requeue retry record", zap.String("topic", mainTopic), zap.Error(err))
			}
		}
		if err := c.client.CommitRecords(ctx, fetches.Records()...); err != nil {
			c.logger.Warn("failed to commit retry records", zap.Error(err))
		}
	}
}

func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) {
	req, resp, err := c.handle(ctx, record.Topic, record.Value)
	if err != nil && !retryable(err) {
		c.sendError(ctx, record, ErrCodeInvalidRequest, err.Error())
		return
	}
	if err != nil {
		attempt := retryAttempt(record)
		if attempt < MaxRetryAttempts {
			c.scheduleRetry(ctx, record, attempt+1, err)
			return
		}
		c.logger.Warn("retries exhausted",
			zap.String("topic", record.Topic),
			zap.String("correlation_id", req.CorrelationID),
			zap.Error(err))
	}
	c.sendResponse(ctx, req.ReplyTo, resp)
}

// handle runs one request. A non-nil error is either a malformed payload or a
// transient failure worth retrying; resp is always the reply to send otherwise.
func (c *Consumer) handle(ctx context.Context, topic string, value []byte) (RequestPayload, *ResponsePayload, error) {
	var req RequestPayload
	if err := json.Unmarshal(value, &req); err != nil {
		return req, nil, err
	}

	switch topic {
	case TopicAirdropRequest:
		record, err := c.service.ClaimReward(ctx, req.RecipientID)
		if err != nil {
			return req, errorResponse(req.CorrelationID, errorCode(err), err.Error()), retryErr(err)
		}
		resp := successResponse(req.CorrelationID)
		resp.Record = record
		return req, resp, nil

	case TopicClaimRequest:
		outcome, err := c.service.Claim(ctx, domain.ClaimRequest{
			RecipientID: req.RecipientID,
			Milestone:   req.Milestone,
			Year:        req.Year,
			AuthProof:   req.AuthProof,
		})
		if err != nil {
			return req, errorResponse(req.CorrelationID, errorCode(err), err.Error()), retryErr(err)
		}
		resp := successResponse(req.CorrelationID)
		resp.Outcome = outcome
		if outcome.Err != nil {
			resp.OutcomeError = errorCode(outcome.Err)
		}
		return req, resp, retryErr(outcome.Err)

	case TopicStatsRequest:
		stats, err := c.service.RewardStats(ctx)
		if err != nil {
			return req, errorResponse(req.CorrelationID, errorCode(err), err.Error()), retryErr(domain.ErrLedgerUnavailable)
		}
		resp := successResponse(req.CorrelationID)
		resp.Stats = stats
		return req, resp, nil
	}

	return req, errorResponse(req.CorrelationID, ErrCodeInvalidRequest, "unknown topic "+topic), nil
}

func retryErr(err error) error {
	if err != nil && retryable(err) {
		return err
	}
	return nil
}

func (c *Consumer) scheduleRetry(ctx context.Context, record *kgo.Record, attempt int, cause error) {
	retryTopic := strings.TrimSuffix(record.Topic, TopicRequestSuffix) + TopicRetrySuffix
	nextAt := c.now().Add(time.Duration(attempt) * RetryBackoff)

	headers := make([]kgo.RecordHeader, 0, len(record.Headers)+3)
	for _, h := range record.Headers {
		if h.Key != RetryHeaderNextAt && h.Key != RetryHeaderAttempt && h.Key != ErrorHeaderKey {
			headers = append(headers, h)
		}
	}
	headers = append(headers,
		kgo.RecordHeader{Key: RetryHeaderNextAt, Value: []byte(nextAt.UTC().Format(time.RFC3339))},
		kgo.RecordHeader{Key: RetryHeaderAttempt, Value: []byte(strconv.Itoa(attempt))},
		kgo.RecordHeader{Key: ErrorHeaderKey, Value: []byte(cause.Error())},
	)

	retry := &kgo.Record{Topic: retryTopic, Key: record.Key, Value: record.Value, Headers: headers}
	if err := c.client.ProduceSync(ctx, retry).FirstErr(); err != nil {
		c.logger.Error("failed to schedule retry", zap.String("topic", retryTopic), zap.Error(err))
	}
}

func (c *Consumer) sendResponse(ctx context.Context, topic string, resp *ResponsePayload) {
	if topic == "" || resp == nil {
		return
	}
	payload, _ := json.Marshal(resp)
	record := &kgo.Record{
		Topic: topic,
		Value: payload,
	}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		c.logger.Warn("failed to send response", zap.String("topic", topic), zap.Error(err))
	}
}

func (c *Consumer) sendError(ctx context.Context, record *kgo.Record, code, message string) {
	var req RequestPayload
	_ = json.Unmarshal(record.Value, &req)

	resp := errorResponse(req.CorrelationID, code, message)
	c.sendResponse(ctx, req.ReplyTo, resp)

	dlqTopic := record.Topic + TopicDLQSuffix
	dlqRecord := &kgo.Record{
		Topic: dlqTopic,
		Key:   record.Key,
		Value: record.Value,
		Headers: []kgo.RecordHeader{
			{Key: ErrorHeaderKey, Value: []byte(message)},
		},
	}
	if err := c.client.ProduceSync(ctx, dlqRecord).FirstErr(); err != nil {
		c.logger.Warn("failed to dead-letter record", zap.String("topic", dlqTopic), zap.Error(err))
	}
}

func retryNextAt(record *kgo.Record) (time.Time, bool) {
	for _, header := range record.Headers {
		if header.Key != RetryHeaderNextAt {
			continue
		}
		nextAt, err := time.Parse(time.RFC3339, string(header.Value))
		if err != nil {
			return time.Time{}, false
		}
		return nextAt, true
	}

	return time.Time{}, false
}

func retryAttempt(record *kgo.Record) int {
	for _, header := range record.Headers {
		if header.Key == RetryHeaderAttempt {
			n, err := strconv.Atoi(string(header.Value))
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func successResponse(correlationID string) *ResponsePayload {
	return &ResponsePayload{
		SchemaVersion: 1,
		CorrelationID: correlationID,
		Status:        StatusSuccess,
	}
}

func errorResponse(correlationID, code, message string) *ResponsePayload {
	return &ResponsePayload{
		SchemaVersion: 1,
		CorrelationID: correlationID,
		Status:        StatusError,
		ErrorCode:     code,
		ErrorMessage:  message,
	}
}
