package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/azizikri/streak-rewards/internal/config"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Topics lists every topic this instance produces to or consumes from.
func Topics(cfg *config.Config) []string {
	topics := make([]string, 0, 3*len(requestTopics)+2)
	topics = append(topics, requestTopics...)
	topics = append(topics, retryTopics...)
	for _, t := range requestTopics {
		topics = append(topics, t+TopicDLQSuffix)
	}
	topics = append(topics, TopicClaimEvents, ReplyTopic(cfg.KafkaInstanceID))
	return topics
}

func EnsureTopics(ctx context.Context, client *kgo.Client, cfg *config.Config, logger *zap.Logger) error {
	adm := kadm.NewClient(client)

	partitions := cfg.TopicPartitions()
	retryPartitions := cfg.RetryPartitions()
	replicationFactor := cfg.ReplicationFactor()

	for _, topic := range Topics(cfg) {
		p := partitions
		if strings.HasSuffix(topic, TopicRetrySuffix) || strings.HasSuffix(topic, TopicDLQSuffix) {
			p = retryPartitions
		}

		resp, err := adm.CreateTopics(ctx, int32(p), replicationFactor, nil, topic)
		if err != nil {
			return fmt.Errorf("failed to create topic %s: %w", topic, err)
		}
		for _, detail := range resp {
			if detail.Err != nil && !strings.Contains(detail.Err.Error(), "already exists") {
				return fmt.Errorf("failed to create topic %s: %w", detail.Topic, detail.Err)
			}
		}
	}

	logger.Info("kafka topics ensured", zap.Int("count", len(Topics(cfg))))
	return nil
}
