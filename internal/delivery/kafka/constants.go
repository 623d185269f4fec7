package kafka

import "time"

const (
	TopicClaimRequest   = "reward.claim.req"
	TopicAirdropRequest = "reward.airdrop.req"
	TopicStatsRequest   = "reward.stats.req"
	TopicClaimRetry     = "reward.claim.retry"
	TopicAirdropRetry   = "reward.airdrop.retry"
	TopicStatsRetry     = "reward.stats.retry"
	TopicReplyPrefix    = "reward.reply."
	TopicClaimEvents    = "reward.claim.events"
	TopicRequestSuffix  = ".req"
	TopicRetrySuffix    = ".retry"
	TopicDLQSuffix      = ".dlq"

	MaxRetryAttempts = 3
	RetryBackoff     = 2 * time.Second

	RetryHeaderNextAt  = "x-next-at"
	RetryHeaderAttempt = "x-attempt"
	ErrorHeaderKey     = "x-error"
)

var requestTopics = []string{TopicClaimRequest, TopicAirdropRequest, TopicStatsRequest}

var retryTopics = []string{TopicClaimRetry, TopicAirdropRetry, TopicStatsRetry}

func RequestTopics() []string { return append([]string(nil), requestTopics...) }

func RetryTopics() []string { return append([]string(nil), retryTopics...) }

func ReplyTopic(instanceID string) string {
	return TopicReplyPrefix + instanceID
}
