package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort        string
	AllowedOrigins string

	LedgerBackend string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	KafkaBrokers           string
	KafkaClientID          string
	KafkaGroupID           string
	KafkaRetryGroupID      string
	KafkaInstanceID        string
	KafkaTopicPartitions   string
	KafkaRetryPartitions   string
	KafkaReplicationFactor string
	KafkaRequestTimeout    string
	EventDrivenEnabled     string
	EventsEnabled          string

	AlgodNetwork         string
	AlgodServer          string
	AlgodPort            string
	AlgodToken           string
	FundedWalletMnemonic string
	ConfirmationRounds   string

	RewardAmount        string
	OnboardingMilestone string
	Milestones          string
	PayoutTimeout       string
	MintTimeout         string

	CloudflareAccountID string
	R2AccessKeyID       string
	R2AccessKeySecret   string
	R2BucketName        string
	R2Endpoint          string
	CDNBaseURL          string

	FundingCheckInterval string
	FundingLowWatermark  string
	StatsLogInterval     string
}

func Load() *Config {
	instanceID := os.Getenv("KAFKA_INSTANCE_ID")
	if instanceID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			instanceID = "unknown"
		} else {
			instanceID = hostname
		}
	}

	return &Config{
		AppPort:        getEnv("APP_PORT", "3001"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "memory"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "rewardsdb"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "db/migrations"),

		KafkaBrokers:           getEnv("KAFKA_BROKERS", "kafka:9092"),
		KafkaClientID:          getEnv("KAFKA_CLIENT_ID", "streak-rewards"),
		KafkaGroupID:           getEnv("KAFKA_GROUP_ID", "reward-claimers"),
		KafkaRetryGroupID:      getEnv("KAFKA_RETRY_GROUP_ID", "reward-claim-retry"),
		KafkaInstanceID:        instanceID,
		KafkaTopicPartitions:   getEnv("KAFKA_TOPIC_PARTITIONS", "3"),
		KafkaRetryPartitions:   getEnv("KAFKA_RETRY_PARTITIONS", "1"),
		KafkaReplicationFactor: getEnv("KAFKA_REPLICATION_FACTOR", "1"),
		KafkaRequestTimeout:    getEnv("KAFKA_REQUEST_TIMEOUT", "45s"),
		EventDrivenEnabled:     getEnv("EVENT_DRIVEN_ENABLED", "false"),
		EventsEnabled:          getEnv("EVENTS_ENABLED", "false"),

		AlgodNetwork:         getEnv("ALGOD_NETWORK", "testnet"),
		AlgodServer:          os.Getenv("ALGOD_SERVER"),
		AlgodPort:            os.Getenv("ALGOD_PORT"),
		AlgodToken:           os.Getenv("ALGOD_TOKEN"),
		FundedWalletMnemonic: os.Getenv("FUNDED_WALLET_MNEMONIC"),
		ConfirmationRounds:   getEnv("CONFIRMATION_ROUNDS", "4"),

		RewardAmount:        getEnv("REWARD_AMOUNT", "0.5"),
		OnboardingMilestone: getEnv("ONBOARDING_MILESTONE", "10"),
		Milestones:          getEnv("MILESTONES", "10,30,60,90,180,365"),
		PayoutTimeout:       getEnv("PAYOUT_TIMEOUT", "30s"),
		MintTimeout:         getEnv("MINT_TIMEOUT", "30s"),

		CloudflareAccountID: os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret:   os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2BucketName:        os.Getenv("R2_BUCKET_NAME"),
		R2Endpoint:          os.Getenv("R2_ENDPOINT"),
		CDNBaseURL:          os.Getenv("CDN_BASE_URL"),

		FundingCheckInterval: getEnv("FUNDING_CHECK_INTERVAL", "5m"),
		FundingLowWatermark:  getEnv("FUNDING_LOW_WATERMARK", "10"),
		StatsLogInterval:     getEnv("STATS_LOG_INTERVAL", "15m"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) TopicPartitions() int {
	return parseInt(c.KafkaTopicPartitions, 3)
}

func (c *Config) RetryPartitions() int {
	return parseInt(c.KafkaRetryPartitions, 1)
}

func (c *Config) ReplicationFactor() int16 {
	value := parseInt(c.KafkaReplicationFactor, 1)
	return int16(value)
}

func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.KafkaRequestTimeout, 45*time.Second)
}

// replySlack covers metadata lookups, ledger writes and the retry backoff on
// top of the payout and mint deadlines.
const replySlack = 15 * time.Second

// ReplyTimeout is how long a caller waits on the reply topic. It is at least the
// full claim budget, so a reply is never abandoned while a worker can still pay
// or mint.
func (c *Config) ReplyTimeout() time.Duration {
	return max(c.RequestTimeout(), c.PayoutDeadline()+c.MintDeadline()+replySlack)
}

func (c *Config) EventDriven() bool {
	return parseBool(c.EventDrivenEnabled)
}

func (c *Config) PublishEvents() bool {
	return parseBool(c.EventsEnabled)
}

func (c *Config) UsePostgres() bool {
	return strings.EqualFold(c.LedgerBackend, "postgres")
}

func (c *Config) Rounds() uint64 {
	return uint64(parseInt(c.ConfirmationRounds, 4))
}

// Reward returns the fixed onboarding airdrop amount. Non-positive or malformed
// values fall back to 0.5.
func (c *Config) Reward() decimal.Decimal {
	fallback := decimal.RequireFromString("0.5")
	amount, err := decimal.NewFromString(strings.TrimSpace(c.RewardAmount))
	if err != nil || !amount.IsPositive() {
		return fallback
	}
	return amount
}

func (c *Config) Onboarding() int {
	return parseInt(c.OnboardingMilestone, 10)
}

// MilestoneList parses MILESTONES, dropping anything that is not a positive integer.
// The onboarding milestone is always included.
func (c *Config) MilestoneList() []int {
	seen := make(map[int]bool)
	var out []int
	for _, part := range strings.Split(c.Milestones, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v <= 0 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if onboarding := c.Onboarding(); !seen[onboarding] {
		out = append([]int{onboarding}, out...)
	}
	return out
}

func (c *Config) PayoutDeadline() time.Duration {
	return parseDuration(c.PayoutTimeout, 30*time.Second)
}

func (c *Config) MintDeadline() time.Duration {
	return parseDuration(c.MintTimeout, 30*time.Second)
}

func (c *Config) FundingInterval() time.Duration {
	return parseDuration(c.FundingCheckInterval, 5*time.Minute)
}

func (c *Config) LowWatermark() int {
	return parseInt(c.FundingLowWatermark, 10)
}

func (c *Config) StatsInterval() time.Duration {
	return parseDuration(c.StatsLogInterval, 15*time.Minute)
}

func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) AssetStoreEnabled() bool {
	return c.R2BucketName != "" && c.R2AccessKeyID != ""
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(value)
	return err == nil && parsed
}
