package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KAFKA_INSTANCE_ID", "node-1")
	cfg := Load()

	assert.Equal(t, "3001", cfg.AppPort)
	assert.Equal(t, "node-1", cfg.KafkaInstanceID)
	assert.False(t, cfg.EventDriven())
	assert.False(t, cfg.UsePostgres())
	assert.Equal(t, "0.5", cfg.Reward().String())
	assert.Equal(t, 10, cfg.Onboarding())
	assert.Equal(t, []int{10, 30, 60, 90, 180, 365}, cfg.MilestoneList())
	assert.Equal(t, 30*time.Second, cfg.PayoutDeadline())
	assert.Equal(t, uint64(4), cfg.Rounds())
}

func TestReward_FallsBackOnBadValues(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-1"} {
		cfg := &Config{RewardAmount: raw}
		assert.Equal(t, "0.5", cfg.Reward().String(), "input %q", raw)
	}
	cfg := &Config{RewardAmount: " 1.25 "}
	assert.Equal(t, "1.25", cfg.Reward().String())
}

func TestMilestoneList_IncludesOnboarding(t *testing.T) {
	cfg := &Config{Milestones: "30, x, 60,30,-5", OnboardingMilestone: "7"}
	assert.Equal(t, []int{7, 30, 60}, cfg.MilestoneList())
}

func TestDurations_Fallback(t *testing.T) {
	cfg := &Config{PayoutTimeout: "nope", MintTimeout: "2s", KafkaRequestTimeout: "-1s"}
	assert.Equal(t, 30*time.Second, cfg.PayoutDeadline())
	assert.Equal(t, 2*time.Second, cfg.MintDeadline())
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout())
}

func TestReplyTimeout_CoversClaimBudget(t *testing.T) {
	t.Setenv("KAFKA_INSTANCE_ID", "node-1")
	cfg := Load()
	budget := cfg.PayoutDeadline() + cfg.MintDeadline()
	assert.Greater(t, cfg.ReplyTimeout(), budget)
	assert.Equal(t, 75*time.Second, cfg.ReplyTimeout())

	cfg = &Config{PayoutTimeout: "2m", MintTimeout: "1m", KafkaRequestTimeout: "10s"}
	assert.Equal(t, 3*time.Minute+replySlack, cfg.ReplyTimeout())

	cfg = &Config{PayoutTimeout: "5s", MintTimeout: "5s", KafkaRequestTimeout: "2m"}
	assert.Equal(t, 2*time.Minute, cfg.ReplyTimeout())
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://localhost:5173 , ,https://app.example.com"}
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.Origins())
}
