package scheduler

import (
	"context"
	"time"

	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

type BalanceReporter interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
}

type StatsSource interface {
	Stats(ctx context.Context) (*domain.RewardStats, error)
}

// FundingJob warns when the funded wallet can cover fewer than watermark payouts.
type FundingJob struct {
	wallet    BalanceReporter
	reward    decimal.Decimal
	watermark int
	interval  time.Duration
	logger    *zap.Logger
}

func NewFundingJob(wallet BalanceReporter, reward decimal.Decimal, watermark int, interval time.Duration, logger *zap.Logger) *FundingJob {
	return &FundingJob{
		wallet:    wallet,
		reward:    reward,
		watermark: watermark,
		interval:  interval,
		logger:    logger,
	}
}

func (j *FundingJob) Name() string { return "funding_monitor" }

func (j *FundingJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *FundingJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	balance, err := j.wallet.Balance(ctx)
	if err != nil {
		j.logger.Warn("funding check failed", zap.Error(err))
		return
	}

	remaining := 0
	if j.reward.IsPositive() {
		remaining = int(balance.Div(j.reward).IntPart())
	}
	fields := []zap.Field{
		zap.String("balance", balance.String()),
		zap.String("reward", j.reward.String()),
		zap.Int("payouts_remaining", remaining),
	}
	if remaining < j.watermark {
		j.logger.Warn("funded wallet running low", append(fields, zap.Int("watermark", j.watermark))...)
		return
	}
	j.logger.Info("funded wallet balance", fields...)
}

// StatsJob logs a ledger snapshot.
type StatsJob struct {
	ledger   StatsSource
	interval time.Duration
	logger   *zap.Logger
}

func NewStatsJob(ledger StatsSource, interval time.Duration, logger *zap.Logger) *StatsJob {
	return &StatsJob{ledger: ledger, interval: interval, logger: logger}
}

func (j *StatsJob) Name() string { return "ledger_snapshot" }

func (j *StatsJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *StatsJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	stats, err := j.ledger.Stats(ctx)
	if err != nil {
		j.logger.Warn("ledger snapshot failed", zap.Error(err))
		return
	}
	j.logger.Info("ledger snapshot",
		zap.Int("payouts", stats.Count),
		zap.String("total_amount", stats.TotalAmount.String()),
	)
}
