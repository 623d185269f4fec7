package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/azizikri/streak-rewards/internal/repository"
	"github.com/azizikri/streak-rewards/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type balanceFunc func(ctx context.Context) (decimal.Decimal, error)

func (f balanceFunc) Balance(ctx context.Context) (decimal.Decimal, error) { return f(ctx) }

func fixedBalance(v string) balanceFunc {
	return func(ctx context.Context) (decimal.Decimal, error) {
		return decimal.RequireFromString(v), nil
	}
}

var half = decimal.RequireFromString("0.5")

func TestFundingJob(t *testing.T) {
	cases := []struct {
		name    string
		wallet  balanceFunc
		level   zapcore.Level
		message string
	}{
		{"healthy", fixedBalance("10"), zapcore.InfoLevel, "funded wallet balance"},
		{"low", fixedBalance("4.9"), zapcore.WarnLevel, "funded wallet running low"},
		{"unreachable", func(ctx context.Context) (decimal.Decimal, error) {
			return decimal.Zero, errors.New("algod down")
		}, zapcore.WarnLevel, "funding check failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			NewFundingJob(tc.wallet, half, 10, time.Minute, zap.New(core)).Execute()

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level)
			assert.Equal(t, tc.message, entries[0].Message)
		})
	}
}

func TestFundingJob_RemainingPayouts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewFundingJob(fixedBalance("4.9"), half, 10, time.Minute, zap.New(core)).Execute()

	fields := logs.All()[0].ContextMap()
	assert.EqualValues(t, 9, fields["payouts_remaining"])
}

func TestStatsJob(t *testing.T) {
	ledger := usecase.NewRewardLedger(repository.NewMemoryStore())
	_, err := ledger.RecordPayout(context.Background(), "A", "tx1", half)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	NewStatsJob(ledger, time.Minute, zap.New(core)).Execute()

	entries := logs.FilterMessage("ledger snapshot").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["payouts"])
	assert.Equal(t, "0.5", fields["total_amount"])
}

func TestManager_RegisterAndStop(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m, err := NewManager(zap.New(core))
	require.NoError(t, err)

	m.Register(NewStatsJob(usecase.NewRewardLedger(repository.NewMemoryStore()), time.Hour, zap.NewNop()))
	m.Start()
	m.Stop()

	assert.Equal(t, 1, logs.FilterMessage("job registered").Len())
	assert.Equal(t, 1, logs.FilterMessage("scheduler stopped").Len())
}
