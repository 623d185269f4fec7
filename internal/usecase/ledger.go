package usecase

import (
	"context"
	"fmt"
	"time"

	db "github.com/azizikri/streak-rewards/db/gen"
	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// amountScale is the number of decimal places persisted (micro-units).
const amountScale = 6

type RewardLedger struct {
	store repository.Store
	now   func() time.Time
}

func NewRewardLedger(store repository.Store) *RewardLedger {
	return &RewardLedger{store: store, now: time.Now}
}

func (l *RewardLedger) HasReceived(ctx context.Context, recipientID string) (bool, error) {
	ok, err := l.store.HasPayout(ctx, recipientID)
	if err != nil {
		return false, fmt.Errorf("lookup payout for %s: %w", recipientID, err)
	}
	return ok, nil
}

// RecordPayout stores the payout if none exists for the recipient. The uniqueness
// check happens inside the store as a single insert-if-absent, so the loser of a
// race gets domain.ErrAlreadyRecorded and the stored record is left untouched.
func (l *RewardLedger) RecordPayout(ctx context.Context, recipientID, referenceID string, amount decimal.Decimal) (*domain.RewardRecord, error) {
	issuedAt := l.now().UTC()
	rows, err := l.store.InsertPayout(ctx, db.InsertPayoutParams{
		RecipientID: recipientID,
		ReferenceID: referenceID,
		AmountMicro: toMicro(amount),
		IssuedAt:    pgtype.Timestamptz{Time: issuedAt, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("record payout for %s: %w", recipientID, err)
	}
	if rows == 0 {
		return nil, domain.ErrAlreadyRecorded
	}

	return &domain.RewardRecord{
		RecipientID: recipientID,
		IssuedAt:    issuedAt,
		ReferenceID: referenceID,
		Amount:      fromMicro(toMicro(amount)),
	}, nil
}

func (l *RewardLedger) Stats(ctx context.Context) (*domain.RewardStats, error) {
	payouts, err := l.store.ListPayouts(ctx)
	if err != nil {
		return nil, err
	}

	// count and total are derived from the listed records
	var totalMicro int64
	records := make([]domain.RewardRecord, 0, len(payouts))
	for _, p := range payouts {
		totalMicro += p.AmountMicro
		records = append(records, toRecord(p))
	}

	return &domain.RewardStats{
		Count:       len(records),
		TotalAmount: fromMicro(totalMicro),
		Records:     records,
	}, nil
}

func toRecord(p db.RewardPayout) domain.RewardRecord {
	return domain.RewardRecord{
		RecipientID: p.RecipientID,
		IssuedAt:    p.IssuedAt.Time,
		ReferenceID: p.ReferenceID,
		Amount:      fromMicro(p.AmountMicro),
	}
}

func toMicro(amount decimal.Decimal) int64 {
	return amount.Shift(amountScale).IntPart()
}

func fromMicro(micro int64) decimal.Decimal {
	return decimal.New(micro, -amountScale)
}
