package usecase

import (
	"context"

	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/shopspring/decimal"
)

// RewardGateway is what the delivery layer talks to. It is satisfied in-process by
// DirectGateway or remotely by the Kafka request/reply gateway.
type RewardGateway interface {
	ClaimReward(ctx context.Context, recipientID string) (*domain.RewardRecord, error)
	Claim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimOutcome, error)
	RewardStats(ctx context.Context) (*domain.RewardStats, error)
}

// PaymentGateway transfers the onboarding reward. Errors must wrap one of
// domain.ErrGatewayConfiguration, domain.ErrGatewayInsufficientFunds or
// domain.ErrGatewayNetwork.
type PaymentGateway interface {
	Payout(ctx context.Context, destinationID string, amount decimal.Decimal) (domain.PayoutReceipt, error)
}

type BadgeMinter interface {
	Mint(ctx context.Context, req MintRequest) (domain.MintReceipt, error)
}

type MintRequest struct {
	Milestone   int
	Year        int
	MetadataRef string
	RecipientID string
	AuthProof   []byte
}

type MetadataResolver interface {
	Resolve(ctx context.Context, milestone, year int) (string, error)
}

type AddressValidator interface {
	Validate(address string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.ClaimEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.ClaimEvent) {}

// NopPublisher discards events.
var NopPublisher EventPublisher = nopPublisher{}
