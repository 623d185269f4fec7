package kafka

import (
	"context"

	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/usecase"
)

type DirectGateway struct {
	service *usecase.ClaimService
}

func NewDirectGateway(service *usecase.ClaimService) usecase.RewardGateway {
	return &DirectGateway{service: service}
}

func (g *DirectGateway) ClaimReward(ctx context.Context, recipientID string) (*domain.RewardRecord, error) {
	return g.service.ClaimReward(ctx, recipientID)
}

func (g *DirectGateway) Claim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimOutcome, error) {
	return g.service.Claim(ctx, req)
}

func (g *DirectGateway) RewardStats(ctx context.Context) (*domain.RewardStats, error) {
	return g.service.RewardStats(ctx)
}
