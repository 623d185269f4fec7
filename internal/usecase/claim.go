package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ClaimPolicy struct {
	OnboardingMilestone int
	Milestones          []int
	RewardAmount        decimal.Decimal
	PayoutTimeout       time.Duration
	MintTimeout         time.Duration
}

type ClaimDeps struct {
	Ledger    *RewardLedger
	Payments  PaymentGateway
	Minter    BadgeMinter
	Metadata  MetadataResolver
	Addresses AddressValidator
	Events    EventPublisher
	Logger    *zap.Logger
}

// ClaimService runs the reward-then-mint workflow. One Claim call owns its
// ClaimOutcome exclusively; the ledger is the only state shared between calls.
type ClaimService struct {
	ledger    *RewardLedger
	payments  PaymentGateway
	minter    BadgeMinter
	metadata  MetadataResolver
	addresses AddressValidator
	events    EventPublisher
	logger    *zap.Logger
	policy    ClaimPolicy
	now       func() time.Time
}

func NewClaimService(deps ClaimDeps, policy ClaimPolicy) *ClaimService {
	if deps.Events == nil {
		deps.Events = NopPublisher
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if policy.PayoutTimeout <= 0 {
		policy.PayoutTimeout = 30 * time.Second
	}
	if policy.MintTimeout <= 0 {
		policy.MintTimeout = 30 * time.Second
	}
	return &ClaimService{
		ledger:    deps.Ledger,
		payments:  deps.Payments,
		minter:    deps.Minter,
		metadata:  deps.Metadata,
		addresses: deps.Addresses,
		events:    deps.Events,
		logger:    deps.Logger,
		policy:    policy,
		now:       time.Now,
	}
}

func (s *ClaimService) Policy() ClaimPolicy {
	return s.policy
}

// Claim validates the request and drives it to a terminal phase. Input problems are
// returned as errors; everything that goes wrong after that is reported through the
// outcome. External calls are detached from ctx cancellation so an abandoned request
// still settles the ledger.
func (s *ClaimService) Claim(ctx context.Context, req domain.ClaimRequest) (*domain.ClaimOutcome, error) {
	if err := s.validateRecipient(req.RecipientID); err != nil {
		return nil, err
	}
	if !slices.Contains(s.policy.Milestones, req.Milestone) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidMilestone, req.Milestone)
	}

	year := req.Year
	if year <= 0 {
		year = s.now().Year()
	}

	outcome := &domain.ClaimOutcome{
		ClaimState: domain.ClaimState{
			Milestone: req.Milestone,
			Phase:     domain.PhaseAwaitingAuth,
		},
		ClaimID:      uuid.NewString(),
		RecipientID:  req.RecipientID,
		Year:         year,
		RewardStatus: domain.RewardSkipped,
	}

	if len(req.AuthProof) == 0 {
		outcome.Err = domain.ErrAuthRequired
		return outcome, nil
	}

	work := context.WithoutCancel(ctx)

	if req.Milestone == s.policy.OnboardingMilestone {
		if !s.rewardStep(work, outcome) {
			return outcome, nil
		}
	}

	s.transition(work, outcome, domain.PhaseMintPending)
	s.mintStep(work, outcome, req)
	return outcome, nil
}

// rewardStep returns false when the claim must halt before minting.
func (s *ClaimService) rewardStep(ctx context.Context, outcome *domain.ClaimOutcome) bool {
	received, err := s.ledger.HasReceived(ctx, outcome.RecipientID)
	if err != nil {
		// without a definite answer we refuse to pay
		s.transition(ctx, outcome, domain.PhaseRewardPending)
		outcome.RewardStatus = domain.RewardFailed
		s.fail(ctx, outcome, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err))
		return false
	}
	if received {
		outcome.RewardStatus = domain.RewardAlreadyReceived
		return true
	}

	s.transition(ctx, outcome, domain.PhaseRewardPending)
	record, err := s.payReward(ctx, outcome.ClaimID, outcome.RecipientID, outcome.Milestone)
	if err != nil {
		outcome.RewardStatus = domain.RewardFailed
		s.fail(ctx, outcome, err)
		return false
	}
	outcome.RewardStatus = domain.RewardPaid
	outcome.Reward = record
	return true
}

func (s *ClaimService) mintStep(ctx context.Context, outcome *domain.ClaimOutcome, req domain.ClaimRequest) {
	mintCtx, cancel := context.WithTimeout(ctx, s.policy.MintTimeout)
	defer cancel()

	metadataRef, err := s.metadata.Resolve(mintCtx, outcome.Milestone, outcome.Year)
	if err != nil {
		if !errors.Is(err, domain.ErrMetadataUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
		}
		s.fail(ctx, outcome, err)
		return
	}
	outcome.MetadataRef = metadataRef

	start := s.now()
	receipt, err := s.minter.Mint(mintCtx, MintRequest{
		Milestone:   outcome.Milestone,
		Year:        outcome.Year,
		MetadataRef: metadataRef,
		RecipientID: outcome.RecipientID,
		AuthProof:   req.AuthProof,
	})
	latency := s.now().Sub(start)
	if err != nil {
		if errors.Is(mintCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: timed out after %s: %v", domain.ErrMintService, s.policy.MintTimeout, err)
		} else if !errors.Is(err, domain.ErrMintService) {
			err = fmt.Errorf("%w: %v", domain.ErrMintService, err)
		}
		s.fail(ctx, outcome, err)
		return
	}

	outcome.BadgeID = receipt.BadgeID
	s.emit(ctx, outcome, domain.ClaimEvent{
		Type:    domain.EventBadgeMinted,
		Latency: latency,
		BadgeID: receipt.BadgeID,
	})
	s.transition(ctx, outcome, domain.PhaseSucceeded)
}

// ClaimReward pays the onboarding airdrop on its own, outside of a badge claim.
func (s *ClaimService) ClaimReward(ctx context.Context, recipientID string) (*domain.RewardRecord, error) {
	if err := s.validateRecipient(recipientID); err != nil {
		return nil, err
	}
	work := context.WithoutCancel(ctx)

	received, err := s.ledger.HasReceived(work, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	if received {
		return nil, domain.ErrAlreadyReceived
	}

	return s.payReward(work, uuid.NewString(), recipientID, s.policy.OnboardingMilestone)
}

func (s *ClaimService) RewardStats(ctx context.Context) (*domain.RewardStats, error) {
	return s.ledger.Stats(ctx)
}

func (s *ClaimService) payReward(ctx context.Context, claimID, recipientID string, milestone int) (*domain.RewardRecord, error) {
	amount := s.policy.RewardAmount
	log := s.logger.With(
		zap.String("claim_id", claimID),
		zap.String("recipient", recipientID),
		zap.String("amount", amount.String()),
	)

	payCtx, cancel := context.WithTimeout(ctx, s.policy.PayoutTimeout)
	defer cancel()

	start := s.now()
	receipt, err := s.payments.Payout(payCtx, recipientID, amount)
	latency := s.now().Sub(start)
	if err != nil {
		err = classifyPayoutError(payCtx, err, s.policy.PayoutTimeout)
		log.Warn("payout failed", zap.Duration("latency", latency), zap.Error(err))
		return nil, err
	}
	log.Info("payout confirmed", zap.String("reference_id", receipt.ReferenceID), zap.Duration("latency", latency))

	event := domain.ClaimEvent{
		ClaimID:     claimID,
		RecipientID: recipientID,
		Milestone:   milestone,
		Type:        domain.EventRewardPaid,
		Phase:       domain.PhaseRewardPending,
		Latency:     latency,
		ReferenceID: receipt.ReferenceID,
		OccurredAt:  s.now().UTC(),
	}

	record, err := s.ledger.RecordPayout(ctx, recipientID, receipt.ReferenceID, amount)
	switch {
	case errors.Is(err, domain.ErrAlreadyRecorded):
		log.Warn("payout raced with another claim, recipient was paid twice",
			zap.String("reference_id", receipt.ReferenceID))
		event.Type = domain.EventDuplicatePaid
		record = s.unrecorded(recipientID, receipt, amount)
	case err != nil:
		// the transfer is final; surface it loudly rather than fail the claim
		log.Error("payout confirmed but ledger write failed",
			zap.String("reference_id", receipt.ReferenceID), zap.Error(err))
		event.Error = err.Error()
		record = s.unrecorded(recipientID, receipt, amount)
		record.Unrecorded = true
	}

	s.events.Publish(ctx, event)
	return record, nil
}

func (s *ClaimService) unrecorded(recipientID string, receipt domain.PayoutReceipt, amount decimal.Decimal) *domain.RewardRecord {
	return &domain.RewardRecord{
		RecipientID: recipientID,
		IssuedAt:    s.now().UTC(),
		ReferenceID: receipt.ReferenceID,
		Amount:      amount,
	}
}

func (s *ClaimService) validateRecipient(recipientID string) error {
	if strings.TrimSpace(recipientID) == "" {
		return fmt.Errorf("%w: recipientId is required", domain.ErrInvalidRecipient)
	}
	if s.addresses == nil {
		return nil
	}
	if err := s.addresses.Validate(recipientID); err != nil {
		if errors.Is(err, domain.ErrInvalidRecipient) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidRecipient, err)
	}
	return nil
}

func (s *ClaimService) transition(ctx context.Context, outcome *domain.ClaimOutcome, to domain.ClaimPhase) {
	from := outcome.Phase
	outcome.Phase = to

	s.logger.Info("claim phase changed",
		zap.String("claim_id", outcome.ClaimID),
		zap.String("recipient", outcome.RecipientID),
		zap.Int("milestone", outcome.Milestone),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	eventType := domain.EventPhaseChanged
	if to.Terminal() {
		eventType = domain.EventClaimCompleted
	}
	s.emit(ctx, outcome, domain.ClaimEvent{Type: eventType, BadgeID: outcome.BadgeID})
}

func (s *ClaimService) fail(ctx context.Context, outcome *domain.ClaimOutcome, err error) {
	outcome.Fail(err)
	s.logger.Warn("claim failed",
		zap.String("claim_id", outcome.ClaimID),
		zap.String("recipient", outcome.RecipientID),
		zap.Int("milestone", outcome.Milestone),
		zap.String("failed_phase", string(outcome.FailedPhase)),
		zap.String("reward_status", string(outcome.RewardStatus)),
		zap.Error(err),
	)
	s.emit(ctx, outcome, domain.ClaimEvent{Type: domain.EventClaimCompleted, Error: err.Error()})
}

func (s *ClaimService) emit(ctx context.Context, outcome *domain.ClaimOutcome, event domain.ClaimEvent) {
	event.ClaimID = outcome.ClaimID
	event.RecipientID = outcome.RecipientID
	event.Milestone = outcome.Milestone
	event.Phase = outcome.Phase
	event.OccurredAt = s.now().UTC()
	s.events.Publish(ctx, event)
}

func classifyPayoutError(ctx context.Context, err error, timeout time.Duration) error {
	switch {
	case errors.Is(err, domain.ErrGatewayConfiguration),
		errors.Is(err, domain.ErrGatewayInsufficientFunds),
		errors.Is(err, domain.ErrGatewayNetwork):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: payout timed out after %s", domain.ErrGatewayNetwork, timeout)
	default:
		return fmt.Errorf("%w: %v", domain.ErrGatewayNetwork, err)
	}
}
