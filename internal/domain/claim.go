package domain

import (
	"errors"
	"time"
)

type ClaimPhase string

const (
	PhaseAwaitingAuth  ClaimPhase = "AwaitingAuth"
	PhaseRewardPending ClaimPhase = "RewardPending"
	PhaseMintPending   ClaimPhase = "MintPending"
	PhaseSucceeded     ClaimPhase = "Succeeded"
	PhaseFailed        ClaimPhase = "Failed"
)

// Terminal reports whether no further transition is possible from p.
func (p ClaimPhase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// RewardStatus tells the caller what happened to the onboarding reward during a claim.
type RewardStatus string

const (
	RewardSkipped         RewardStatus = "skipped"
	RewardAlreadyReceived RewardStatus = "already_received"
	RewardPaid            RewardStatus = "paid"
	RewardFailed          RewardStatus = "failed"
)

type ClaimRequest struct {
	RecipientID string
	Milestone   int
	Year        int
	AuthProof   []byte
}

type ClaimState struct {
	Milestone     int        `json:"milestone"`
	Phase         ClaimPhase `json:"phase"`
	BadgeID       uint64     `json:"badgeId,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
}

type ClaimOutcome struct {
	ClaimState
	ClaimID      string        `json:"claimId"`
	RecipientID  string        `json:"recipientId"`
	Year         int           `json:"year"`
	MetadataRef  string        `json:"metadataRef,omitempty"`
	RewardStatus RewardStatus  `json:"rewardStatus"`
	Reward       *RewardRecord `json:"reward,omitempty"`
	FailedPhase  ClaimPhase    `json:"failedPhase,omitempty"`
	Err          error         `json:"-"`
}

// Succeeded is true once a badge id has been assigned.
func (o *ClaimOutcome) Succeeded() bool {
	return o.Phase == PhaseSucceeded
}

// Fail moves the outcome into Failed, remembering the phase it failed from.
func (o *ClaimOutcome) Fail(err error) {
	o.FailedPhase = o.Phase
	o.Phase = PhaseFailed
	o.FailureReason = err.Error()
	o.Err = err
}

// Retryable reports whether a fresh claim could plausibly succeed.
func (o *ClaimOutcome) Retryable() bool {
	if o.Phase != PhaseFailed {
		return false
	}
	return !errors.Is(o.Err, ErrGatewayConfiguration)
}

type ClaimEvent struct {
	ClaimID     string        `json:"claimId"`
	RecipientID string        `json:"recipientId"`
	Milestone   int           `json:"milestone"`
	Type        string        `json:"type"`
	Phase       ClaimPhase    `json:"phase"`
	Latency     time.Duration `json:"latencyNs,omitempty"`
	ReferenceID string        `json:"referenceId,omitempty"`
	BadgeID     uint64        `json:"badgeId,omitempty"`
	Error       string        `json:"error,omitempty"`
	OccurredAt  time.Time     `json:"occurredAt"`
}

const (
	EventPhaseChanged   = "claim.phase_changed"
	EventRewardPaid     = "reward.paid"
	EventDuplicatePaid  = "reward.duplicate_payout"
	EventBadgeMinted    = "badge.minted"
	EventClaimCompleted = "claim.completed"
)
