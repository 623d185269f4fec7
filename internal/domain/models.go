package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAlreadyRecorded          = errors.New("reward already recorded for recipient")
	ErrAlreadyReceived          = errors.New("address has already received onboarding airdrop")
	ErrGatewayConfiguration     = errors.New("payment gateway is not configured")
	ErrGatewayInsufficientFunds = errors.New("funded wallet has insufficient balance")
	ErrGatewayNetwork           = errors.New("payment gateway unavailable")
	ErrMintService              = errors.New("badge minting failed")
	ErrMetadataUnavailable      = errors.New("badge metadata unavailable")
	ErrLedgerUnavailable        = errors.New("reward ledger unavailable")
	ErrInvalidRecipient         = errors.New("invalid recipient address")
	ErrInvalidMilestone         = errors.New("milestone is not claimable")
	ErrAuthRequired             = errors.New("wallet authorisation required")
)

type RewardRecord struct {
	RecipientID string          `json:"recipientId"`
	IssuedAt    time.Time       `json:"issuedAt"`
	ReferenceID string          `json:"referenceId"`
	Amount      decimal.Decimal `json:"amount"`
	// Unrecorded is set when the transfer confirmed but the ledger write failed,
	// so nothing stops the recipient from being paid again.
	Unrecorded  bool            `json:"unrecorded,omitempty"`
}

type RewardStats struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Records     []RewardRecord  `json:"records"`
}

// PayoutReceipt is what the payment gateway hands back for a confirmed transfer.
type PayoutReceipt struct {
	ReferenceID string
	Round       uint64
}

type MintReceipt struct {
	BadgeID uint64
	Round   uint64
}
