package kafka

import (
	"errors"
	"fmt"
	"strings"

	"github.com/azizikri/streak-rewards/internal/domain"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

const (
	ErrCodeAlreadyReceived     = "ALREADY_RECEIVED"
	ErrCodeInvalidRecipient    = "INVALID_RECIPIENT"
	ErrCodeInvalidMilestone    = "INVALID_MILESTONE"
	ErrCodeAuthRequired        = "AUTH_REQUIRED"
	ErrCodeGatewayConfig       = "GATEWAY_CONFIGURATION"
	ErrCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrCodeGatewayNetwork      = "GATEWAY_NETWORK"
	ErrCodeMintService         = "MINT_SERVICE"
	ErrCodeMetadataUnavailable = "METADATA_UNAVAILABLE"
	ErrCodeLedgerUnavailable   = "LEDGER_UNAVAILABLE"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

type RequestPayload struct {
	SchemaVersion int    `json:"schema_version"`
	CorrelationID string `json:"correlation_id"`
	ReplyTo       string `json:"reply_to"`
	RecipientID   string `json:"recipient_id,omitempty"`
	Milestone     int    `json:"milestone,omitempty"`
	Year          int    `json:"year,omitempty"`
	AuthProof     []byte `json:"auth_proof,omitempty"`
}

type ResponsePayload struct {
	SchemaVersion int                  `json:"schema_version"`
	CorrelationID string               `json:"correlation_id"`
	Status        string               `json:"status"`
	ErrorCode     string               `json:"error_code,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
	Record        *domain.RewardRecord `json:"record,omitempty"`
	Stats         *domain.RewardStats  `json:"stats,omitempty"`
	Outcome       *domain.ClaimOutcome `json:"outcome,omitempty"`
	OutcomeError  string               `json:"outcome_error,omitempty"`
}

var errorCodes = []struct {
	code string
	err  error
}{
	{ErrCodeAlreadyReceived, domain.ErrAlreadyReceived},
	{ErrCodeInvalidRecipient, domain.ErrInvalidRecipient},
	{ErrCodeInvalidMilestone, domain.ErrInvalidMilestone},
	{ErrCodeAuthRequired, domain.ErrAuthRequired},
	{ErrCodeGatewayConfig, domain.ErrGatewayConfiguration},
	{ErrCodeInsufficientFunds, domain.ErrGatewayInsufficientFunds},
	{ErrCodeGatewayNetwork, domain.ErrGatewayNetwork},
	{ErrCodeMintService, domain.ErrMintService},
	{ErrCodeMetadataUnavailable, domain.ErrMetadataUnavailable},
	{ErrCodeLedgerUnavailable, domain.ErrLedgerUnavailable},
}

func errorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ErrCodeInternalError
}

// errorFromCode rebuilds a wrapped domain error on the requesting side so callers
// can keep using errors.Is.
func errorFromCode(code, message string) error {
	for _, c := range errorCodes {
		if c.code != code {
			continue
		}
		if message == "" || message == c.err.Error() {
			return c.err
		}
		if rest, ok := strings.CutPrefix(message, c.err.Error()); ok {
			return fmt.Errorf("%w%s", c.err, rest)
		}
		return fmt.Errorf("%w: %s", c.err, message)
	}
	if message == "" {
		message = "internal error"
	}
	return errors.New(message)
}

// retryable errors are those raised before any payout could have been sent.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrLedgerUnavailable)
}
