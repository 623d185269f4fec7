package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/azizikri/streak-rewards/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

type ClaimRewardRequest struct {
	RecipientID string `json:"recipientId"`
	// RecipientAddress is accepted from older clients.
	RecipientAddress string `json:"recipientAddress,omitempty"`
}

// Amounts leave the API as JSON numbers.
type ClaimRewardResponse struct {
	RecipientID string  `json:"recipientId"`
	ReferenceID string  `json:"referenceId"`
	Amount      float64 `json:"amount"`
	Unrecorded  bool    `json:"unrecorded,omitempty"`
}

type RewardRecordResponse struct {
	RecipientID string    `json:"recipientId"`
	IssuedAt    time.Time `json:"issuedAt"`
	ReferenceID string    `json:"referenceId"`
	Amount      float64   `json:"amount"`
	Unrecorded  bool      `json:"unrecorded,omitempty"`
}

type RewardStatsResponse struct {
	Count       int                    `json:"count"`
	TotalAmount float64                `json:"totalAmount"`
	Records     []RewardRecordResponse `json:"records"`
}

type ClaimOutcomeResponse struct {
	*domain.ClaimOutcome
	Reward *RewardRecordResponse `json:"reward,omitempty"`
}

type ClaimRequest struct {
	RecipientID string `json:"recipientId"`
	Milestone   int    `json:"milestone"`
	Year        int    `json:"year,omitempty"`
	// AuthProof is the base64 signed asset-create transaction.
	AuthProof []byte `json:"authProof"`
}

type ErrorResponse struct {
	Error           string `json:"error"`
	AlreadyReceived bool   `json:"alreadyReceived,omitempty"`
}

type ImagePinner interface {
	PinImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type Handler struct {
	gateway usecase.RewardGateway
	images  ImagePinner
	logger  *zap.Logger
}

// NewHandler accepts a nil images pinner; /pin-image then reports it is not configured.
func NewHandler(gateway usecase.RewardGateway, images ImagePinner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gateway: gateway, images: images, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Post("/claim-reward", h.ClaimReward)
	r.Get("/reward-stats", h.RewardStats)
	r.Post("/claims", h.Claim)
	r.Post("/pin-image", h.PinImage)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "ts": time.Now().UnixMilli()})
}

func (h *Handler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	var req ClaimRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recipient := strings.TrimSpace(req.RecipientID)
	if recipient == "" {
		recipient = strings.TrimSpace(req.RecipientAddress)
	}
	if recipient == "" {
		writeError(w, http.StatusBadRequest, "recipientId is required")
		return
	}

	record, err := h.gateway.ClaimReward(r.Context(), recipient)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyReceived):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:           "Address has already received onboarding airdrop",
				AlreadyReceived: true,
			})
		case errors.Is(err, domain.ErrInvalidRecipient):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("airdrop failed", zap.String("recipient", recipient), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, ClaimRewardResponse{
		RecipientID: record.RecipientID,
		ReferenceID: record.ReferenceID,
		Amount:      amount(record.Amount),
		Unrecorded:  record.Unrecorded,
	})
}

func (h *Handler) RewardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.gateway.RewardStats(r.Context())
	if err != nil {
		h.logger.Error("reward stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load reward stats")
		return
	}
	resp := RewardStatsResponse{
		Count:       stats.Count,
		TotalAmount: amount(stats.TotalAmount),
		Records:     make([]RewardRecordResponse, 0, len(stats.Records)),
	}
	for _, rec := range stats.Records {
		resp.Records = append(resp.Records, *toRecordResponse(&rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.gateway.Claim(r.Context(), domain.ClaimRequest{
		RecipientID: strings.TrimSpace(req.RecipientID),
		Milestone:   req.Milestone,
		Year:        req.Year,
		AuthProof:   req.AuthProof,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRecipient) || errors.Is(err, domain.ErrInvalidMilestone) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("claim failed", zap.String("recipient", req.RecipientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, claimStatus(outcome), ClaimOutcomeResponse{
		ClaimOutcome: outcome,
		Reward:       toRecordResponse(outcome.Reward),
	})
}

func (h *Handler) PinImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, http.StatusInternalServerError, "asset store is not configured")
		return
	}
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	url, err := h.images.PinImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("pin image failed", zap.String("filename", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"metadataUrl": url})
}

// claimStatus maps a claim outcome to the HTTP status the UI keys off. Failures
// of an external collaborator are 502; failures on our side are 500.
func claimStatus(o *domain.ClaimOutcome) int {
	switch o.Phase {
	case domain.PhaseSucceeded:
		return http.StatusOK
	case domain.PhaseAwaitingAuth:
		return http.StatusAccepted
	}
	switch {
	case errors.Is(o.Err, domain.ErrGatewayNetwork),
		errors.Is(o.Err, domain.ErrGatewayInsufficientFunds),
		errors.Is(o.Err, domain.ErrMintService),
		errors.Is(o.Err, domain.ErrMetadataUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toRecordResponse(r *domain.RewardRecord) *RewardRecordResponse {
	if r == nil {
		return nil
	}
	return &RewardRecordResponse{
		RecipientID: r.RecipientID,
		IssuedAt:    r.IssuedAt,
		ReferenceID: r.ReferenceID,
		Amount:      amount(r.Amount),
		Unrecorded:  r.Unrecorded,
	}
}

// amount converts a ledger amount for the wire. Amounts are held to micro-units,
// well inside float64 precision.
func amount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
