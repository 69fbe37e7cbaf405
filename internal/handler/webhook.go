package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvold/bank-webhooks/internal/domain"
	"github.com/finvold/bank-webhooks/internal/logging"
	"github.com/finvold/bank-webhooks/internal/service"
)

type ingestor interface {
	Ingest(ctx context.Context, req service.IngestRequest) (*service.IngestResult, error)
}

type WebhookHandler struct {
	ingestor ingestor
}

func NewWebhookHandler(ingestor ingestor) *WebhookHandler {
	return &WebhookHandler{ingestor: ingestor}
}

type webhookPayload struct {
	OperationID    string           `json:"operation_id"`
	Amount         *decimal.Decimal `json:"amount"`
	PayerINN       string           `json:"payer_inn"`
	DocumentNumber string           `json:"document_number"`
	DocumentDate   *time.Time       `json:"document_date"`
}

// NUMERIC(15,2) leaves 13 integer digits.
var maxAmount = decimal.New(1, 13)

func (p webhookPayload) validate() []FieldError {
	var errs []FieldError

	if p.OperationID == "" {
		errs = append(errs, FieldError{Field: "operation_id", Message: "required"})
	} else if _, err := uuid.Parse(p.OperationID); err != nil {
		errs = append(errs, FieldError{Field: "operation_id", Message: "must be a valid UUID"})
	}

	switch {
	case p.Amount == nil:
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	case p.Amount.IsNegative():
		errs = append(errs, FieldError{Field: "amount", Message: "must not be negative"})
	case p.Amount.Exponent() < -2:
		errs = append(errs, FieldError{Field: "amount", Message: "must have at most 2 decimal places"})
	case p.Amount.GreaterThanOrEqual(maxAmount):
		errs = append(errs, FieldError{Field: "amount", Message: "exceeds 15 digit maximum"})
	}

	if p.PayerINN == "" {
		errs = append(errs, FieldError{Field: "payer_inn", Message: "required"})
	} else if !domain.ValidINN(p.PayerINN) {
		errs = append(errs, FieldError{Field: "payer_inn", Message: "must be 10 or 12 digits"})
	}

	if p.DocumentNumber == "" {
		errs = append(errs, FieldError{Field: "document_number", Message: "required"})
	} else if len(p.DocumentNumber) > 100 {
		errs = append(errs, FieldError{Field: "document_number", Message: "must be at most 100 characters"})
	}

	if p.DocumentDate == nil {
		errs = append(errs, FieldError{Field: "document_date", Message: "required"})
	}

	return errs
}

func (h *WebhookHandler) ReceiveBankWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read webhook body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("failed to parse webhook payload", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := payload.validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), service.IngestRequest{
		OperationID:    uuid.MustParse(payload.OperationID),
		Amount:         *payload.Amount,
		PayerINN:       payload.PayerINN,
		DocumentNumber: payload.DocumentNumber,
		DocumentDate:   *payload.DocumentDate,
	})
	if err != nil {
		log.Error("failed to process payment", "operation_id", payload.OperationID, "error", err)
		RespondDomainError(w, err)
		return
	}

	if result.Status == service.IngestDuplicate {
		RespondSuccess(w, http.StatusOK, map[string]any{
			"status":       "duplicate",
			"operation_id": result.OperationID,
		})
		return
	}

	RespondSuccess(w, http.StatusCreated, map[string]any{
		"status":           "success",
		"payment_id":       result.PaymentID,
		"organization_inn": result.OrganizationINN,
		"new_balance":      result.NewBalance,
	})
}
