package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finvold/bank-webhooks/internal/domain"
	"github.com/finvold/bank-webhooks/internal/service"
)

type mockIngestor struct {
	result *service.IngestResult
	err    error
	got    *service.IngestRequest
}

func (m *mockIngestor) Ingest(_ context.Context, req service.IngestRequest) (*service.IngestResult, error) {
	m.got = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func validWebhookBody() string {
	return fmt.Sprintf(`{
		"operation_id": %q,
		"amount": "145.50",
		"payer_inn": "1234567890",
		"document_number": "PAY-328",
		"document_date": "2026-03-14T10:30:00Z"
	}`, uuid.NewString())
}

func postWebhook(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/bank", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ReceiveBankWebhook(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestReceiveBankWebhook_Applied(t *testing.T) {
	opID := uuid.New()
	paymentID := uuid.New()
	mock := &mockIngestor{result: &service.IngestResult{
		Status:          service.IngestApplied,
		OperationID:     opID,
		PaymentID:       paymentID,
		OrganizationINN: "1234567890",
		NewBalance:      decimal.RequireFromString("145.50"),
	}}
	h := NewWebhookHandler(mock)

	body := fmt.Sprintf(`{
		"operation_id": %q,
		"amount": 145.50,
		"payer_inn": "1234567890",
		"document_number": "PAY-328",
		"document_date": "2026-03-14T10:30:00Z"
	}`, opID)
	rec := postWebhook(t, h, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "success", data["status"])
	assert.Equal(t, paymentID.String(), data["payment_id"])
	assert.Equal(t, "1234567890", data["organization_inn"])

	require.NotNil(t, mock.got)
	assert.Equal(t, opID, mock.got.OperationID)
	assert.True(t, mock.got.Amount.Equal(decimal.RequireFromString("145.50")))
	assert.Equal(t, "PAY-328", mock.got.DocumentNumber)
}

func TestReceiveBankWebhook_Duplicate(t *testing.T) {
	opID := uuid.New()
	mock := &mockIngestor{result: &service.IngestResult{
		Status:      service.IngestDuplicate,
		OperationID: opID,
	}}
	h := NewWebhookHandler(mock)

	body := fmt.Sprintf(`{
		"operation_id": %q,
		"amount": "145.50",
		"payer_inn": "1234567890",
		"document_number": "PAY-328",
		"document_date": "2026-03-14T10:30:00Z"
	}`, opID)
	rec := postWebhook(t, h, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "duplicate", data["status"])
	assert.Equal(t, opID.String(), data["operation_id"])
}

func TestReceiveBankWebhook_MalformedJSON(t *testing.T) {
	h := NewWebhookHandler(&mockIngestor{})

	rec := postWebhook(t, h, `{"operation_id": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestReceiveBankWebhook_Validation(t *testing.T) {
	tests := []struct {
		name  string
		mutip func(m map[string]any)
		field string
	}{
		{"missing operation_id", func(m map[string]any) { delete(m, "operation_id") }, "operation_id"},
		{"bad operation_id", func(m map[string]any) { m["operation_id"] = "not-a-uuid" }, "operation_id"},
		{"missing amount", func(m map[string]any) { delete(m, "amount") }, "amount"},
		{"negative amount", func(m map[string]any) { m["amount"] = "-5.00" }, "amount"},
		{"too many decimal places", func(m map[string]any) { m["amount"] = "5.001" }, "amount"},
		{"amount too large", func(m map[string]any) { m["amount"] = "10000000000000.00" }, "amount"},
		{"missing payer_inn", func(m map[string]any) { delete(m, "payer_inn") }, "payer_inn"},
		{"short payer_inn", func(m map[string]any) { m["payer_inn"] = "12345" }, "payer_inn"},
		{"11 digit payer_inn", func(m map[string]any) { m["payer_inn"] = "12345678901" }, "payer_inn"},
		{"non-digit payer_inn", func(m map[string]any) { m["payer_inn"] = "12345678xy" }, "payer_inn"},
		{"missing document_number", func(m map[string]any) { delete(m, "document_number") }, "document_number"},
		{"long document_number", func(m map[string]any) { m["document_number"] = strings.Repeat("x", 101) }, "document_number"},
		{"missing document_date", func(m map[string]any) { delete(m, "document_date") }, "document_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockIngestor{}
			h := NewWebhookHandler(mock)

			payload := map[string]any{
				"operation_id":    uuid.NewString(),
				"amount":          "145.50",
				"payer_inn":       "1234567890",
				"document_number": "PAY-328",
				"document_date":   "2026-03-14T10:30:00Z",
			}
			tt.mutip(payload)
			body, _ := json.Marshal(payload)

			rec := postWebhook(t, h, string(body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
			assert.Nil(t, mock.got, "engine must not be invoked on invalid input")

			details, _ := json.Marshal(resp.Error.Details)
			assert.Contains(t, string(details), tt.field)
		})
	}
}

func TestReceiveBankWebhook_ZeroAmountAccepted(t *testing.T) {
	opID := uuid.New()
	mock := &mockIngestor{result: &service.IngestResult{
		Status:          service.IngestApplied,
		OperationID:     opID,
		PaymentID:       uuid.New(),
		OrganizationINN: "1234567890",
		NewBalance:      decimal.Zero,
	}}
	h := NewWebhookHandler(mock)

	body := fmt.Sprintf(`{
		"operation_id": %q,
		"amount": "0.00",
		"payer_inn": "1234567890",
		"document_number": "PAY-328",
		"document_date": "2026-03-14T10:30:00Z"
	}`, opID)
	rec := postWebhook(t, h, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, mock.got)
	assert.True(t, mock.got.Amount.IsZero())
}

func TestReceiveBankWebhook_ProcessingErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invariant violation", domain.ErrInvariantViolation, http.StatusUnprocessableEntity, "PROCESSING_FAILED"},
		{"storage failure", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebhookHandler(&mockIngestor{err: tt.err})

			rec := postWebhook(t, h, validWebhookBody())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
