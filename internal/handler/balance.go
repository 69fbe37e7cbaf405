package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/finvold/bank-webhooks/internal/domain"
	"github.com/finvold/bank-webhooks/internal/logging"
)

type organizationReader interface {
	GetByINN(ctx context.Context, inn string) (*domain.Organization, error)
}

type BalanceHandler struct {
	orgs organizationReader
}

func NewBalanceHandler(orgs organizationReader) *BalanceHandler {
	return &BalanceHandler{orgs: orgs}
}

type balanceDTO struct {
	INN     string          `json:"inn"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inn := r.PathValue("inn")
	if !domain.ValidINN(inn) {
		RespondValidationError(w, []FieldError{{Field: "inn", Message: "must be 10 or 12 digits"}})
		return
	}

	org, err := h.orgs.GetByINN(r.Context(), inn)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to fetch balance", "inn", inn, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceDTO{INN: org.INN, Balance: org.Balance})
}
