package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvold/bank-webhooks/internal/domain"
	"github.com/finvold/bank-webhooks/internal/logging"
	"github.com/finvold/bank-webhooks/internal/repository"
)

type paymentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error
	ExistsByOperationID(ctx context.Context, operationID uuid.UUID) (bool, error)
}

type organizationRepo interface {
	GetOrCreateForUpdate(ctx context.Context, tx *sql.Tx, inn string) (*domain.Organization, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error
}

type IngestStatus string

const (
	IngestApplied   IngestStatus = "applied"
	IngestDuplicate IngestStatus = "duplicate"
)

type IngestRequest struct {
	OperationID    uuid.UUID
	Amount         decimal.Decimal
	PayerINN       string
	DocumentNumber string
	DocumentDate   time.Time
}

type IngestResult struct {
	Status          IngestStatus
	OperationID     uuid.UUID
	PaymentID       uuid.UUID
	OrganizationINN string
	NewBalance      decimal.Decimal
}

// Ingestor applies bank payment notifications to organization balances. Each
// operation_id is applied exactly once: the payment insert and the balance
// credit share one transaction, and a unique-violation on the insert is the
// duplicate signal regardless of interleaving.
type Ingestor struct {
	payments paymentRepo
	orgs     organizationRepo
	db       *sql.DB
}

func NewIngestor(payments paymentRepo, orgs organizationRepo, db *sql.DB) *Ingestor {
	return &Ingestor{payments: payments, orgs: orgs, db: db}
}

func (s *Ingestor) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	log := logging.FromContext(ctx)

	if err := validateIngest(req); err != nil {
		return nil, fmt.Errorf("Ingest: %w", err)
	}

	// Fast path only. Two concurrent deliveries can both pass this check;
	// the unique index on operation_id settles the race at insert time.
	exists, err := s.payments.ExistsByOperationID(ctx, req.OperationID)
	if err != nil {
		return nil, fmt.Errorf("Ingest: %w", err)
	}
	if exists {
		log.Info("duplicate payment operation, skipping", "operation_id", req.OperationID)
		return &IngestResult{Status: IngestDuplicate, OperationID: req.OperationID}, nil
	}

	result, err := s.apply(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Ingest: %w", err)
	}

	if result.Status == IngestApplied {
		log.Info("payment processed",
			"operation_id", req.OperationID,
			"payment_id", result.PaymentID,
			"organization_inn", result.OrganizationINN,
			"amount", req.Amount,
			"new_balance", result.NewBalance,
		)
	} else {
		log.Info("duplicate payment operation, skipping", "operation_id", req.OperationID)
	}
	return result, nil
}

func (s *Ingestor) apply(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("apply: begin tx: %w", err)
	}
	defer tx.Rollback()

	org, err := s.orgs.GetOrCreateForUpdate(ctx, tx, req.PayerINN)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	now := time.Now().UTC()
	p := &domain.Payment{
		ID:             uuid.New(),
		OperationID:    req.OperationID,
		Amount:         req.Amount,
		PayerINN:       req.PayerINN,
		DocumentNumber: req.DocumentNumber,
		DocumentDate:   req.DocumentDate,
		CreatedAt:      now,
	}
	if err := s.payments.Create(ctx, tx, p); err != nil {
		if repository.IsUniqueViolation(err) {
			// A concurrent delivery won the insert. The deferred rollback
			// discards the attempted credit and any organization creation.
			return &IngestResult{Status: IngestDuplicate, OperationID: req.OperationID}, nil
		}
		return nil, fmt.Errorf("apply: create payment: %w", err)
	}

	newBalance := org.Balance.Add(req.Amount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("apply: balance %s after credit: %w", newBalance, domain.ErrInvariantViolation)
	}

	if err := s.orgs.UpdateBalance(ctx, tx, org.ID, newBalance, org.Version+1); err != nil {
		return nil, fmt.Errorf("apply: update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("apply: commit: %w", err)
	}

	return &IngestResult{
		Status:          IngestApplied,
		OperationID:     req.OperationID,
		PaymentID:       p.ID,
		OrganizationINN: org.INN,
		NewBalance:      newBalance,
	}, nil
}

func validateIngest(req IngestRequest) error {
	if req.OperationID == uuid.Nil {
		return fmt.Errorf("validateIngest: operation_id: %w", domain.ErrInvalidRequest)
	}
	if !domain.ValidINN(req.PayerINN) {
		return fmt.Errorf("validateIngest: payer_inn: %w", domain.ErrInvalidRequest)
	}
	if req.Amount.IsNegative() {
		return fmt.Errorf("validateIngest: negative amount: %w", domain.ErrInvariantViolation)
	}
	return nil
}
