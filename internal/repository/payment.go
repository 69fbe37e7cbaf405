package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finvold/bank-webhooks/internal/domain"
)

const paymentColumns = `id, operation_id, amount, payer_inn, document_number,
	document_date, created_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts the payment inside tx. The unique index on operation_id makes
// the insert fail for a duplicate delivery; callers must check the error with
// IsUniqueViolation and treat that as the duplicate outcome.
func (r *PaymentRepository) Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO payments (
			id, operation_id, amount, payer_inn, document_number, document_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OperationID, p.Amount, p.PayerINN,
		p.DocumentNumber, p.DocumentDate, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ExistsByOperationID is the fast-path duplicate probe. It is an optimization
// only: two concurrent deliveries can both pass it, so correctness rests on
// the unique index enforced at insert time.
func (r *PaymentRepository) ExistsByOperationID(ctx context.Context, operationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE operation_id = $1)`, operationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByOperationID: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepository) GetByOperationID(ctx context.Context, operationID uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE operation_id = $1`, operationID,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByOperationID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByOperationID: %w", err)
	}
	return p, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	err := s.Scan(
		&p.ID, &p.OperationID, &p.Amount, &p.PayerINN,
		&p.DocumentNumber, &p.DocumentDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
