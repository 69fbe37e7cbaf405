package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvold/bank-webhooks/internal/domain"
)

const organizationColumns = `id, inn, balance, version, created_at, updated_at`

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetByINN(ctx context.Context, inn string) (*domain.Organization, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE inn = $1`, inn,
	)
	o, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByINN: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByINN: %w", err)
	}
	return o, nil
}

// GetOrCreateForUpdate resolves the organization for inn inside tx, creating
// it with a zero balance if it does not exist, and returns it with its row
// locked. ON CONFLICT DO NOTHING keeps the transaction healthy when another
// transaction creates the same INN concurrently; the locked re-select then
// observes whichever row won.
func (r *OrganizationRepository) GetOrCreateForUpdate(ctx context.Context, tx *sql.Tx, inn string) (*domain.Organization, error) {
	now := time.Now().UTC()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO organizations (id, inn, balance, version, created_at, updated_at)
		VALUES ($1, $2, 0, 0, $3, $3)
		ON CONFLICT (inn) DO NOTHING`,
		uuid.New(), inn, now,
	)
	if err != nil {
		return nil, fmt.Errorf("GetOrCreateForUpdate: insert: %w", err)
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE inn = $1 FOR UPDATE`, inn,
	)
	o, err := scanOrganization(row)
	if err != nil {
		return nil, fmt.Errorf("GetOrCreateForUpdate: select: %w", err)
	}
	return o, nil
}

func (r *OrganizationRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE organizations SET balance = $1, version = $2, updated_at = now()
		WHERE id = $3 AND version = $4`,
		newBalance, newVersion, id, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	return nil
}

func scanOrganization(s scanner) (*domain.Organization, error) {
	var o domain.Organization
	err := s.Scan(&o.ID, &o.INN, &o.Balance, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
