package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finvold/bank-webhooks/internal/domain"
)

func SeedOrganization(t *testing.T, db *sql.DB, inn string, balance decimal.Decimal) *domain.Organization {
	t.Helper()

	now := time.Now().UTC()
	o := &domain.Organization{
		ID:        uuid.New(),
		INN:       inn,
		Balance:   balance,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.Exec(
		`INSERT INTO organizations (id, inn, balance, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.INN, o.Balance, o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed organization %s: %v", inn, err)
	}
	return o
}

func GetOrganizationBalance(t *testing.T, db *sql.DB, inn string) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM organizations WHERE inn = $1`, inn).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance for %s: %v", inn, err)
	}
	return balance
}

func CountOrganizations(t *testing.T, db *sql.DB, inn string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM organizations WHERE inn = $1`, inn).Scan(&count)
	if err != nil {
		t.Fatalf("count organizations with inn %s: %v", inn, err)
	}
	return count
}

func CountPayments(t *testing.T, db *sql.DB, operationID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM payments WHERE operation_id = $1`, operationID).Scan(&count)
	if err != nil {
		t.Fatalf("count payments for operation %s: %v", operationID, err)
	}
	return count
}

func SumPayments(t *testing.T, db *sql.DB, inn string) decimal.Decimal {
	t.Helper()

	var sum decimal.Decimal
	err := db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE payer_inn = $1`, inn,
	).Scan(&sum)
	if err != nil {
		t.Fatalf("sum payments for %s: %v", inn, err)
	}
	return sum
}
