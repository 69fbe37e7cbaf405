package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is the durable record of one bank notification. A row with a given
// OperationID existing is the permanent proof that its amount has been
// credited to the payer's organization; rows are never mutated or deleted.
type Payment struct {
	ID             uuid.UUID
	OperationID    uuid.UUID
	Amount         decimal.Decimal
	PayerINN       string
	DocumentNumber string
	DocumentDate   time.Time
	CreatedAt      time.Time
}
