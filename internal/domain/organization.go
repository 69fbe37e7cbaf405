package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Organization holds the running balance for a payer identified by its INN
// (tax identifier, 10 or 12 digits). Organizations are created lazily on the
// first payment referencing their INN and are never deleted.
type Organization struct {
	ID        uuid.UUID
	INN       string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidINN reports whether s is a well-formed INN: all ASCII digits,
// length 10 or 12.
func ValidINN(s string) bool {
	if len(s) != 10 && len(s) != 12 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
