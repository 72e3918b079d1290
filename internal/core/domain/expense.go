package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a single spending record. Expenses are immutable once
// created; a retry carrying the same ClientRequestID must observe the record
// produced by the first successful submission, never a second copy.
type Expense struct {
	ExpenseID       string          `json:"id"`              // Primary Key (UUID)
	Amount          decimal.Decimal `json:"amount"`          // Positive value; at most 2 fraction digits
	Category        string          `json:"category"`        // Trimmed; compared case-insensitively
	Description     string          `json:"description"`     // Trimmed; may be empty
	ExpenseDate     Date            `json:"date"`            // Day the expense occurred
	CreatedAt       time.Time       `json:"createdAt"`       // Server timestamp (UTC); sort tie-break
	ClientRequestID string          `json:"clientRequestId"` // Idempotency key (unique)
}
