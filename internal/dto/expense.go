package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/theVJagrawal/expense-tracker/internal/core/domain"
)

// SortDateDesc orders expenses by expense date, newest first.
const SortDateDesc = "date_desc"

// CreateExpenseRequest defines the data needed to record a new expense.
// The client generates clientRequestId once per logical submission and sends
// the same value on every retry so the server can deduplicate.
type CreateExpenseRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required,decimalpositive,decimalprecision"`
	Category        string          `json:"category" binding:"required,notblank,max=100"`
	Description     string          `json:"description" binding:"omitempty,max=500"` // Optional
	Date            domain.Date     `json:"date" binding:"required,pastorpresent"`
	ClientRequestID string          `json:"clientRequestId" binding:"required,min=10,max=100"`
}

// ExpenseResponse defines the data returned for an expense.
// Mirrors domain.Expense.
type ExpenseResponse struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Date            domain.Date     `json:"date"`
	CreatedAt       time.Time       `json:"createdAt"`
	ClientRequestID string          `json:"clientRequestId"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Category string `form:"category"`
	Sort     string `form:"sort" binding:"omitempty,oneof=date_desc"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ExpenseID,
		Amount:          e.Amount,
		Category:        e.Category,
		Description:     e.Description,
		Date:            e.ExpenseDate,
		CreatedAt:       e.CreatedAt,
		ClientRequestID: e.ClientRequestID,
	}
}

// ToListExpenseResponse converts a slice of domain.Expense to a slice of ExpenseResponse DTOs
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	res := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		res[i] = ToExpenseResponse(&e)
	}
	return res
}
