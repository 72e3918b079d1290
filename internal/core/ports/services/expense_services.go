package services

import (
	"context"

	"github.com/theVJagrawal/expense-tracker/internal/core/domain"
	"github.com/theVJagrawal/expense-tracker/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// ListExpenses retrieves expenses filtered and ordered according to params.
	ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error)

	// CountExpenses reports how many expenses are currently stored.
	CountExpenses(ctx context.Context) (int64, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// CreateExpense records a new expense, or returns the previously created
	// one when req carries an already-used client request token. The boolean
	// reports whether this call created the expense.
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest) (*domain.Expense, bool, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
// This is a facade for clients that need access to all operations
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
