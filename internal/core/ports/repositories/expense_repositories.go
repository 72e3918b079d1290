package repositories

import (
	"context"

	"github.com/theVJagrawal/expense-tracker/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByClientRequestID retrieves the expense created for a client
	// request token. Returns apperrors.ErrNotFound when no expense carries it.
	FindExpenseByClientRequestID(ctx context.Context, clientRequestID string) (*domain.Expense, error)

	// ListExpenses retrieves a point-in-time snapshot of expenses in creation
	// order, optionally narrowed to a category (compared case-insensitively).
	// The returned slice is owned by the caller.
	ListExpenses(ctx context.Context, category string) ([]domain.Expense, error)

	// CountExpenses reports how many expenses are currently stored.
	CountExpenses(ctx context.Context) (int64, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// CreateExpenseIfAbsent atomically claims clientRequestID and stores the
	// expense produced by build. When the token is already claimed, the stored
	// expense is returned unchanged with created=false and build is not invoked.
	// Two concurrent calls with the same token never both report created=true.
	CreateExpenseIfAbsent(ctx context.Context, clientRequestID string, build func() domain.Expense) (*domain.Expense, bool, error)
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
// This is a facade for clients that need access to all operations
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
