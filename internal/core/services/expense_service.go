package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theVJagrawal/expense-tracker/internal/apperrors"
	"github.com/theVJagrawal/expense-tracker/internal/core/domain"
	portsrepo "github.com/theVJagrawal/expense-tracker/internal/core/ports/repositories"
	portssvc "github.com/theVJagrawal/expense-tracker/internal/core/ports/services"
	"github.com/theVJagrawal/expense-tracker/internal/dto"
	"github.com/theVJagrawal/expense-tracker/internal/middleware"
)

// expenseService provides core expense operations.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
	}
}

// Ensure expenseService implements the portssvc.ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// CreateExpense records a new expense unless req.ClientRequestID was already
// used, in which case the expense from the first submission is returned
// unchanged and nothing is written. The payload of a retry is not compared
// against the stored expense; the first submission always wins.
// Implements portssvc.ExpenseWriterSvc
func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest) (*domain.Expense, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Idempotency check: resolved tokens are answered here without ever
	// touching the write path.
	existing, err := s.expenseRepo.FindExpenseByClientRequestID(ctx, req.ClientRequestID)
	if err == nil {
		logger.Debug("Expense already exists for client request ID, returning existing",
			slog.String("client_request_id", req.ClientRequestID),
			slog.String("expense_id", existing.ExpenseID))
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check client request ID", slog.String("error", err.Error()))
		return nil, false, fmt.Errorf("failed to check client request ID: %w", err)
	}

	// The factory runs inside the repository's critical section, so two
	// concurrent first submissions of one token build at most one expense.
	expense, created, err := s.expenseRepo.CreateExpenseIfAbsent(ctx, req.ClientRequestID, func() domain.Expense {
		return domain.Expense{
			ExpenseID:       uuid.NewString(),
			Amount:          req.Amount,
			Category:        strings.TrimSpace(req.Category),
			Description:     strings.TrimSpace(req.Description),
			ExpenseDate:     req.Date,
			CreatedAt:       time.Now().UTC(),
			ClientRequestID: req.ClientRequestID,
		}
	})
	if err != nil {
		logger.Error("Failed to create expense", slog.String("error", err.Error()), slog.String("client_request_id", req.ClientRequestID))
		return nil, false, fmt.Errorf("failed to create expense: %w", err)
	}

	if created {
		logger.Info("Created expense",
			slog.String("expense_id", expense.ExpenseID),
			slog.String("amount", expense.Amount.String()),
			slog.String("category", expense.Category))
	} else {
		logger.Debug("Expense already exists for client request ID, returning existing",
			slog.String("client_request_id", req.ClientRequestID),
			slog.String("expense_id", expense.ExpenseID))
	}

	return expense, created, nil
}

// ListExpenses returns expenses matching params. Without a sort mode the
// creation order is preserved; with dto.SortDateDesc the result is ordered by
// expense date descending, ties broken by createdAt descending so same-day
// expenses keep a deterministic order across calls.
// Implements portssvc.ExpenseReaderSvc
func (s *expenseService) ListExpenses(ctx context.Context, params dto.ListExpensesParams) ([]domain.Expense, error) {
	if params.Sort != "" && params.Sort != dto.SortDateDesc {
		return nil, fmt.Errorf("%w: unsupported sort mode %q", apperrors.ErrValidation, params.Sort)
	}

	// A blank filter means no filter.
	category := params.Category
	if strings.TrimSpace(category) == "" {
		category = ""
	}

	expenses, err := s.expenseRepo.ListExpenses(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	if params.Sort == dto.SortDateDesc {
		sort.SliceStable(expenses, func(i, j int) bool {
			a, b := expenses[i], expenses[j]
			if a.ExpenseDate.Equal(b.ExpenseDate.Time) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ExpenseDate.After(b.ExpenseDate.Time)
		})
	}

	return expenses, nil
}

// CountExpenses reports how many expenses are currently stored.
// Implements portssvc.ExpenseReaderSvc
func (s *expenseService) CountExpenses(ctx context.Context) (int64, error) {
	count, err := s.expenseRepo.CountExpenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}
