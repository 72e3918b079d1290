package memory

import (
	portsrepo "github.com/theVJagrawal/expense-tracker/internal/core/ports/repositories"
)

func NewRepositoryProvider() portsrepo.RepositoryProvider {
	expenseRepo := newMemoryExpenseRepository()

	return portsrepo.RepositoryProvider{
		ExpenseRepo: expenseRepo,
	}
}
