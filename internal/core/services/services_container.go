package services

import (
	portsrepo "github.com/theVJagrawal/expense-tracker/internal/core/ports/repositories"
	portssvc "github.com/theVJagrawal/expense-tracker/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Expense = NewExpenseService(repos.ExpenseRepo)

	return container
}
