package memory

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/theVJagrawal/expense-tracker/internal/apperrors"
	"github.com/theVJagrawal/expense-tracker/internal/core/domain"
	portsrepo "github.com/theVJagrawal/expense-tracker/internal/core/ports/repositories"
)

// MemoryExpenseRepository keeps all expenses in process memory. The token
// index is a sync.Map, so lookups for already-created expenses never contend.
// The ordered log is a copy-on-write slice published through an atomic.Value,
// so listing iterates a stable snapshot while creates proceed. The mutex
// covers only the write path: both structures are updated under it, keeping
// the invariant that a token is in the index if and only if its expense is in
// the log exactly once.
type MemoryExpenseRepository struct {
	mu      sync.Mutex   // serializes creates; reads never take it
	byToken sync.Map     // clientRequestID -> *domain.Expense
	ordered atomic.Value // []domain.Expense in creation order, replaced on append
}

// newMemoryExpenseRepository creates an empty in-memory expense repository.
func newMemoryExpenseRepository() portsrepo.ExpenseRepositoryFacade {
	r := &MemoryExpenseRepository{}
	r.ordered.Store([]domain.Expense{})
	return r
}

// Ensure MemoryExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*MemoryExpenseRepository)(nil)

// FindExpenseByClientRequestID returns the expense created for the given
// token, or apperrors.ErrNotFound. It reads the index without locking.
func (r *MemoryExpenseRepository) FindExpenseByClientRequestID(ctx context.Context, clientRequestID string) (*domain.Expense, error) {
	if v, ok := r.byToken.Load(clientRequestID); ok {
		found := *v.(*domain.Expense)
		return &found, nil
	}
	return nil, apperrors.ErrNotFound
}

// CreateExpenseIfAbsent claims clientRequestID and stores the expense built by
// build, or returns the already-stored expense when the token was claimed
// earlier. The double check under the mutex resolves the race between two
// concurrent first submissions of the same token: exactly one invokes build.
func (r *MemoryExpenseRepository) CreateExpenseIfAbsent(ctx context.Context, clientRequestID string, build func() domain.Expense) (*domain.Expense, bool, error) {
	// Fast path: a completed create for this token is visible without locking.
	if v, ok := r.byToken.Load(clientRequestID); ok {
		found := *v.(*domain.Expense)
		return &found, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have claimed the token between the lookup above
	// and acquiring the mutex.
	if v, ok := r.byToken.Load(clientRequestID); ok {
		found := *v.(*domain.Expense)
		return &found, false, nil
	}

	expense := build()

	current := r.ordered.Load().([]domain.Expense)
	next := make([]domain.Expense, len(current), len(current)+1)
	copy(next, current)
	next = append(next, expense)

	// Publish the log before the index so a token hit always implies the
	// expense is already listable.
	r.ordered.Store(next)
	r.byToken.Store(clientRequestID, &expense)

	return &expense, true, nil
}

// ListExpenses returns a snapshot of expenses in creation order. A non-empty
// category narrows the result to case-insensitive matches. Concurrent creates
// never block the iteration and never mutate the returned slice.
func (r *MemoryExpenseRepository) ListExpenses(ctx context.Context, category string) ([]domain.Expense, error) {
	snapshot := r.ordered.Load().([]domain.Expense)

	if category == "" {
		out := make([]domain.Expense, len(snapshot))
		copy(out, snapshot)
		return out, nil
	}

	out := make([]domain.Expense, 0, len(snapshot))
	for _, e := range snapshot {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out, nil
}

// CountExpenses reports how many expenses are currently stored.
func (r *MemoryExpenseRepository) CountExpenses(ctx context.Context) (int64, error) {
	return int64(len(r.ordered.Load().([]domain.Expense))), nil
}
