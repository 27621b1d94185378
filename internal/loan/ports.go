package loan

import (
	"context"
	"time"
)

// Repository defines the contract for loan data storage.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id string) (Loan, error)
	Update(ctx context.Context, l *Loan) error
	ExistsActiveLoanForBook(ctx context.Context, bookID string) (bool, error)
	Find(ctx context.Context, q Query) ([]Loan, int, error)
	FindByBook(ctx context.Context, bookID string, limit, offset int) ([]Loan, int, error)
	FindOverdue(ctx context.Context, before time.Time) ([]Loan, error)
}
