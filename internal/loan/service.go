package loan

import (
	"context"
)

// Service owns the ledger business rules. The central one: a book may have at
// most one active loan at a time. The service checks before inserting and the
// storage layer backs the check with a partial unique index, so two concurrent
// creates for the same book cannot both succeed.
type Service struct {
	repo Repository
	cfg  Config
}

// NewService creates a new loan service with the given lending policy.
func NewService(repo Repository, cfg Config) *Service {
	return &Service{repo: repo, cfg: cfg.withDefaults()}
}

// Create registers a loan-out. It fails with ErrBookAlreadyLoaned when the
// book already has an unreturned loan; no write happens in that case. The
// loan date defaults to the configured clock when unset.
func (s *Service) Create(ctx context.Context, l *Loan) error {
	active, err := s.repo.ExistsActiveLoanForBook(ctx, l.BookID)
	if err != nil {
		return err
	}
	if active {
		return ErrBookAlreadyLoaned
	}
	if l.LoanDate.IsZero() {
		l.LoanDate = s.cfg.Now()
	}
	return s.repo.Create(ctx, l)
}

// GetByID returns a loan by its id, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (Loan, error) {
	return s.repo.GetByID(ctx, id)
}

// Update persists the supplied loan state unconditionally. The return
// workflow uses it: the caller flips Returned and calls Update. Exclusivity
// is not re-checked here; it is enforced again on the next Create.
func (s *Service) Update(ctx context.Context, l *Loan) error {
	if l == nil || l.ID == "" {
		return ErrMissingID
	}
	return s.repo.Update(ctx, l)
}

// Find returns a page of loans matching the query plus the total match count.
// The isbn and customer conditions combine with OR: the filter's intended use
// is "loans touching either this book or this customer".
func (s *Service) Find(ctx context.Context, q Query) ([]Loan, int, error) {
	return s.repo.Find(ctx, q)
}

// FindByBook returns a page of loans referencing the given book.
func (s *Service) FindByBook(ctx context.Context, bookID string, limit, offset int) ([]Loan, int, error) {
	return s.repo.FindByBook(ctx, bookID, limit, offset)
}

// Overdue returns every unreturned loan whose loan date is older than the
// configured loan period. Returned loans never count, regardless of date.
func (s *Service) Overdue(ctx context.Context) ([]Loan, error) {
	threshold := s.cfg.Now().AddDate(0, 0, -s.cfg.LoanPeriodDays)
	return s.repo.FindOverdue(ctx, threshold)
}
