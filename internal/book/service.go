package book

import (
	"context"
)

// Service owns the catalog business rules: isbn uniqueness on creation and
// identity checks on update/delete. Everything else delegates to the repository.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a new book. It fails with ErrDuplicateISBN when a book with
// the same isbn already exists; no write happens in that case.
func (s *Service) Create(ctx context.Context, b *Book) error {
	exists, err := s.repo.ExistsByISBN(ctx, b.ISBN)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateISBN
	}
	return s.repo.Create(ctx, b)
}

// GetByID returns a book by its id, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByISBN returns a book by its isbn, or ErrNotFound.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

// Update persists title and author of an existing book. The isbn is not
// re-validated through this path; callers must not mutate it here.
func (s *Service) Update(ctx context.Context, b *Book) error {
	if b == nil || b.ID == "" {
		return ErrMissingID
	}
	return s.repo.Update(ctx, b)
}

// Delete removes a book. Loans referencing it are kept as historical records.
func (s *Service) Delete(ctx context.Context, b *Book) error {
	if b == nil || b.ID == "" {
		return ErrMissingID
	}
	return s.repo.Delete(ctx, b.ID)
}

// Find returns a page of books matching the query plus the total match count.
func (s *Service) Find(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.Find(ctx, q)
}
