package loan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, l *Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (Loan, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Loan), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, l *Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *mockRepo) ExistsActiveLoanForBook(ctx context.Context, bookID string) (bool, error) {
	args := m.Called(ctx, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Find(ctx context.Context, q Query) ([]Loan, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]Loan), args.Int(1), args.Error(2)
}

func (m *mockRepo) FindByBook(ctx context.Context, bookID string, limit, offset int) ([]Loan, int, error) {
	args := m.Called(ctx, bookID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]Loan), args.Int(1), args.Error(2)
}

func (m *mockRepo) FindOverdue(ctx context.Context, before time.Time) ([]Loan, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Loan), args.Error(1)
}

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newService(repo Repository) *Service {
	return NewService(repo, Config{LoanPeriodDays: 4, Now: fixedClock})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps loan date from clock", func(t *testing.T) {
		repo := new(mockRepo)
		s := newService(repo)

		repo.On("ExistsActiveLoanForBook", ctx, "b-1").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*loan.Loan")).Run(func(args mock.Arguments) {
			args.Get(1).(*Loan).ID = "l-1"
		}).Return(nil)

		l := Loan{BookID: "b-1", Customer: "Ana", CustomerEmail: "ana@example.com"}
		err := s.Create(ctx, &l)

		assert.NoError(t, err)
		assert.Equal(t, "l-1", l.ID)
		assert.Equal(t, fixedNow, l.LoanDate)
		assert.False(t, l.Returned)
		repo.AssertExpectations(t)
	})

	t.Run("book already on loan performs no write", func(t *testing.T) {
		repo := new(mockRepo)
		s := newService(repo)

		repo.On("ExistsActiveLoanForBook", ctx, "b-1").Return(true, nil)

		err := s.Create(ctx, &Loan{BookID: "b-1", Customer: "Bea"})

		assert.ErrorIs(t, err, ErrBookAlreadyLoaned)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("allows a new loan after the previous one was returned", func(t *testing.T) {
		repo := new(mockRepo)
		s := newService(repo)

		// Return workflow flips the flag, so the exclusivity check clears.
		repo.On("ExistsActiveLoanForBook", ctx, "b-1").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		err := s.Create(ctx, &Loan{BookID: "b-1", Customer: "Bea"})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("keeps an explicit loan date", func(t *testing.T) {
		repo := new(mockRepo)
		s := newService(repo)

		explicit := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		repo.On("ExistsActiveLoanForBook", ctx, "b-1").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		l := Loan{BookID: "b-1", Customer: "Ana", LoanDate: explicit}
		assert.NoError(t, s.Create(ctx, &l))
		assert.Equal(t, explicit, l.LoanDate)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("missing id is rejected", func(t *testing.T) {
		repo := new(mockRepo)
		s := newService(repo)

		assert.ErrorIs(t, s.Update(ctx, &Loan{}), ErrMissingID)
		assert.ErrorIs(t, s.Update(ctx, nil), ErrMissingID)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("persists the returned flag", func(t *testing.T) {
		repo := new(mockRepo)
		s := newService(repo)

		l := Loan{ID: "l-1", BookID: "b-1", Customer: "Ana", Returned: true}
		repo.On("Update", ctx, &l).Return(nil)

		assert.NoError(t, s.Update(ctx, &l))
		repo.AssertExpectations(t)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	s := newService(repo)

	stored := Loan{ID: "l-1", BookID: "b-1", Customer: "Ana", LoanDate: fixedNow}
	repo.On("GetByID", ctx, "l-1").Return(stored, nil)
	repo.On("GetByID", ctx, "missing").Return(Loan{}, ErrNotFound)

	got, err := s.GetByID(ctx, "l-1")
	assert.NoError(t, err)
	assert.Equal(t, stored, got)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Find(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	s := newService(repo)

	q := Query{ISBN: "123", Customer: "Ana", Limit: 10}
	repo.On("Find", ctx, q).Return([]Loan{{ID: "l-1"}}, 1, nil)

	loans, total, err := s.Find(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, loans, 1)
}

func TestService_Overdue(t *testing.T) {
	ctx := context.Background()

	t.Run("queries with the configured threshold", func(t *testing.T) {
		repo := new(mockRepo)
		s := newService(repo)

		wantThreshold := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
		repo.On("FindOverdue", ctx, wantThreshold).Return([]Loan{{ID: "l-1"}}, nil)

		loans, err := s.Overdue(ctx)

		assert.NoError(t, err)
		assert.Len(t, loans, 1)
		repo.AssertExpectations(t)
	})

	t.Run("defaults the loan period when unset", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, Config{Now: fixedClock})

		wantThreshold := fixedNow.AddDate(0, 0, -DefaultLoanPeriodDays)
		repo.On("FindOverdue", ctx, wantThreshold).Return(nil, nil)

		_, err := s.Overdue(ctx)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
