package loan

import (
	"errors"
	"time"

	"lendingapi/internal/book"
)

// ErrNotFound is returned when a loan is not found.
var ErrNotFound = errors.New("loan not found")

// ErrBookAlreadyLoaned is returned when creating a loan for a book that
// already has an active (unreturned) loan.
var ErrBookAlreadyLoaned = errors.New("book already loaned")

// ErrMissingID is returned by update when the loan carries no id.
var ErrMissingID = errors.New("loan id must not be empty")

// Loan represents a lending record. Loans are never deleted; returning a book
// flips Returned to true and the row stays as history.
type Loan struct {
	ID            string     `json:"id"`
	BookID        string     `json:"book_id"`
	Book          *book.Book `json:"book,omitempty"`
	Customer      string     `json:"customer"`
	CustomerEmail string     `json:"customer_email"`
	LoanDate      time.Time  `json:"loan_date"`
	Returned      bool       `json:"returned"`
}

// Query defines filters and pagination for searching loans. A loan matches
// when its book's isbn contains ISBN or its customer name contains Customer,
// case-insensitively; empty fields are wildcards.
type Query struct {
	ISBN     string
	Customer string
	Limit    int
	Offset   int
}

// Config carries the lending policy. Now is injectable so tests can use a
// fixed clock.
type Config struct {
	LoanPeriodDays int
	Now            func() time.Time
}

// DefaultLoanPeriodDays is the loan window after which an unreturned loan
// counts as overdue.
const DefaultLoanPeriodDays = 4

func (c Config) withDefaults() Config {
	if c.LoanPeriodDays <= 0 {
		c.LoanPeriodDays = DefaultLoanPeriodDays
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
