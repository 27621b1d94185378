package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lendingapi/internal/book"
)

const uniqueViolation = "23505"

// selectColumns joins books so callers get the referenced book for display.
// The join is LEFT: a book may have been deleted while its loans remain.
const selectColumns = `
	SELECT l.id, l.book_id, l.customer, l.customer_email, l.loan_date, l.returned,
	       b.id, b.title, b.author, b.isbn
	FROM loans l
	LEFT JOIN books b ON b.id = l.book_id`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Create(ctx context.Context, l *Loan) error {
	const sql = `
		INSERT INTO loans (book_id, customer, customer_email, loan_date, returned)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql, l.BookID, l.Customer, l.CustomerEmail, l.LoanDate).
		Scan(&l.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Partial unique index on (book_id) WHERE NOT returned: the race
			// between the existence check and this insert resolves here.
			return ErrBookAlreadyLoaned
		}
		return err
	}
	l.Returned = false
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Loan, error) {
	query := selectColumns + `
	WHERE l.id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	l, err := scanLoan(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Loan{}, ErrNotFound
		}
		return Loan{}, err
	}
	return l, nil
}

func (r *PostgresRepo) Update(ctx context.Context, l *Loan) error {
	const sql = `
		UPDATE loans
		SET customer = $1, customer_email = $2, loan_date = $3, returned = $4
		WHERE id = $5`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, sql, l.Customer, l.CustomerEmail, l.LoanDate, l.Returned, l.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ExistsActiveLoanForBook(ctx context.Context, bookID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM loans WHERE book_id = $1 AND NOT returned)`

	var exists bool
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query, bookID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresRepo) Find(ctx context.Context, q Query) ([]Loan, int, error) {
	conds := []string{}
	args := []any{}
	argn := 1

	if q.ISBN != "" {
		conds = append(conds, fmt.Sprintf("b.isbn ILIKE $%d", argn))
		args = append(args, "%"+q.ISBN+"%")
		argn++
	}

	if q.Customer != "" {
		conds = append(conds, fmt.Sprintf("l.customer ILIKE $%d", argn))
		args = append(args, "%"+q.Customer+"%")
		argn++
	}

	where := ""
	if len(conds) > 0 {
		// OR across the conditions: a loan matches on either its book's isbn
		// or its customer name.
		where = "WHERE (" + strings.Join(conds, " OR ") + ")"
	}

	return r.findPage(ctx, where, args, argn, q.Limit, q.Offset)
}

func (r *PostgresRepo) FindByBook(ctx context.Context, bookID string, limit, offset int) ([]Loan, int, error) {
	return r.findPage(ctx, "WHERE l.book_id = $1", []any{bookID}, 2, limit, offset)
}

func (r *PostgresRepo) findPage(ctx context.Context, where string, args []any, argn, limit, offset int) ([]Loan, int, error) {
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM loans l LEFT JOIN books b ON b.id = l.book_id %s", where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`%s
	%s
	ORDER BY l.loan_date DESC, l.id
	LIMIT $%d OFFSET $%d`, selectColumns, where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, limit, offset)
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectLoans(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepo) FindOverdue(ctx context.Context, before time.Time) ([]Loan, error) {
	query := selectColumns + `
	WHERE NOT l.returned AND l.loan_date < $1
	ORDER BY l.loan_date ASC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows)
}

func collectLoans(rows pgx.Rows) ([]Loan, error) {
	var out []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLoan(row pgx.Row) (Loan, error) {
	var l Loan
	var bookID, title, author, isbn *string
	err := row.Scan(
		&l.ID, &l.BookID, &l.Customer, &l.CustomerEmail, &l.LoanDate, &l.Returned,
		&bookID, &title, &author, &isbn,
	)
	if err != nil {
		return Loan{}, err
	}
	if bookID != nil {
		l.Book = &book.Book{ID: *bookID, Title: *title, Author: *author, ISBN: *isbn}
	}
	return l, nil
}
