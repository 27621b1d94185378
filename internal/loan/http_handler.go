package loan

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lendingapi/internal/book"
	"lendingapi/internal/httpx"
)

// HTTPHandler maps the loan endpoints onto the ledger. It also needs the book
// catalog: a loan request carries an isbn, and the handler resolves it to a
// book before asking the ledger to lend it out.
type HTTPHandler struct {
	service *Service
	books   *book.Service
}

func NewHTTPHandler(service *Service, books *book.Service) *HTTPHandler {
	return &HTTPHandler{service: service, books: books}
}

type createLoanRequest struct {
	ISBN     string `json:"isbn" validate:"required"`
	Customer string `json:"customer" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

type returnLoanRequest struct {
	Returned bool `json:"returned"`
}

// Create handles POST /loans
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request validation failed", details)
		return
	}

	b, err := h.books.GetByISBN(r.Context(), req.ISBN)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, http.StatusBadRequest, "UNKNOWN_ISBN", "Book not found for passed isbn", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	log.Printf("creating a loan for isbn %s", b.ISBN)

	l := Loan{BookID: b.ID, Customer: req.Customer, CustomerEmail: req.Email}
	if err := h.service.Create(r.Context(), &l); err != nil {
		if errors.Is(err, ErrBookAlreadyLoaned) {
			httpx.JSONError(w, http.StatusConflict, "BOOK_ALREADY_LOANED", "Book already loaned", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	l.Book = &b
	httpx.JSONSuccessCreated(w, l)
}

// Return handles PATCH /loans/{id}
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req returnLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return
	}

	l, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Loan not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	l.Returned = req.Returned
	if err := h.service.Update(r.Context(), &l); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, l, nil)
}

// Find handles GET /loans
func (h *HTTPHandler) Find(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		ISBN:     query.Get("isbn"),
		Customer: query.Get("customer"),
	}

	page, pageSize := httpx.PageParams(query)
	params.Limit = pageSize
	params.Offset = (page - 1) * pageSize

	loans, total, err := h.service.Find(r.Context(), params)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, loans, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// ListByBook handles GET /books/{id}/loans
func (h *HTTPHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b, err := h.books.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	page, pageSize := httpx.PageParams(r.URL.Query())
	loans, total, err := h.service.FindByBook(r.Context(), b.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, loans, map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}
