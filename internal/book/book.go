package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// ErrDuplicateISBN is returned when creating a book whose isbn is already registered.
var ErrDuplicateISBN = errors.New("isbn already registered")

// ErrMissingID is returned by update/delete when the book carries no id.
var ErrMissingID = errors.New("book id must not be empty")

// Book represents a book entity. The ID is assigned by storage on creation
// and is immutable afterwards.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Query defines filters and pagination for searching books. Empty fields are
// wildcards; non-empty fields match case-insensitively as substrings.
type Query struct {
	Title  string
	Author string
	ISBN   string
	Limit  int
	Offset int
}
