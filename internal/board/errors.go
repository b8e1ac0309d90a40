package board

import "errors"

var (
	// Validation errors
	ErrEmptyTitle   = errors.New("card title cannot be empty")
	ErrInvalidBoard = errors.New("invalid board")

	// Lookup errors
	ErrColumnNotFound = errors.New("column not found")
	ErrCardNotFound   = errors.New("card not found")

	// ErrDuplicateID means the id generator kept returning ids already
	// present in the board.
	ErrDuplicateID = errors.New("generated card id collides with an existing id")
)
