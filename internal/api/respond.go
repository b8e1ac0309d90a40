package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gmllt/prepboard/internal/board"
	"github.com/gmllt/prepboard/internal/boardview"
	"github.com/gmllt/prepboard/internal/store"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

var errInvalidBody = errors.New("invalid JSON body")

func decodeBody(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// mapError translates domain errors into an HTTP status and error code.
func mapError(err error) (status int, code string) {
	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "INVALID_BODY"
	case errors.Is(err, boardview.ErrInvalidName):
		return http.StatusBadRequest, "INVALID_BOARD_NAME"
	case errors.Is(err, board.ErrEmptyTitle):
		return http.StatusBadRequest, "EMPTY_TITLE"
	case errors.Is(err, boardview.ErrUnknownBoard), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "BOARD_NOT_FOUND"
	case errors.Is(err, board.ErrColumnNotFound):
		return http.StatusNotFound, "COLUMN_NOT_FOUND"
	case errors.Is(err, board.ErrCardNotFound):
		return http.StatusNotFound, "CARD_NOT_FOUND"
	case errors.Is(err, board.ErrDuplicateID):
		return http.StatusConflict, "DUPLICATE_ID"
	case errors.Is(err, board.ErrInvalidBoard), errors.Is(err, boardview.ErrNameMismatch):
		return http.StatusUnprocessableEntity, "INVALID_BOARD"
	default:
		return http.StatusInternalServerError, "SERVER_ERROR"
	}
}
