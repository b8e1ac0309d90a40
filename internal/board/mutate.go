package board

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// IDFunc produces candidate card ids.
type IDFunc func() string

// maxIDAttempts bounds how many candidates AddCardWith draws before giving up.
const maxIDAttempts = 8

// FindColumn returns the index of the column with the given id.
func FindColumn(b Board, columnID string) (int, bool) {
	for i, col := range b.Columns {
		if col.ID == columnID {
			return i, true
		}
	}
	return -1, false
}

// FindCard returns the column and card index of the card with the given id.
func FindCard(b Board, cardID string) (col, idx int, ok bool) {
	for ci, c := range b.Columns {
		if i := findCardIndex(c.Cards, cardID); i >= 0 {
			return ci, i, true
		}
	}
	return -1, -1, false
}

func findCardIndex(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

// MoveCard removes the card from the source column and inserts it at
// targetIndex in the target column. The index is clamped to the target
// column's length once the card has been removed, so moving a card back to
// the column and index it came from restores the original board.
//
// When the card is not in the source column, or the target column does not
// exist, b is returned unchanged.
func MoveCard(b Board, cardID, sourceColumnID, targetColumnID string, targetIndex int) Board {
	src, ok := FindColumn(b, sourceColumnID)
	if !ok {
		return b
	}
	dst, ok := FindColumn(b, targetColumnID)
	if !ok {
		return b
	}
	from := findCardIndex(b.Columns[src].Cards, cardID)
	if from < 0 {
		return b
	}
	if src == dst && from == targetIndex {
		return b
	}

	out := Clone(b)
	card := out.Columns[src].Cards[from]
	out.Columns[src].Cards = slices.Delete(out.Columns[src].Cards, from, from+1)
	cards := out.Columns[dst].Cards
	out.Columns[dst].Cards = slices.Insert(cards, clamp(targetIndex, 0, len(cards)), card)
	return out
}

// MoveColumn relocates a column within the board. targetIndex is clamped.
func MoveColumn(b Board, columnID string, targetIndex int) Board {
	from, ok := FindColumn(b, columnID)
	if !ok || from == targetIndex {
		return b
	}
	out := Clone(b)
	col := out.Columns[from]
	out.Columns = slices.Delete(out.Columns, from, from+1)
	out.Columns = slices.Insert(out.Columns, clamp(targetIndex, 0, len(out.Columns)), col)
	return out
}

// AddCard appends a new card built from draft to the end of the column,
// using a random UUID as its id.
func AddCard(b Board, columnID string, draft CardDraft) (Board, Card, error) {
	return AddCardWith(b, columnID, draft, uuid.NewString)
}

// AddCardWith is AddCard with an explicit id generator. Candidate ids are
// checked against every card and column id in the board.
func AddCardWith(b Board, columnID string, draft CardDraft, newID IDFunc) (Board, Card, error) {
	if draft.Title == "" {
		return b, Card{}, ErrEmptyTitle
	}
	ci, ok := FindColumn(b, columnID)
	if !ok {
		return b, Card{}, fmt.Errorf("%w: %s", ErrColumnNotFound, columnID)
	}

	taken := usedIDs(b)
	id := ""
	for range maxIDAttempts {
		candidate := newID()
		if _, dup := taken[candidate]; candidate != "" && !dup {
			id = candidate
			break
		}
	}
	if id == "" {
		return b, Card{}, ErrDuplicateID
	}

	card := draft.card(id)
	out := Clone(b)
	out.Columns[ci].Cards = append(out.Columns[ci].Cards, card)
	return out, cloneCard(card), nil
}

func usedIDs(b Board) map[string]struct{} {
	ids := make(map[string]struct{}, b.CardCount()+len(b.Columns))
	for _, col := range b.Columns {
		ids[col.ID] = struct{}{}
		for _, c := range col.Cards {
			ids[c.ID] = struct{}{}
		}
	}
	return ids
}

// UpdateCard replaces the display fields of a card, keeping its id and
// position.
func UpdateCard(b Board, cardID string, draft CardDraft) (Board, error) {
	if draft.Title == "" {
		return b, ErrEmptyTitle
	}
	ci, idx, ok := FindCard(b, cardID)
	if !ok {
		return b, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	out := Clone(b)
	out.Columns[ci].Cards[idx] = draft.card(cardID)
	return out, nil
}

// RemoveCard deletes the card wherever it is. Unknown ids leave b unchanged.
func RemoveCard(b Board, cardID string) Board {
	ci, idx, ok := FindCard(b, cardID)
	if !ok {
		return b
	}
	out := Clone(b)
	out.Columns[ci].Cards = slices.Delete(out.Columns[ci].Cards, idx, idx+1)
	return out
}
