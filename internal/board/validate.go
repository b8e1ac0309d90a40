package board

import "fmt"

// Validate checks the structural invariants of a board: a name, non-empty
// column ids, titled cards and ids that are unique across the whole board,
// columns and cards sharing one id space.
func Validate(b Board) error {
	if b.Name == "" {
		return fmt.Errorf("%w: board name is empty", ErrInvalidBoard)
	}
	switch b.Kind {
	case "", KindKanban, KindOKR:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBoard, b.Kind)
	}

	columns := make(map[string]struct{}, len(b.Columns))
	cards := make(map[string]string, b.CardCount())
	for _, col := range b.Columns {
		if col.ID == "" {
			return fmt.Errorf("%w: column with empty id", ErrInvalidBoard)
		}
		if _, dup := columns[col.ID]; dup {
			return fmt.Errorf("%w: duplicate column id %q", ErrInvalidBoard, col.ID)
		}
		columns[col.ID] = struct{}{}

		for _, c := range col.Cards {
			if c.ID == "" {
				return fmt.Errorf("%w: card with empty id in column %q", ErrInvalidBoard, col.ID)
			}
			if c.Title == "" {
				return fmt.Errorf("%w: card %q has no title", ErrInvalidBoard, c.ID)
			}
			if other, dup := cards[c.ID]; dup {
				return fmt.Errorf("%w: card id %q appears in columns %q and %q", ErrInvalidBoard, c.ID, other, col.ID)
			}
			cards[c.ID] = col.ID
		}
	}
	// drag targets are looked up by id, so a card may not shadow a column
	for _, col := range b.Columns {
		for _, c := range col.Cards {
			if _, clash := columns[c.ID]; clash {
				return fmt.Errorf("%w: card id %q is also a column id", ErrInvalidBoard, c.ID)
			}
		}
	}
	return nil
}
