// Package board holds the board data model and the pure functions that
// mutate it. Nothing in this package performs I/O or keeps state: every
// operation takes a Board snapshot and returns a new one.
package board

// Kind distinguishes a workflow board from a quarterly objectives board.
type Kind string

const (
	KindKanban Kind = "kanban"
	KindOKR    Kind = "okr"
)

// Chip is a small colored label shown on a card.
type Chip struct {
	Label      string `json:"label" yaml:"label"`
	ColorClass string `json:"colorClass,omitempty" yaml:"colorClass,omitempty"`
}

type Card struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	OwnerLabel  string   `json:"ownerLabel,omitempty" yaml:"ownerLabel,omitempty"`
	DueDate     string   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Metric      string   `json:"metric,omitempty" yaml:"metric,omitempty"`
	Highlight   string   `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Meta        string   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Progress    *float64 `json:"progress,omitempty" yaml:"progress,omitempty"` // percentage, 0-100 by convention
	Items       []string `json:"items,omitempty" yaml:"items,omitempty"`
	Chips       []Chip   `json:"chips,omitempty" yaml:"chips,omitempty"`
}

// Column is one workflow stage (or one period on an OKR board). Card order
// is top-to-bottom priority.
type Column struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Subtitle    string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	AccentColor string `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
	Highlight   string `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Cards       []Card `json:"cards" yaml:"cards"`
}

// Board is an ordered list of columns, left to right. Name is the board
// identifier: the board name for kanban boards, the quarter for OKR boards.
type Board struct {
	Name    string   `json:"name" yaml:"name"`
	Kind    Kind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// CardDraft carries the user-editable fields of a card.
type CardDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Owner       string   `json:"owner,omitempty"`
	OwnerLabel  string   `json:"ownerLabel,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Metric      string   `json:"metric,omitempty"`
	Highlight   string   `json:"highlight,omitempty"`
	Meta        string   `json:"meta,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
	Items       []string `json:"items,omitempty"`
	Chips       []Chip   `json:"chips,omitempty"`
}

func (d CardDraft) card(id string) Card {
	return cloneCard(Card{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Owner:       d.Owner,
		OwnerLabel:  d.OwnerLabel,
		DueDate:     d.DueDate,
		Metric:      d.Metric,
		Highlight:   d.Highlight,
		Meta:        d.Meta,
		Progress:    d.Progress,
		Items:       d.Items,
		Chips:       d.Chips,
	})
}

// CardCount returns the number of cards across all columns.
func (b Board) CardCount() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col.Cards)
	}
	return n
}

// CardIDs returns every card id in column order.
func (b Board) CardIDs() []string {
	ids := make([]string, 0, b.CardCount())
	for _, col := range b.Columns {
		for _, c := range col.Cards {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ColumnIDs returns the column ids in board order.
func (b Board) ColumnIDs() []string {
	ids := make([]string, 0, len(b.Columns))
	for _, col := range b.Columns {
		ids = append(ids, col.ID)
	}
	return ids
}

// CardIDs returns the ids of the column's cards, top to bottom.
func (c Column) CardIDs() []string {
	ids := make([]string, 0, len(c.Cards))
	for _, card := range c.Cards {
		ids = append(ids, card.ID)
	}
	return ids
}
