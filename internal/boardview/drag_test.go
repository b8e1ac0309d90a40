package boardview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gmllt/prepboard/internal/board"
)

func card(id string) board.Card { return board.Card{ID: id, Title: id} }

func testBoard() board.Board {
	return board.Board{
		Name: "prep",
		Kind: board.KindKanban,
		Columns: []board.Column{
			{ID: "backlog", Title: "Backlog", Cards: []board.Card{card("A"), card("B"), card("C")}},
			{ID: "doing", Title: "Doing", Cards: []board.Card{card("D")}},
			{ID: "done", Title: "Done"},
		},
	}
}

func cardsOf(b board.Board) map[string][]string {
	out := make(map[string][]string, len(b.Columns))
	for _, col := range b.Columns {
		out[col.ID] = col.CardIDs()
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		intent      DragIntent
		wantChanged bool
		wantCards   map[string][]string
		wantColumns []string
	}{
		{
			name:   "onto itself",
			intent: DragIntent{ActiveID: "B", OverID: "B"},
		},
		{
			name:   "dropped outside",
			intent: DragIntent{ActiveID: "B"},
		},
		{
			name:   "unknown active",
			intent: DragIntent{ActiveID: "Z", OverID: "A"},
		},
		{
			name:   "unknown over",
			intent: DragIntent{ActiveID: "A", OverID: "Z"},
		},
		{
			name:        "down within column",
			intent:      DragIntent{ActiveID: "A", OverID: "C"},
			wantChanged: true,
			wantCards:   map[string][]string{"backlog": {"B", "C", "A"}, "doing": {"D"}, "done": {}},
		},
		{
			name:        "up within column",
			intent:      DragIntent{ActiveID: "C", OverID: "A"},
			wantChanged: true,
			wantCards:   map[string][]string{"backlog": {"C", "A", "B"}, "doing": {"D"}, "done": {}},
		},
		{
			name:        "onto card in other column lands before it",
			intent:      DragIntent{ActiveID: "B", OverID: "D"},
			wantChanged: true,
			wantCards:   map[string][]string{"backlog": {"A", "C"}, "doing": {"B", "D"}, "done": {}},
		},
		{
			name:        "onto empty column",
			intent:      DragIntent{ActiveID: "B", OverID: "done"},
			wantChanged: true,
			wantCards:   map[string][]string{"backlog": {"A", "C"}, "doing": {"D"}, "done": {"B"}},
		},
		{
			name:        "onto own column moves to end",
			intent:      DragIntent{ActiveID: "A", OverID: "backlog"},
			wantChanged: true,
			wantCards:   map[string][]string{"backlog": {"B", "C", "A"}, "doing": {"D"}, "done": {}},
		},
		{
			name:   "last card onto own column",
			intent: DragIntent{ActiveID: "C", OverID: "backlog"},
		},
		{
			name:        "container change reported by adapter wins",
			intent:      DragIntent{ActiveID: "A", OverID: "D", ContainerChange: &ContainerChange{ColumnID: "doing", Index: 1}},
			wantChanged: true,
			wantCards:   map[string][]string{"backlog": {"B", "C"}, "doing": {"D", "A"}, "done": {}},
		},
		{
			name:   "container change to unknown column",
			intent: DragIntent{ActiveID: "A", OverID: "D", ContainerChange: &ContainerChange{ColumnID: "nope"}},
		},
		{
			name:        "column onto column",
			intent:      DragIntent{ActiveID: "done", OverID: "backlog"},
			wantChanged: true,
			wantColumns: []string{"done", "backlog", "doing"},
		},
		{
			name:        "column onto card of another column",
			intent:      DragIntent{ActiveID: "backlog", OverID: "D"},
			wantChanged: true,
			wantColumns: []string{"doing", "backlog", "done"},
		},
		{
			name:        "column with container change",
			intent:      DragIntent{ActiveID: "backlog", OverID: "done", ContainerChange: &ContainerChange{Index: 1}},
			wantChanged: true,
			wantColumns: []string{"doing", "backlog", "done"},
		},
		{
			name:   "column onto its own card",
			intent: DragIntent{ActiveID: "doing", OverID: "D"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBoard()
			got, changed := Resolve(b, tt.intent)

			assert.Equal(t, tt.wantChanged, changed)
			if !tt.wantChanged {
				assert.True(t, board.Equal(b, got))
				return
			}
			if tt.wantCards != nil {
				assert.Equal(t, tt.wantCards, cardsOf(got))
			}
			if tt.wantColumns != nil {
				assert.Equal(t, tt.wantColumns, got.ColumnIDs())
			}
			assert.ElementsMatch(t, b.CardIDs(), got.CardIDs())
			assert.True(t, board.Equal(testBoard(), b), "input board modified")
		})
	}
}
