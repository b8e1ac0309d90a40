package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *Board)
		wantErr string
	}{
		{"valid", func(b *Board) {}, ""},
		{"empty name", func(b *Board) { b.Name = "" }, "board name is empty"},
		{"unknown kind", func(b *Board) { b.Kind = "scrum" }, `unknown kind "scrum"`},
		{"empty column id", func(b *Board) { b.Columns[2].ID = "" }, "column with empty id"},
		{"duplicate column", func(b *Board) { b.Columns[2].ID = "doing" }, `duplicate column id "doing"`},
		{"untitled card", func(b *Board) { b.Columns[1].Cards[0].Title = "" }, `card "D" has no title`},
		{"empty card id", func(b *Board) { b.Columns[1].Cards[0].ID = "" }, "card with empty id"},
		{"duplicate card across columns", func(b *Board) { b.Columns[1].Cards[0].ID = "A" }, `card id "A" appears in columns "backlog" and "doing"`},
		{"card id shadows later column", func(b *Board) { b.Columns[0].Cards[0].ID = "done" }, `card id "done" is also a column id`},
		{"card id shadows own column", func(b *Board) { b.Columns[1].Cards[0].ID = "doing" }, `card id "doing" is also a column id`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBoard()
			tt.mutate(&b)
			err := Validate(b)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBoard)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
