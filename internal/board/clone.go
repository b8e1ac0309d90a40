package board

import "slices"

// Clone returns a deep copy of b. Nil slices stay nil.
func Clone(b Board) Board {
	out := b
	if b.Columns != nil {
		out.Columns = make([]Column, len(b.Columns))
		for i, col := range b.Columns {
			out.Columns[i] = cloneColumn(col)
		}
	}
	return out
}

func cloneColumn(col Column) Column {
	out := col
	if col.Cards != nil {
		out.Cards = make([]Card, len(col.Cards))
		for i, c := range col.Cards {
			out.Cards[i] = cloneCard(c)
		}
	}
	return out
}

func cloneCard(c Card) Card {
	out := c
	if c.Progress != nil {
		p := *c.Progress
		out.Progress = &p
	}
	out.Items = slices.Clone(c.Items)
	out.Chips = slices.Clone(c.Chips)
	return out
}

// Equal reports whether a and b have the same content. Nil and empty
// slices compare equal.
func Equal(a, b Board) bool {
	if a.Name != b.Name || a.Kind != b.Kind || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if !columnEqual(a.Columns[i], b.Columns[i]) {
			return false
		}
	}
	return true
}

func columnEqual(a, b Column) bool {
	if a.ID != b.ID || a.Title != b.Title || a.Subtitle != b.Subtitle ||
		a.AccentColor != b.AccentColor || a.Highlight != b.Highlight {
		return false
	}
	return slices.EqualFunc(a.Cards, b.Cards, cardEqual)
}

func cardEqual(a, b Card) bool {
	if a.ID != b.ID || a.Title != b.Title || a.Description != b.Description ||
		a.Owner != b.Owner || a.OwnerLabel != b.OwnerLabel || a.DueDate != b.DueDate ||
		a.Metric != b.Metric || a.Highlight != b.Highlight || a.Meta != b.Meta {
		return false
	}
	if (a.Progress == nil) != (b.Progress == nil) {
		return false
	}
	if a.Progress != nil && *a.Progress != *b.Progress {
		return false
	}
	return slices.Equal(a.Items, b.Items) && slices.Equal(a.Chips, b.Chips)
}
