package boardview

import "github.com/gmllt/prepboard/internal/board"

// DragIntent is the outcome of a drag-and-drop gesture, independent of the
// input library that produced it. ActiveID is the dragged card or column;
// OverID is the card or column it was dropped on.
type DragIntent struct {
	ActiveID        string           `json:"activeId"`
	OverID          string           `json:"overId"`
	ContainerChange *ContainerChange `json:"containerChange,omitempty"`
}

// ContainerChange is the destination an input adapter already resolved,
// for instance when the library moved the item between columns while
// dragging. When set it takes precedence over OverID.
type ContainerChange struct {
	ColumnID string `json:"columnId"`
	Index    int    `json:"index"`
}

// Resolve turns a drag intent into a new board. It reports whether the
// board content changed. Unknown ids and drops onto the dragged item itself
// leave the board untouched.
func Resolve(b board.Board, in DragIntent) (board.Board, bool) {
	if in.ActiveID == "" || in.ActiveID == in.OverID {
		return b, false
	}

	var next board.Board
	if col, _, ok := board.FindCard(b, in.ActiveID); ok {
		toCol, toIdx, ok := cardDestination(b, in)
		if !ok {
			return b, false
		}
		next = board.MoveCard(b, in.ActiveID, b.Columns[col].ID, toCol, toIdx)
	} else if _, ok := board.FindColumn(b, in.ActiveID); ok {
		toIdx, ok := columnDestination(b, in)
		if !ok {
			return b, false
		}
		next = board.MoveColumn(b, in.ActiveID, toIdx)
	} else {
		return b, false
	}

	if board.Equal(b, next) {
		return b, false
	}
	return next, true
}

// cardDestination returns the column and index a dragged card lands at:
// the position of the card it was dropped on, or the end of the column it
// was dropped on.
func cardDestination(b board.Board, in DragIntent) (string, int, bool) {
	if cc := in.ContainerChange; cc != nil {
		return cc.ColumnID, cc.Index, true
	}
	if col, idx, ok := board.FindCard(b, in.OverID); ok {
		return b.Columns[col].ID, idx, true
	}
	if col, ok := board.FindColumn(b, in.OverID); ok {
		return in.OverID, len(b.Columns[col].Cards), true
	}
	return "", 0, false
}

func columnDestination(b board.Board, in DragIntent) (int, bool) {
	if cc := in.ContainerChange; cc != nil {
		return cc.Index, true
	}
	if idx, ok := board.FindColumn(b, in.OverID); ok {
		return idx, true
	}
	if col, _, ok := board.FindCard(b, in.OverID); ok {
		return col, true
	}
	return 0, false
}
