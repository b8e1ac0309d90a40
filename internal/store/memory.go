package store

import (
	"context"
	"sync"

	"github.com/gmllt/prepboard/internal/board"
)

// Memory keeps snapshots in process. Snapshots are stored encoded so
// callers never share slices with the store.
type Memory struct {
	mu     sync.RWMutex
	boards map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{boards: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, name string) (board.Board, error) {
	if err := ctx.Err(); err != nil {
		return board.Board{}, err
	}
	m.mu.RLock()
	data, ok := m.boards[name]
	m.mu.RUnlock()
	if !ok {
		return board.Board{}, ErrNotFound
	}
	return decode(data)
}

func (m *Memory) Persist(ctx context.Context, name string, b board.Board) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(b)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.boards[name] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
