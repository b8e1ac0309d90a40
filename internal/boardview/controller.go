// Package boardview owns the live state of each board. A Controller applies
// the pure mutations from package board to its snapshot, swaps the result in
// immediately and pushes it to the remote store in the background.
package boardview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gmllt/prepboard/internal/board"
	"github.com/gmllt/prepboard/internal/notify"
)

// Remote is where snapshots are loaded from and pushed to.
type Remote interface {
	Load(ctx context.Context, name string) (board.Board, error)
	Persist(ctx context.Context, name string, b board.Board) error
}

// ErrNameMismatch is returned when a snapshot names a different board than
// the one it is meant to replace.
var ErrNameMismatch = errors.New("board name does not match")

// Controller is the state container of one board. Mutations are serialized;
// persistence calls are not. A failed persistence call is reported to the
// notification sink and the local state is kept.
type Controller struct {
	name    string
	remote  Remote
	sink    notify.Sink
	log     *zap.Logger
	stats   *Stats
	timeout time.Duration

	mu       sync.Mutex
	current  board.Board
	inflight sync.WaitGroup
}

func newController(name string, initial board.Board, remote Remote, sink notify.Sink, log *zap.Logger, stats *Stats, timeout time.Duration) *Controller {
	return &Controller{
		name:    name,
		remote:  remote,
		sink:    sink,
		log:     log.With(zap.String("board", name)),
		stats:   stats,
		timeout: timeout,
		current: board.Clone(initial),
	}
}

func (c *Controller) Name() string { return c.name }

// Snapshot returns a copy of the current board.
func (c *Controller) Snapshot() board.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return board.Clone(c.current)
}

// apply runs fn against the current board and, if the content changed,
// swaps the result in and starts persisting it.
func (c *Controller) apply(op string, fn func(board.Board) (board.Board, error)) (board.Board, bool, error) {
	c.mu.Lock()
	next, err := fn(c.current)
	if err != nil {
		out := board.Clone(c.current)
		c.mu.Unlock()
		return out, false, err
	}
	if board.Equal(c.current, next) {
		out := board.Clone(c.current)
		c.mu.Unlock()
		return out, false, nil
	}
	c.current = next
	c.mu.Unlock()

	c.stats.Mutations.Add(1)
	c.log.Debug("board mutated", zap.String("op", op))
	c.persist(op, next)
	return board.Clone(next), true, nil
}

// persist pushes b to the remote store without blocking the caller.
func (c *Controller) persist(op string, b board.Board) {
	c.stats.InFlight.Add(1)
	c.inflight.Go(func() {
		defer c.stats.InFlight.Add(-1)
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := c.remote.Persist(ctx, c.name, b); err != nil {
			c.stats.PersistFailed.Add(1)
			c.log.Warn("optimistic update not persisted", zap.String("op", op), zap.Error(err))
			c.sink.Notify(c.name, notify.LevelError, fmt.Sprintf("Could not save %s: %v", op, err))
			return
		}
		c.stats.Persisted.Add(1)
		c.sink.Notify(c.name, notify.LevelSuccess, fmt.Sprintf("Saved %s", op))
	})
}

// Wait blocks until every persistence call started so far has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Drag applies a drag intent. Drops that resolve to nothing are ignored.
func (c *Controller) Drag(in DragIntent) (board.Board, bool) {
	b, changed, _ := c.apply("drag", func(cur board.Board) (board.Board, error) {
		next, _ := Resolve(cur, in)
		return next, nil
	})
	return b, changed
}

func (c *Controller) MoveCard(cardID, sourceColumnID, targetColumnID string, targetIndex int) (board.Board, bool) {
	b, changed, _ := c.apply("card move", func(cur board.Board) (board.Board, error) {
		return board.MoveCard(cur, cardID, sourceColumnID, targetColumnID, targetIndex), nil
	})
	return b, changed
}

func (c *Controller) MoveColumn(columnID string, targetIndex int) (board.Board, bool) {
	b, changed, _ := c.apply("column move", func(cur board.Board) (board.Board, error) {
		return board.MoveColumn(cur, columnID, targetIndex), nil
	})
	return b, changed
}

func (c *Controller) AddCard(columnID string, draft board.CardDraft) (board.Card, error) {
	var added board.Card
	_, _, err := c.apply("new card", func(cur board.Board) (board.Board, error) {
		next, card, err := board.AddCard(cur, columnID, draft)
		added = card
		return next, err
	})
	return added, err
}

func (c *Controller) UpdateCard(cardID string, draft board.CardDraft) (board.Board, error) {
	b, _, err := c.apply("card update", func(cur board.Board) (board.Board, error) {
		return board.UpdateCard(cur, cardID, draft)
	})
	return b, err
}

// RemoveCard reports false when no card has the given id.
func (c *Controller) RemoveCard(cardID string) bool {
	_, changed, _ := c.apply("card removal", func(cur board.Board) (board.Board, error) {
		return board.RemoveCard(cur, cardID), nil
	})
	return changed
}

// Replace swaps in a complete snapshot after validating it.
func (c *Controller) Replace(b board.Board) (board.Board, error) {
	if b.Name != c.name {
		return board.Board{}, fmt.Errorf("%w: %q != %q", ErrNameMismatch, b.Name, c.name)
	}
	if err := board.Validate(b); err != nil {
		return board.Board{}, err
	}
	out, _, err := c.apply("board", func(board.Board) (board.Board, error) {
		return board.Clone(b), nil
	})
	return out, err
}

// Reload replaces the local state with the remote copy, discarding any
// optimistic change the store never acknowledged.
func (c *Controller) Reload(ctx context.Context) (board.Board, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	remote, err := c.remote.Load(ctx, c.name)
	if err != nil {
		return board.Board{}, fmt.Errorf("reload %s: %w", c.name, err)
	}
	if remote.Name != c.name {
		return board.Board{}, fmt.Errorf("reload %s: %w: got %q", c.name, ErrNameMismatch, remote.Name)
	}
	if err := board.Validate(remote); err != nil {
		return board.Board{}, fmt.Errorf("reload %s: %w", c.name, err)
	}

	c.mu.Lock()
	c.current = remote
	c.mu.Unlock()
	c.log.Info("board reloaded from store")
	return board.Clone(remote), nil
}
