package boardview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/gmllt/prepboard/internal/board"
	"github.com/gmllt/prepboard/internal/notify"
	"github.com/gmllt/prepboard/internal/seed"
	"github.com/gmllt/prepboard/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// flakyRemote wraps a memory store and fails persistence on demand.
type flakyRemote struct {
	*store.Memory
	mu       sync.Mutex
	fail     error
	persists int
	release  chan struct{}
}

func newFlakyRemote() *flakyRemote {
	return &flakyRemote{Memory: store.NewMemory()}
}

func (f *flakyRemote) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *flakyRemote) Persist(ctx context.Context, name string, b board.Board) error {
	f.mu.Lock()
	f.persists++
	fail, release := f.fail, f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if fail != nil {
		return fail
	}
	return f.Memory.Persist(ctx, name, b)
}

func (f *flakyRemote) persistCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.persists
}

func newTestController(t *testing.T, remote Remote) (*Controller, *notify.Feed) {
	t.Helper()
	feed := notify.NewFeed(10)
	return newController("prep", testBoard(), remote, feed, zap.NewNop(), NewStats(), time.Second), feed
}

func TestControllerMoveCardPersists(t *testing.T) {
	remote := newFlakyRemote()
	c, feed := newTestController(t, remote)

	got, changed := c.MoveCard("B", "backlog", "done", 0)
	require.True(t, changed)
	assert.Equal(t, []string{"B"}, got.Columns[2].CardIDs())
	c.Wait()

	stored, err := remote.Load(context.Background(), "prep")
	require.NoError(t, err)
	assert.True(t, board.Equal(got, stored))

	toasts := feed.Recent("prep")
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelSuccess, toasts[0].Level)
	assert.Equal(t, "Saved card move", toasts[0].Message)
	assert.EqualValues(t, 1, c.stats.Persisted.Load())
}

func TestControllerNoopDoesNotPersist(t *testing.T) {
	remote := newFlakyRemote()
	c, feed := newTestController(t, remote)

	_, changed := c.Drag(DragIntent{ActiveID: "A", OverID: "A"})
	assert.False(t, changed)
	_, changed = c.MoveCard("missing", "backlog", "done", 0)
	assert.False(t, changed)
	_, changed = c.MoveCard("A", "backlog", "backlog", 0)
	assert.False(t, changed)
	assert.False(t, c.RemoveCard("missing"))
	c.Wait()

	assert.Zero(t, remote.persistCount())
	assert.Empty(t, feed.Recent("prep"))
	assert.True(t, board.Equal(testBoard(), c.Snapshot()))
}

func TestControllerFailedPersistKeepsOptimisticState(t *testing.T) {
	remote := newFlakyRemote()
	remote.setFail(errors.New("network down"))
	c, feed := newTestController(t, remote)

	got, changed := c.Drag(DragIntent{ActiveID: "A", OverID: "done"})
	require.True(t, changed)
	c.Wait()

	assert.True(t, board.Equal(got, c.Snapshot()), "local state must not be rolled back")
	toasts := feed.Recent("prep")
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.LevelError, toasts[0].Level)
	assert.Contains(t, toasts[0].Message, "network down")
	assert.EqualValues(t, 1, c.stats.PersistFailed.Load())

	_, err := remote.Load(context.Background(), "prep")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestControllerReloadDiscardsUnsavedChanges(t *testing.T) {
	remote := newFlakyRemote()
	c, _ := newTestController(t, remote)

	saved, _ := c.MoveCard("A", "backlog", "doing", 0)
	c.Wait()

	remote.setFail(errors.New("boom"))
	c.MoveCard("D", "doing", "done", 0)
	c.Wait()

	got, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, board.Equal(saved, got))
	assert.True(t, board.Equal(saved, c.Snapshot()))
}

func TestControllerDoesNotBlockOnPersistence(t *testing.T) {
	remote := newFlakyRemote()
	remote.release = make(chan struct{})
	c, feed := newTestController(t, remote)

	c.MoveCard("A", "backlog", "done", 0)
	got, changed := c.MoveCard("B", "backlog", "done", 1)
	require.True(t, changed)
	assert.Equal(t, []string{"A", "B"}, got.Columns[2].CardIDs())
	assert.EqualValues(t, 2, c.stats.InFlight.Load())

	close(remote.release)
	c.Wait()
	assert.Zero(t, c.stats.InFlight.Load())
	assert.Len(t, feed.Recent("prep"), 2)
	assert.Equal(t, 2, remote.persistCount())
}

func TestControllerAddUpdateRemove(t *testing.T) {
	c, _ := newTestController(t, newFlakyRemote())

	added, err := c.AddCard("doing", board.CardDraft{Title: "X"})
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, []string{"D", added.ID}, snap.Columns[1].CardIDs())
	assert.Equal(t, 5, snap.CardCount())

	_, err = c.AddCard("nowhere", board.CardDraft{Title: "X"})
	assert.ErrorIs(t, err, board.ErrColumnNotFound)

	got, err := c.UpdateCard(added.ID, board.CardDraft{Title: "Y", Owner: "me"})
	require.NoError(t, err)
	assert.Equal(t, "Y", got.Columns[1].Cards[1].Title)

	assert.True(t, c.RemoveCard(added.ID))
	assert.Equal(t, 4, c.Snapshot().CardCount())
	c.Wait()
}

func TestControllerReplace(t *testing.T) {
	c, _ := newTestController(t, newFlakyRemote())

	next := board.MoveColumn(testBoard(), "done", 0)
	got, err := c.Replace(next)
	require.NoError(t, err)
	assert.Equal(t, []string{"done", "backlog", "doing"}, got.ColumnIDs())

	other := testBoard()
	other.Name = "other"
	_, err = c.Replace(other)
	assert.ErrorIs(t, err, ErrNameMismatch)

	dup := testBoard()
	dup.Columns[2].Cards = []board.Card{card("A")}
	_, err = c.Replace(dup)
	assert.ErrorIs(t, err, board.ErrInvalidBoard)
	assert.Equal(t, []string{"done", "backlog", "doing"}, c.Snapshot().ColumnIDs())
	c.Wait()
}

func TestControllerSnapshotIsACopy(t *testing.T) {
	c, _ := newTestController(t, newFlakyRemote())
	snap := c.Snapshot()
	snap.Columns[0].Cards[0].Title = "changed"
	assert.Equal(t, "A", c.Snapshot().Columns[0].Cards[0].Title)
}

func TestControllerConcurrentMutations(t *testing.T) {
	c, _ := newTestController(t, newFlakyRemote())

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, err := c.AddCard("backlog", board.CardDraft{Title: "parallel"})
			assert.NoError(t, err)
		})
	}
	wg.Wait()
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, 24, snap.CardCount())
	assert.NoError(t, board.Validate(snap))
}

func TestRegistry(t *testing.T) {
	remote := newFlakyRemote()
	stored := testBoard()
	stored.Name = "stored"
	require.NoError(t, remote.Memory.Persist(context.Background(), "stored", stored))

	cat, err := seed.Builtin()
	require.NoError(t, err)
	r := NewRegistry(remote, cat, notify.NewFeed(5), zap.NewNop(), time.Second)

	fromStore, err := r.Get(context.Background(), "stored")
	require.NoError(t, err)
	assert.True(t, board.Equal(stored, fromStore.Snapshot()))

	again, err := r.Get(context.Background(), "stored")
	require.NoError(t, err)
	assert.Same(t, fromStore, again)

	fromSeed, err := r.Get(context.Background(), "interview-prep")
	require.NoError(t, err)
	assert.Equal(t, "interview-prep", fromSeed.Snapshot().Name)
	assert.EqualValues(t, 2, r.Stats().BoardsOpen)

	_, err = r.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownBoard)

	_, err = r.Get(context.Background(), "../etc")
	assert.ErrorIs(t, err, ErrInvalidName)

	fromSeed.MoveColumn("done", 0)
	r.Wait()
	assert.EqualValues(t, 1, r.Stats().Persisted)
}

type brokenRemote struct{}

func (brokenRemote) Load(context.Context, string) (board.Board, error) {
	return board.Board{}, errors.New("connection refused")
}

func (brokenRemote) Persist(context.Context, string, board.Board) error {
	return errors.New("connection refused")
}

func TestRegistryLoadError(t *testing.T) {
	cat, err := seed.Builtin()
	require.NoError(t, err)
	r := NewRegistry(brokenRemote{}, cat, notify.NewFeed(5), zap.NewNop(), 0)

	_, err = r.Get(context.Background(), "interview-prep")
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrUnknownBoard)
}

func TestRegistryRejectsMisnamedStoredBoard(t *testing.T) {
	remote := newFlakyRemote()
	misnamed := testBoard()
	misnamed.Name = "other"
	require.NoError(t, remote.Memory.Persist(context.Background(), "stored", misnamed))

	r := NewRegistry(remote, seed.Catalogue{}, notify.NewFeed(5), zap.NewNop(), time.Second)
	_, err := r.Get(context.Background(), "stored")
	assert.ErrorIs(t, err, ErrNameMismatch)
	assert.Zero(t, r.Stats().BoardsOpen)
}

func TestControllerReloadRejectsMisnamedBoard(t *testing.T) {
	remote := newFlakyRemote()
	c, _ := newTestController(t, remote)

	misnamed := board.MoveColumn(testBoard(), "done", 0)
	misnamed.Name = "other"
	require.NoError(t, remote.Memory.Persist(context.Background(), "prep", misnamed))

	_, err := c.Reload(context.Background())
	assert.ErrorIs(t, err, ErrNameMismatch)
	assert.True(t, board.Equal(testBoard(), c.Snapshot()))
}

// gatedRemote blocks Load of one board until release is closed.
type gatedRemote struct {
	*store.Memory
	gated   string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedRemote) Load(ctx context.Context, name string) (board.Board, error) {
	if name == g.gated {
		g.once.Do(func() { close(g.entered) })
		select {
		case <-g.release:
		case <-ctx.Done():
			return board.Board{}, ctx.Err()
		}
	}
	return g.Memory.Load(ctx, name)
}

func TestRegistrySlowLoadDoesNotBlockOpenBoards(t *testing.T) {
	remote := &gatedRemote{
		Memory:  store.NewMemory(),
		gated:   "2026-Q4",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	cat, err := seed.Builtin()
	require.NoError(t, err)
	r := NewRegistry(remote, cat, notify.NewFeed(5), zap.NewNop(), 5*time.Second)

	open, err := r.Get(context.Background(), "interview-prep")
	require.NoError(t, err)

	const waiters = 5
	results := make(chan *Controller, waiters)
	var wg sync.WaitGroup
	for range waiters {
		wg.Go(func() {
			c, err := r.Get(context.Background(), "2026-Q4")
			assert.NoError(t, err)
			results <- c
		})
	}
	<-remote.entered

	done := make(chan *Controller, 1)
	go func() {
		c, _ := r.Get(context.Background(), "interview-prep")
		done <- c
	}()
	select {
	case c := <-done:
		assert.Same(t, open, c)
	case <-time.After(time.Second):
		t.Fatal("Get of an open board waited on another board's load")
	}

	close(remote.release)
	wg.Wait()
	close(results)

	var first *Controller
	for c := range results {
		require.NotNil(t, c)
		if first == nil {
			first = c
		}
		assert.Same(t, first, c)
	}
	assert.EqualValues(t, 2, r.Stats().BoardsOpen)
}
