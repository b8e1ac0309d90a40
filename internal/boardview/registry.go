package boardview

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gmllt/prepboard/internal/board"
	"github.com/gmllt/prepboard/internal/notify"
	"github.com/gmllt/prepboard/internal/seed"
	"github.com/gmllt/prepboard/internal/store"
)

var (
	// ErrUnknownBoard is returned when neither the store nor the seed
	// catalogue knows a board.
	ErrUnknownBoard = errors.New("unknown board")
	// ErrInvalidName rejects board names that are unsafe as store keys.
	ErrInvalidName = errors.New("invalid board name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// DefaultTimeout bounds each load and persist call when none is configured.
const DefaultTimeout = 10 * time.Second

// Registry opens one Controller per board on first use. A board's initial
// state comes from the store, or from the seed catalogue when the store has
// never seen it.
type Registry struct {
	remote  Remote
	seeds   seed.Catalogue
	sink    notify.Sink
	log     *zap.Logger
	stats   *Stats
	timeout time.Duration

	mu     sync.Mutex
	boards map[string]*Controller

	// opening collapses concurrent first loads of the same board
	opening singleflight.Group
}

func NewRegistry(remote Remote, seeds seed.Catalogue, sink notify.Sink, log *zap.Logger, timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry{
		remote:  remote,
		seeds:   seeds,
		sink:    sink,
		log:     log.Named("boards"),
		stats:   NewStats(),
		timeout: timeout,
		boards:  make(map[string]*Controller),
	}
}

// Get returns the controller of the named board, opening it if needed.
func (r *Registry) Get(ctx context.Context, name string) (*Controller, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if c, ok := r.lookup(name); ok {
		return c, nil
	}

	// The store is only read outside r.mu so a slow load never holds up
	// boards that are already open.
	v, err, _ := r.opening.Do(name, func() (any, error) {
		if c, ok := r.lookup(name); ok {
			return c, nil
		}
		initial, err := r.initial(context.WithoutCancel(ctx), name)
		if err != nil {
			return nil, err
		}
		c := newController(name, initial, r.remote, r.sink, r.log, r.stats, r.timeout)

		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.boards[name]; ok {
			return existing, nil
		}
		r.boards[name] = c
		r.stats.BoardsOpen.Add(1)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Controller), nil
}

func (r *Registry) lookup(name string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.boards[name]
	return c, ok
}

func (r *Registry) initial(ctx context.Context, name string) (board.Board, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	b, err := r.remote.Load(ctx, name)
	switch {
	case err == nil:
		if b.Name != name {
			return board.Board{}, fmt.Errorf("stored board %s: %w: got %q", name, ErrNameMismatch, b.Name)
		}
		if err := board.Validate(b); err != nil {
			return board.Board{}, fmt.Errorf("stored board %s: %w", name, err)
		}
		r.log.Info("board opened from store", zap.String("board", name), zap.Int("cards", b.CardCount()))
		return b, nil
	case errors.Is(err, store.ErrNotFound):
		seeded, ok := r.seeds.Lookup(name)
		if !ok {
			return board.Board{}, fmt.Errorf("%w: %s", ErrUnknownBoard, name)
		}
		r.log.Info("board opened from seed data", zap.String("board", name), zap.Int("cards", seeded.CardCount()))
		return seeded, nil
	default:
		return board.Board{}, fmt.Errorf("load board %s: %w", name, err)
	}
}

// Names lists the boards of the seed catalogue.
func (r *Registry) Names() []string {
	return r.seeds.Names()
}

// Ping checks that the store behind the registry is reachable. Stores that
// live in process always are.
func (r *Registry) Ping(ctx context.Context) error {
	p, ok := r.remote.(store.Pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.Ping(ctx)
}

func (r *Registry) Stats() StatsSnapshot {
	return r.stats.Snapshot()
}

// Wait blocks until every open board has finished its persistence calls.
func (r *Registry) Wait() {
	r.mu.Lock()
	open := make([]*Controller, 0, len(r.boards))
	for _, c := range r.boards {
		open = append(open, c)
	}
	r.mu.Unlock()

	for _, c := range open {
		c.Wait()
	}
}
