// Package store persists board snapshots. Every driver stores the full
// board as one JSON document keyed by board name; the last write wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gmllt/prepboard/internal/board"
	"github.com/gmllt/prepboard/internal/config"
)

// ErrNotFound is returned by Load when the store holds no snapshot for a board.
var ErrNotFound = errors.New("board not found in store")

// Store loads and persists whole board snapshots.
type Store interface {
	Load(ctx context.Context, name string) (board.Board, error)
	Persist(ctx context.Context, name string, b board.Board) error
	Close() error
}

// Pinger is implemented by stores backed by a remote service that can be
// checked for reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		s = NewMemory()
	case config.DriverS3:
		s, err = NewS3(ctx, cfg.S3, log)
	case config.DriverSQLite:
		s, err = OpenSQLite(ctx, cfg.SQLite.Path)
	case config.DriverPostgres:
		s, err = OpenPostgres(ctx, cfg.Postgres.URL)
	case config.DriverRedis:
		s, err = NewRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Info("board store ready", zap.String("driver", cfg.Driver))
	return s, nil
}

func encode(b board.Board) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("error encoding board json: %w", err)
	}
	return data, nil
}

func decode(data []byte) (board.Board, error) {
	var b board.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return board.Board{}, fmt.Errorf("error decoding board json: %w", err)
	}
	return b, nil
}
