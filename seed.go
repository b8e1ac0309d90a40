package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gmllt/prepboard/internal/seed"
	"github.com/gmllt/prepboard/internal/store"
)

func newSeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the seed boards into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cat, err := seed.Load(cfg.Seed.Path)
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("failed to init %s store: %w", cfg.Storage.Driver, err)
			}
			defer st.Close()

			written, err := seedStore(cmd.Context(), st, cat, force, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d boards\n", written, len(cat))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite boards that already exist in the store")
	return cmd
}

// seedStore writes every catalogue board concurrently. Boards already in the
// store are left alone unless force is set.
func seedStore(ctx context.Context, st store.Store, cat seed.Catalogue, force bool, logger *zap.Logger) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	written := make([]bool, len(cat))
	for i, name := range cat.Names() {
		g.Go(func() error {
			if !force {
				_, err := st.Load(gctx, name)
				if err == nil {
					logger.Info("board already stored, skipping", zap.String("board", name))
					return nil
				}
				if !errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("check %s: %w", name, err)
				}
			}
			b, _ := cat.Lookup(name)
			if err := st.Persist(gctx, name, b); err != nil {
				return fmt.Errorf("seed %s: %w", name, err)
			}
			written[i] = true
			logger.Info("board seeded", zap.String("board", name), zap.Int("cards", b.CardCount()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for _, ok := range written {
		if ok {
			n++
		}
	}
	return n, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [seed-file]",
		Short: "Check a seed catalogue without starting the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := seed.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range cat.Names() {
				b, _ := cat.Lookup(name)
				fmt.Fprintf(out, "%-20s %-7s %d columns, %d cards\n", name, b.Kind, len(b.Columns), b.CardCount())
			}
			return nil
		},
	}
}
