package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Erase existing data before initializing."`
	Source string `help:"Copy all data from another storage location (path or connection string)."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}

	bg := context.Background()
	keys, err := ctx.Store.Keys(bg)
	if err != nil {
		return fmt.Errorf("failed to inspect storage: %w", err)
	}

	if len(keys) > 0 {
		if !c.Force {
			ctx.printf("Storage at %s already holds data, use --force to start over.\n", ctx.Store.GetConfigPath())
			return nil
		}
		if c.Source == "" {
			if err := ctx.Store.ClearAll(bg); err != nil {
				return fmt.Errorf("failed to clear storage: %w", err)
			}
			logger.Info("Cleared storage", "location", ctx.Store.GetConfigPath())
		}
	}

	if c.Source != "" {
		n, err := c.copyFrom(bg, ctx)
		if err != nil {
			return err
		}
		ctx.printf("Copied %d collections into %s\n", n, ctx.Store.GetConfigPath())
	}

	ctx.printf("Initialized habitline storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

func (c *InitCmd) copyFrom(bg context.Context, ctx *Context) (int, error) {
	src, err := ctx.openProvider(c.Source)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close source storage", "error", err)
		}
	}()

	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source: %w", err)
	}
	return storage.CopyAll(bg, src, ctx.Store)
}
