package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/zarrenspry/vcd-inventory/pkg/cache"
	"github.com/zarrenspry/vcd-inventory/pkg/config"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local inventory cache",
		Commands: []*cli.Command{
			{
				Name:  "purge",
				Usage: "Remove every cached inventory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Cache database path (default: cache_path of the source file)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cachePath(cmd)
					store, err := cache.Open(path, cache.DefaultTTL)
					if err != nil {
						return fmt.Errorf("failed to open cache %q: %w", path, err)
					}
					defer func() {
						if err := store.Close(); err != nil {
							slog.Warn("failed to close cache", "error", err)
						}
					}()

					if err := store.Purge(ctx); err != nil {
						return err
					}
					slog.Info("cache purged", slog.String("path", path))
					return nil
				},
			},
		},
	}
}

// cachePath returns the path flag, else the cache_path of the source file,
// else the default location. A source file that fails to load is not an
// error here: purging must work without valid credentials.
func cachePath(cmd *cli.Command) string {
	if p := cmd.String("path"); p != "" {
		return p
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		slog.Debug("using default cache path", "error", err)
		return config.DefaultCachePath()
	}
	return cfg.CachePath
}
