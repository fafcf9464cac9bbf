package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zarrenspry/vcd-inventory/pkg/cache"
	"github.com/zarrenspry/vcd-inventory/pkg/config"
	"github.com/zarrenspry/vcd-inventory/pkg/filter"
	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/inventory"
	"github.com/zarrenspry/vcd-inventory/pkg/resolver"
	"github.com/zarrenspry/vcd-inventory/pkg/source"
	"github.com/zarrenspry/vcd-inventory/pkg/vcd"
)

const logoutTimeout = 10 * time.Second

// pipeline is a configured source and assembler plus the resources they hold.
type pipeline struct {
	source    source.Source
	assembler *inventory.Assembler
	closers   []func() error
}

// newPipeline builds the source described by cfg: a host record file when
// cfg.Source is set, the vCloud Director API otherwise, wrapped in the
// cache when caching is enabled.
func newPipeline(cfg *config.Config, refresh bool) (*pipeline, error) {
	p := &pipeline{
		assembler: inventory.New(
			inventory.WithFilters(filter.Spec(cfg.Filters)),
			inventory.WithGroupKeys(cfg.GroupKeys),
			inventory.WithRootGroup(cfg.RootGroup),
			inventory.WithConcurrency(cfg.Concurrency),
		),
	}

	live, err := liveSource(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache {
		if refresh {
			slog.Debug("refresh requested with caching disabled, nothing to refresh")
		}
		p.source = live
		return p, nil
	}

	var store cache.Store = cache.Nop{}
	sqlite, err := cache.Open(cfg.CachePath, cfg.TTL())
	if err != nil {
		slog.Warn("cache unavailable, continuing without it", "error", err, "path", cfg.CachePath)
	} else {
		store = sqlite
		p.closers = append(p.closers, sqlite.Close)
	}

	p.source = &cache.Cached{
		Source:      live,
		Store:       store,
		Fingerprint: cache.Fingerprint(cfg.Target()),
		Refresh:     refresh,
	}
	return p, nil
}

// liveSource returns the uncached source of cfg.
func liveSource(cfg *config.Config) (source.Source, error) {
	if cfg.Source != "" {
		slog.Debug("reading host records from file", slog.String("source", cfg.Source))
		return source.File{Path: cfg.Source}, nil
	}

	res, err := resolver.New(cfg.CIDR)
	if err != nil {
		return nil, err
	}

	client, err := vcd.New(cfg.Host,
		vcd.Credentials{User: cfg.User, Org: cfg.Org, Password: cfg.Password},
		cfg.TargetVDC,
		vcd.WithAPIVersion(cfg.APIVersion),
		vcd.WithInsecureSkipVerify(!cfg.VerifySSLCerts),
		vcd.WithRateLimit(cfg.RateLimit),
		vcd.WithConcurrency(cfg.Concurrency),
		vcd.WithResolver(res),
		vcd.WithMetadataSeparator(cfg.MetadataSeparator),
	)
	if err != nil {
		return nil, err
	}

	// One session per fetch; fetches are serialized so a logout never ends a
	// session another fetch is still using.
	var mu sync.Mutex
	return source.Func(func(ctx context.Context) ([]host.Record, error) {
		mu.Lock()
		defer mu.Unlock()
		defer logout(ctx, client)
		return client.Fetch(ctx)
	}), nil
}

func logout(ctx context.Context, client *vcd.Client) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()
	if err := client.Logout(ctx); err != nil {
		slog.Warn("failed to end vCloud Director session", "error", err)
	}
}

// Generate runs the pipeline once.
func (p *pipeline) Generate(ctx context.Context) (*inventory.Result, error) {
	res, err := p.assembler.Generate(ctx, p.source)
	if err != nil {
		return nil, fmt.Errorf("failed to generate inventory: %w", err)
	}
	return res, nil
}

// Close releases the resources held by the pipeline.
func (p *pipeline) Close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			slog.Warn("failed to release resource", "error", err)
		}
	}
}
