package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zarrenspry/vcd-inventory/pkg/filter"
	"github.com/zarrenspry/vcd-inventory/pkg/group"
	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/hostvars"
	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
	"github.com/zarrenspry/vcd-inventory/pkg/source"
)

// Option is a functional option for configuring Assembler instances.
type Option func(*Assembler)

// WithFilters sets the metadata predicates a host must satisfy.
func WithFilters(spec filter.Spec) Option {
	return func(a *Assembler) {
		a.filters = spec
	}
}

// WithGroupKeys sets the metadata keys whose values become group names.
func WithGroupKeys(keys []string) Option {
	return func(a *Assembler) {
		a.groupKeys = append([]string(nil), keys...)
	}
}

// WithRootGroup sets the name of the group listing every included host.
func WithRootGroup(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.rootGroup = name
		}
	}
}

// WithConcurrency bounds the number of hosts evaluated in parallel.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// Assembler turns host records into an inventory: it normalizes metadata,
// applies filters, derives groups and projects host variables.
type Assembler struct {
	filters     filter.Spec
	groupKeys   []string
	rootGroup   string
	concurrency int
}

// New creates an Assembler with the provided functional options.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		rootGroup:   DefaultRootGroup,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// evaluation is the per-host outcome of the parallel stage.
type evaluation struct {
	skip    bool
	passed  bool
	md      metadata.Normalized
	groups  []string
	dropped []string
	vars    hostvars.Vars
}

// Assemble builds the inventory for records.
//
// Hosts are evaluated independently and in parallel; the results are then
// merged in input order, so membership lists and the root group follow the
// order of records. Hosts failing the filters are absent from every section
// of the result. A record without a name is skipped, as is any later record
// reusing an already included name.
func (a *Assembler) Assemble(ctx context.Context, records []host.Record) (*Result, error) {
	start := time.Now()
	defer func() {
		assembleDuration.Observe(time.Since(start).Seconds())
	}()

	builder := group.NewBuilder(a.groupKeys, MetaKey, a.rootGroup)
	evals := make([]evaluation, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evals[i] = a.evaluate(records[i], builder)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		RootGroup:  a.rootGroup,
		Discovered: make([]string, 0, len(records)),
		HostVars:   make(map[string]hostvars.Vars, len(records)),
	}
	seenKeys := make(map[string]struct{})

	for i, ev := range evals {
		rec := records[i]
		if ev.skip {
			slog.Warn("skipping host record without a name", slog.String("id", rec.ID))
			assembleHostsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		for k := range ev.md {
			seenKeys[k] = struct{}{}
		}
		if !ev.passed {
			slog.Debug("host excluded by filters", slog.String("host", rec.Name))
			assembleHostsTotal.WithLabelValues("filtered").Inc()
			continue
		}
		if _, dup := res.HostVars[rec.Name]; dup {
			slog.Warn("skipping duplicate host name", slog.String("host", rec.Name), slog.String("id", rec.ID))
			assembleHostsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		for _, name := range ev.dropped {
			slog.Warn("metadata value collides with a reserved group name, not creating group",
				slog.String("host", rec.Name),
				slog.String("group", name))
		}

		res.Discovered = append(res.Discovered, rec.Name)
		res.HostVars[rec.Name] = ev.vars
		builder.Add(rec.Name, ev.groups)
		assembleHostsTotal.WithLabelValues("included").Inc()
		slog.Debug("host added to inventory",
			slog.String("host", rec.Name),
			slog.String("address", rec.Address),
			slog.Any("groups", ev.groups))
	}

	res.Groups = builder.Groups()
	assembleGroups.Set(float64(len(res.Groups)))
	a.warnUnknownKeys(seenKeys)

	slog.Debug("inventory assembled",
		slog.Int("records", len(records)),
		slog.Int("hosts", len(res.Discovered)),
		slog.Int("groups", len(res.Groups)))

	return res, nil
}

// Generate fetches the records of src and assembles them.
func (a *Assembler) Generate(ctx context.Context, src source.Source) (*Result, error) {
	records, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch host records: %w", err)
	}
	return a.Assemble(ctx, records)
}

func (a *Assembler) evaluate(rec host.Record, builder *group.Builder) evaluation {
	if rec.Name == "" {
		return evaluation{skip: true}
	}
	md := rec.NormalizedMetadata()
	ev := evaluation{md: md, passed: filter.Passes(md, a.filters)}
	if !ev.passed {
		return ev
	}
	ev.groups, ev.dropped = builder.Assign(md)
	ev.vars = hostvars.Project(rec)
	return ev
}

// warnUnknownKeys logs filter and group keys that no host carries, with a
// suggestion when a similar key exists.
func (a *Assembler) warnUnknownKeys(seen map[string]struct{}) {
	if len(seen) == 0 {
		return
	}
	known := make([]string, 0, len(seen))
	for k := range seen {
		known = append(known, k)
	}

	check := func(kind, key string) {
		if _, ok := seen[key]; ok {
			return
		}
		attrs := []any{slog.String("kind", kind), slog.String("key", key)}
		if s, ok := filter.Suggest(key, known); ok {
			attrs = append(attrs, slog.String("did_you_mean", s))
		}
		slog.Warn("metadata key not present on any host", attrs...)
	}
	for _, k := range a.filters.Keys() {
		check("filter", k)
	}
	for _, k := range a.groupKeys {
		check("group", k)
	}
}
