package logtape

import (
	"context"
	"fmt"
	"sync"

	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/level"
	"github.com/logtape-go/logtape/sink"
	"golang.org/x/sync/errgroup"
)

// LoggerBinding describes the sinks, filters, threshold, and parent-sink
// policy to apply to one category. Build these with Binding and the
// BindingOption functional options (options.go).
type LoggerBinding struct {
	category    core.Category
	sinkIDs     []string
	filterIDs   []string
	lowestLevel level.Level
	parentSinks ParentSinkPolicy
	hasLevel    bool
}

// Binding declares the binding for category. Apply BindingOptions to
// attach sinks, filters, and a threshold.
func Binding(category CategoryArg, opts ...BindingOption) LoggerBinding {
	b := LoggerBinding{category: toCategory(category), lowestLevel: level.Trace}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Config is the declarative configuration payload for Configure and
// ConfigureSync: named sinks and filters, category bindings referencing
// them by name, the ContextStorage implementation to install, and
// whether to discard the previous tree before applying.
type Config struct {
	// Sinks maps a name usable from LoggerBinding to the sink instance.
	Sinks map[string]core.Sink

	// Filters maps a name usable from LoggerBinding to either a filter
	// predicate or a severity level lifted to one; build values with
	// core.FilterOf and core.LevelOf.
	Filters map[string]core.FilterOrLevel

	// Loggers lists the category bindings to apply.
	Loggers []LoggerBinding

	// ContextStorage is installed as the root's ambient-propagation
	// mechanism. Nil leaves WithContext/WithCategoryPrefix degraded:
	// they still run their callback, but emit a meta-logger warning and
	// nothing propagates. Pass ContextVarStorage{} for the
	// context.Context-backed default.
	ContextStorage ContextStorage

	// Reset, if true, restores every node to default state (no sinks,
	// no filters, inherit, lowest level trace) before applying Loggers,
	// draining any disposables the previous configuration registered.
	Reset bool
}

// disposable pairs a resource with the category it was bound under, for
// diagnostic messages on drain failure.
type disposable struct {
	category core.Category
	sync     core.SyncReleaser
	async    core.AsyncReleaser
}

var (
	liveDisposables []disposable

	configMu     sync.Mutex
	configActive bool
)

// Configure validates and applies cfg atomically: every sink ID, filter
// ID, and category is resolved into a scratch structure first, and only
// once everything resolves does the live tree get mutated, so a
// configuration error never leaves the tree partially updated. Async
// disposables from the previous configuration are drained concurrently
// via an errgroup; sync disposables drain in registration order first.
//
// Configure permits sinks that only implement core.AsyncReleaser.
func Configure(ctx context.Context, cfg Config) error {
	return applyConfig(ctx, cfg, true)
}

// ConfigureSync is Configure but rejects any sink that only implements
// core.AsyncReleaser, returning a *core.ConfigError: use this in
// contexts (tests, CLI tools) where Close must finish before the
// process proceeds, with no possibility of a dangling async drain.
func ConfigureSync(ctx context.Context, cfg Config) error {
	for name, s := range cfg.Sinks {
		if _, isAsync := s.(core.AsyncReleaser); isAsync {
			if _, isSync := s.(core.SyncReleaser); !isSync {
				return &core.ConfigError{Reason: fmt.Sprintf("sink %q is async-only release but ConfigureSync forbids async disposables", name)}
			}
		}
	}
	return applyConfig(ctx, cfg, false)
}

func applyConfig(ctx context.Context, cfg Config, allowAsync bool) error {
	configMu.Lock()
	defer configMu.Unlock()

	// Step 1: a configuration is already active and the caller didn't
	// ask to replace it.
	if configActive && !cfg.Reset {
		return &core.ConfigError{Reason: "already configured; pass Reset: true to replace the active configuration"}
	}

	// Step 2: validate into a scratch structure. Every binding must
	// reference only known sink/filter names.
	type resolvedBinding struct {
		category    core.Category
		sinks       []core.Sink
		filters     []core.Filter
		lowestLevel level.Level
		hasLevel    bool
		parentSinks ParentSinkPolicy
	}

	resolved := make([]resolvedBinding, 0, len(cfg.Loggers))
	seenCategories := make(map[string]bool, len(cfg.Loggers))
	for _, b := range cfg.Loggers {
		key := b.category.String()
		if seenCategories[key] {
			return &core.ConfigError{Reason: fmt.Sprintf("duplicate logger binding for category %s", b.category)}
		}
		seenCategories[key] = true

		rb := resolvedBinding{
			category:    b.category,
			lowestLevel: b.lowestLevel,
			hasLevel:    b.hasLevel,
			parentSinks: b.parentSinks,
		}
		for _, id := range b.sinkIDs {
			s, ok := cfg.Sinks[id]
			if !ok {
				return &core.ConfigError{Reason: fmt.Sprintf("logger %s references unknown sink %q", b.category, id)}
			}
			rb.sinks = append(rb.sinks, s)
		}
		for _, id := range b.filterIDs {
			f, ok := cfg.Filters[id]
			if !ok {
				return &core.ConfigError{Reason: fmt.Sprintf("logger %s references unknown filter %q", b.category, id)}
			}
			rb.filters = append(rb.filters, f.Resolve())
		}
		resolved = append(resolved, rb)
	}

	// Step 3: drain whatever the previous configuration registered.
	if err := drainDisposables(ctx, allowAsync); err != nil {
		return err
	}

	r := root()

	if cfg.Reset {
		r.resetDescendants()
	}

	// Step 4: mutate the live tree. Everything above already validated,
	// so this loop cannot fail partway through.
	var registered []disposable
	newPins := make(map[string]*node, len(resolved)+1)
	for _, rb := range resolved {
		n := r.resolve(rb.category)
		n.mu.Lock()
		n.sinks = rb.sinks
		n.filters = rb.filters
		n.parentSinks = rb.parentSinks
		if rb.hasLevel {
			n.lowestLevel = rb.lowestLevel
		}
		n.mu.Unlock()
		newPins[rb.category.String()] = n

		for _, s := range rb.sinks {
			sr, isSync := s.(core.SyncReleaser)
			ar, isAsync := s.(core.AsyncReleaser)
			if isSync || isAsync {
				registered = append(registered, disposable{category: rb.category, sync: sr, async: ar})
			}
		}
	}

	// The previous configuration's provider never survives a new apply:
	// a Config that omits ContextStorage leaves ambient propagation
	// unconfigured rather than silently inheriting whatever the last
	// configuration installed.
	r.mu.Lock()
	r.contextStorage = cfg.ContextStorage
	r.mu.Unlock()

	liveDisposables = registered

	// attachDefaultMetaSink resolves/creates the meta node below; pin it
	// too, after that call, so it isn't immediately eligible for
	// collection before its default sink is ever used.
	attachDefaultMetaSink(r)
	newPins[core.MetaCategory.String()] = r.resolve(core.MetaCategory)

	r.mu.Lock()
	r.pins = newPins
	r.mu.Unlock()

	configActive = true
	emitMetaInfo("configuration applied")
	return nil
}

// attachDefaultMetaSink ensures the meta-logger category has at least
// one sink: if no binding covered ["logtape","meta"], it gets a default
// console sink so configuration notices and sink-failure reports are
// never silently dropped.
func attachDefaultMetaSink(r *node) {
	metaNode := r.resolve(core.MetaCategory)
	if len(collectSinks(metaNode, level.Fatal)) > 0 {
		return
	}
	metaNode.mu.Lock()
	metaNode.sinks = []core.Sink{sink.NewConsole(defaultMetaWriter())}
	metaNode.mu.Unlock()
}

// Reset discards every binding applied so far, draining disposables, and
// restores the tree to its just-initialized state: no sinks anywhere
// (not even the meta-logger's default console sink), no ambient-context
// provider, no pinned nodes. Unlike Configure with Reset: true (which
// replaces the active configuration with a new one), Reset clears the
// active configuration entirely: the next Configure call need not set
// Reset to succeed.
func Reset(ctx context.Context) error {
	configMu.Lock()
	defer configMu.Unlock()

	if err := drainDisposables(ctx, true); err != nil {
		return err
	}

	r := root()
	r.resetDescendants()
	r.mu.Lock()
	r.contextStorage = nil
	r.pins = nil
	r.mu.Unlock()

	configActive = false
	return nil
}

// drainDisposables releases whatever the previous Configure/ConfigureSync
// registered: sync disposables close in registration order first, then
// async disposables release concurrently via errgroup.
func drainDisposables(ctx context.Context, allowAsync bool) error {
	if len(liveDisposables) == 0 {
		return nil
	}

	// Refuse before touching anything: a sync-variant caller must not
	// find half the previous configuration drained and the async-only
	// remainder leaked.
	if !allowAsync {
		for _, d := range liveDisposables {
			if d.sync == nil && d.async != nil {
				return &core.ConfigError{Reason: "previous configuration holds async-only disposables; use Configure, not ConfigureSync, to drain them"}
			}
		}
	}

	prev := liveDisposables
	liveDisposables = nil

	for _, d := range prev {
		if d.sync != nil {
			if err := d.sync.Close(); err != nil {
				emitMetaWarning(fmt.Sprintf("sink for %s failed to close: %v", d.category, err))
			}
		}
	}

	var asyncOnly []disposable
	for _, d := range prev {
		if d.sync == nil && d.async != nil {
			asyncOnly = append(asyncOnly, d)
		}
	}
	if len(asyncOnly) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range asyncOnly {
		d := d
		g.Go(func() error {
			if err := d.async.CloseAsync(gctx); err != nil {
				emitMetaWarning(fmt.Sprintf("sink for %s failed to close asynchronously: %v", d.category, err))
			}
			return nil
		})
	}
	return g.Wait()
}
