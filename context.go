package logtape

import (
	"context"

	"github.com/logtape-go/logtape/core"
)

// Store holds the ambient state WithContext and WithCategoryPrefix
// thread through a call tree: bound properties merged beneath a call's
// own properties, and a category prefix applied to every record emitted
// underneath.
type Store struct {
	// Properties are merged under a call's explicit properties: the
	// explicit properties win on key conflicts.
	Properties map[string]any

	// Prefix, when non-empty, is prepended to the category of every
	// record emitted within the Run call.
	Prefix core.Category
}

// ContextStorage is the pluggable propagation mechanism behind
// WithContext and WithCategoryPrefix. The default, ContextVarStorage, is
// backed by context.Context itself — Go has no implicit per-goroutine
// storage, so callers thread the context Run hands their callback the
// same way they would any other derived context.Context.
//
// A custom ContextStorage lets an application substitute a true
// task-local propagation mechanism (e.g. backed by a request-scoped
// global keyed off a goroutine ID in specialized runtimes) without
// changing call sites.
type ContextStorage interface {
	// Run merges store over whatever store ctx already carries (store's
	// fields win on conflict) and invokes fn with the resulting context.
	Run(ctx context.Context, store Store, fn func(ctx context.Context))

	// GetStore returns the store visible at ctx. ok is false only when
	// nothing has ever called Run on this storage for an ancestor of
	// ctx; an empty-but-present store still reports ok true.
	GetStore(ctx context.Context) (store Store, ok bool)
}

type contextVarKey struct{}

// ContextVarStorage is the default ContextStorage, implemented with a
// single private context.Context value key holding a copy-on-write
// Store: each Run merges over the parent's store and hands the callback
// a derived context.
type ContextVarStorage struct{}

func (ContextVarStorage) Run(ctx context.Context, store Store, fn func(ctx context.Context)) {
	parent, _ := ContextVarStorage{}.GetStore(ctx)
	merged := mergeStore(parent, store)
	fn(context.WithValue(ctx, contextVarKey{}, &merged))
}

func (ContextVarStorage) GetStore(ctx context.Context) (Store, bool) {
	v, ok := ctx.Value(contextVarKey{}).(*Store)
	if !ok {
		return Store{}, false
	}
	return *v, true
}

func mergeStore(parent, child Store) Store {
	properties := make(map[string]any, len(parent.Properties)+len(child.Properties))
	for k, v := range parent.Properties {
		properties[k] = v
	}
	for k, v := range child.Properties {
		properties[k] = v
	}

	prefix := parent.Prefix
	if len(child.Prefix) > 0 {
		prefix = append(append(core.Category(nil), parent.Prefix...), child.Prefix...)
	}

	return Store{Properties: properties, Prefix: prefix}
}

// contextStorage returns the root's configured ContextStorage, or nil if
// none has been configured (before any Configure/ConfigureSync call, or
// after a Config explicitly set it to nil).
func contextStorage() ContextStorage {
	r := root()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contextStorage
}

// WithContext runs fn with props merged into the ambient property store
// visible to every record emitted within fn, beneath any bound (With) or
// per-call properties, which still win on key conflicts. If no
// ContextStorage is configured, fn still runs (with ctx unchanged) but a
// ContextMisconfigured warning is emitted to the meta-logger: ambient
// context propagation silently becoming a no-op would be far more
// surprising than a warning plus graceful degradation.
func WithContext(ctx context.Context, props map[string]any, fn func(ctx context.Context)) {
	st := contextStorage()
	if st == nil {
		emitMetaWarning("WithContext called with no ContextStorage configured; properties will not propagate")
		fn(ctx)
		return
	}
	st.Run(ctx, Store{Properties: props}, fn)
}

// WithCategoryPrefix runs fn with prefix prepended to the category of
// every record emitted within fn. Nested calls compose: an inner prefix
// is appended after an outer one, not replacing it.
func WithCategoryPrefix(ctx context.Context, prefix CategoryArg, fn func(ctx context.Context)) {
	st := contextStorage()
	cat := toCategory(prefix)
	if st == nil {
		emitMetaWarning("WithCategoryPrefix called with no ContextStorage configured; prefix will not propagate")
		fn(ctx)
		return
	}
	st.Run(ctx, Store{Prefix: cat}, fn)
}

// ambientStore reads the current ambient store (if any) for use by the
// dispatch pipeline; it returns a zero Store when no ContextStorage is
// installed or ctx is nil.
func ambientStore(ctx context.Context) Store {
	st := contextStorage()
	if st == nil || ctx == nil {
		return Store{}
	}
	store, _ := st.GetStore(ctx)
	return store
}
