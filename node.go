package logtape

import (
	"sync"
	"weak"

	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/filter"
	"github.com/logtape-go/logtape/level"
)

// ParentSinkPolicy controls whether a node's emit walks its ancestors'
// sinks (Inherit) or stops at itself (Override).
type ParentSinkPolicy int

const (
	// ParentSinksInherit walks sinks from the root down to the emitting
	// node, ancestors first. This is the default.
	ParentSinksInherit ParentSinkPolicy = iota
	// ParentSinksOverride uses only the emitting node's own sinks.
	ParentSinksOverride
)

// node is one entry in the category tree, one per category path. It
// lives as long as something holds a reference to it: a *Logger handle,
// or a configuration's pin set (see root.pins below). Children are held
// weakly so an unreferenced subtree becomes collectible; resetDescendants
// prunes dead weak entries as it walks, and getChild recreates a node
// whenever its weak slot has already been collected.
type node struct {
	mu sync.RWMutex

	parent   *node
	category core.Category
	children map[string]weak.Pointer[node]

	sinks       []core.Sink
	filters     []core.Filter
	parentSinks ParentSinkPolicy
	lowestLevel level.Level

	// root only.
	contextStorage ContextStorage
	pins           map[string]*node
}

func newNode(parent *node, category core.Category) *node {
	return &node{
		parent:      parent,
		category:    category,
		children:    make(map[string]weak.Pointer[node]),
		lowestLevel: level.Trace,
	}
}

var (
	rootOnce sync.Once
	rootNode *node
)

// root returns the process-wide singleton root node, created on first
// use. Go links exactly one copy of this package per process, so a
// package-level sync.Once is all the singleton needs.
func root() *node {
	rootOnce.Do(func() {
		rootNode = newNode(nil, core.Category{})
	})
	return rootNode
}

// getChild returns the child of n named segment, creating it if
// necessary (or if the weak slot for it has already been collected).
func (n *node) getChild(segment string) *node {
	n.mu.RLock()
	if wp, ok := n.children[segment]; ok {
		if c := wp.Value(); c != nil {
			n.mu.RUnlock()
			return c
		}
	}
	n.mu.RUnlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	if wp, ok := n.children[segment]; ok {
		if c := wp.Value(); c != nil {
			return c
		}
	}
	child := newNode(n, n.category.Child(segment))
	n.children[segment] = weak.Make(child)
	return child
}

// resolve walks segs from n, creating any missing descendants.
func (n *node) resolve(segs core.Category) *node {
	cur := n
	for _, seg := range segs {
		cur = cur.getChild(seg)
	}
	return cur
}

// resetDescendants restores n and every live descendant to default
// state (no sinks, no filters, inherit parent sinks, lowest level
// trace) without structurally removing nodes. Dead weak entries
// encountered along the way are pruned.
func (n *node) resetDescendants() {
	n.mu.Lock()
	n.sinks = nil
	n.filters = nil
	n.parentSinks = ParentSinksInherit
	n.lowestLevel = level.Trace
	live := make([]*node, 0, len(n.children))
	for seg, wp := range n.children {
		if c := wp.Value(); c != nil {
			live = append(live, c)
		} else {
			delete(n.children, seg)
		}
	}
	n.mu.Unlock()

	for _, c := range live {
		c.resetDescendants()
	}
}

// effectiveFilter resolves the filter chain that governs n: n's own
// filters ANDed together if it has any, otherwise its parent's chain,
// recursively. A node with no filters anywhere up to the root accepts
// everything.
func effectiveFilter(n *node) core.Filter {
	for cur := n; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		fs := cur.filters
		cur.mu.RUnlock()
		if len(fs) > 0 {
			return filter.All(fs...)
		}
	}
	return func(*core.Record) bool { return true }
}

// collectSinks resolves the sink multiset visible to a record of the
// given severity emitted at n, according to n's parent-sink policy. For
// "override", only n's own sinks. For "inherit", sinks from the root
// down to n, ancestors first; an ancestor contributes its sinks only if
// its own lowestLevel would accept lvl.
func collectSinks(n *node, lvl level.Level) []core.Sink {
	n.mu.RLock()
	policy := n.parentSinks
	own := n.sinks
	n.mu.RUnlock()

	if policy == ParentSinksOverride {
		return append([]core.Sink(nil), own...)
	}

	var chain []*node
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	var sinks []core.Sink
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		cur.mu.RLock()
		if cur.lowestLevel != level.Disabled && lvl >= cur.lowestLevel {
			sinks = append(sinks, cur.sinks...)
		}
		cur.mu.RUnlock()
	}
	return sinks
}
