package logtape

import (
	"context"
	"fmt"
	"time"

	"github.com/logtape-go/logtape/core"
	"github.com/logtape-go/logtape/level"
	"github.com/logtape-go/logtape/parser"
	"github.com/logtape-go/logtape/selflog"
)

// Logger is a handle onto one node of the category tree, plus whatever
// properties were bound to it via With. Loggers are cheap to obtain
// repeatedly: GetLogger(c) returns a handle onto the same underlying
// node for equal categories for as long as anything keeps that node
// alive, and recreates it transparently otherwise (see node.getChild).
type Logger struct {
	node  *node
	bound map[string]any
}

// GetLogger returns the logger for category, creating any missing
// ancestors. category may be a core.Category, a []string, or a single
// string segment.
func GetLogger(category CategoryArg) *Logger {
	return &Logger{node: root().resolve(toCategory(category))}
}

// GetChild returns the logger for l's category with segment appended,
// inheriting l's bound properties.
func (l *Logger) GetChild(segment CategoryArg) *Logger {
	n := l.node
	for _, s := range toCategory(segment) {
		n = n.getChild(s)
	}
	return &Logger{node: n, bound: l.bound}
}

// With returns a logger identical to l but with props merged over
// its existing bound properties (props wins on key conflict with
// whatever l already had bound, but always loses to properties supplied
// at the individual call site).
func (l *Logger) With(props map[string]any) *Logger {
	merged := make(map[string]any, len(l.bound)+len(props))
	for k, v := range l.bound {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}
	return &Logger{node: l.node, bound: merged}
}

// Category returns l's category.
func (l *Logger) Category() core.Category {
	return l.node.category.Clone()
}

// TemplateFunc is the function a lazy template-literal callback must
// invoke exactly once, mirroring a tagged-template call: fragments is
// the literal-fragment sequence, values the interpolated values between
// them.
type TemplateFunc func(fragments []string, values ...any) []any

// LevelCall is the fluent builder behind the five message-dispatch
// shapes. Obtain one with Logger.AtTrace/.../AtFatal.
type LevelCall struct {
	logger *Logger
	level  level.Level
	ctx    context.Context
}

func (l *Logger) at(lvl level.Level) *LevelCall {
	return &LevelCall{logger: l, level: lvl, ctx: context.Background()}
}

func (l *Logger) AtTrace() *LevelCall   { return l.at(level.Trace) }
func (l *Logger) AtDebug() *LevelCall   { return l.at(level.Debug) }
func (l *Logger) AtInfo() *LevelCall    { return l.at(level.Info) }
func (l *Logger) AtWarning() *LevelCall { return l.at(level.Warning) }
func (l *Logger) AtError() *LevelCall   { return l.at(level.Error) }
func (l *Logger) AtFatal() *LevelCall   { return l.at(level.Fatal) }

// Ctx attaches the context carrying ambient WithContext/WithCategoryPrefix
// state to this call.
func (c *LevelCall) Ctx(ctx context.Context) *LevelCall {
	c.ctx = ctx
	return c
}

// Msg is the eager named-placeholder dispatch shape: template is parsed
// and rendered against the optional properties map immediately.
func (c *LevelCall) Msg(template string, props ...map[string]any) {
	c.logger.dispatch(c.ctx, c.level, template, firstProps(props))
}

// Lazy is the lazy-properties dispatch shape: fn is invoked to produce
// the properties map only if the record survives the severity threshold
// gate, so an expensive property computation is skipped for suppressed
// records.
func (c *LevelCall) Lazy(template string, fn func() map[string]any) {
	c.logger.dispatchLazy(c.ctx, c.level, template, fn)
}

// Props is the properties-only dispatch shape, equivalent to Msg with
// the "{*}" wildcard template.
func (c *LevelCall) Props(props map[string]any) {
	c.logger.dispatch(c.ctx, c.level, "{*}", props)
}

// Literal is the template-literal dispatch shape: fragments and values
// are interleaved directly, with no template parsing involved.
func (c *LevelCall) Literal(fragments []string, values ...any) {
	c.logger.dispatchLiteral(c.ctx, c.level, fragments, values)
}

// LazyLiteral is the lazy-template-literal dispatch shape: fn is invoked
// only if the record survives the threshold gate, and must call the
// TemplateFunc it is given exactly once. A violation returns an
// *level.InvalidInputError and also reports to the meta-logger; no
// record is emitted.
func (c *LevelCall) LazyLiteral(fn func(tmpl TemplateFunc)) error {
	return c.logger.dispatchLazyLiteral(c.ctx, c.level, fn)
}

// Err is the error-shortcut dispatch shape, restricted to Warning,
// Error, and Fatal. template defaults to "{error}" when empty.
func (c *LevelCall) Err(err error, template string, props ...map[string]any) {
	c.logger.dispatchError(c.ctx, c.level, err, template, firstProps(props))
}

// ErrLazy is Err with deferred properties: fn runs only if the record
// survives the severity threshold gate, and err is merged into whatever
// it returns. Restricted to Warning, Error, and Fatal like Err.
func (c *LevelCall) ErrLazy(err error, template string, fn func() map[string]any) {
	c.logger.dispatchErrorLazy(c.ctx, c.level, err, template, fn)
}

func firstProps(props []map[string]any) map[string]any {
	if len(props) == 0 {
		return nil
	}
	return props[0]
}

// Flat per-level convenience methods for the common eager case. Each
// has a *Context variant that threads an explicit context.Context for
// WithContext/WithCategoryPrefix propagation.

func (l *Logger) Trace(template string, props ...map[string]any) { l.AtTrace().Msg(template, props...) }
func (l *Logger) Debug(template string, props ...map[string]any) { l.AtDebug().Msg(template, props...) }
func (l *Logger) Info(template string, props ...map[string]any)  { l.AtInfo().Msg(template, props...) }
func (l *Logger) Warning(template string, props ...map[string]any) {
	l.AtWarning().Msg(template, props...)
}
func (l *Logger) Error(template string, props ...map[string]any) { l.AtError().Msg(template, props...) }
func (l *Logger) Fatal(template string, props ...map[string]any) { l.AtFatal().Msg(template, props...) }

func (l *Logger) TraceContext(ctx context.Context, template string, props ...map[string]any) {
	l.AtTrace().Ctx(ctx).Msg(template, props...)
}
func (l *Logger) DebugContext(ctx context.Context, template string, props ...map[string]any) {
	l.AtDebug().Ctx(ctx).Msg(template, props...)
}
func (l *Logger) InfoContext(ctx context.Context, template string, props ...map[string]any) {
	l.AtInfo().Ctx(ctx).Msg(template, props...)
}
func (l *Logger) WarningContext(ctx context.Context, template string, props ...map[string]any) {
	l.AtWarning().Ctx(ctx).Msg(template, props...)
}
func (l *Logger) ErrorContext(ctx context.Context, template string, props ...map[string]any) {
	l.AtError().Ctx(ctx).Msg(template, props...)
}
func (l *Logger) FatalContext(ctx context.Context, template string, props ...map[string]any) {
	l.AtFatal().Ctx(ctx).Msg(template, props...)
}

// LazyValue marks a property whose value is computed only when a record
// is actually constructed, so With can bind an expensive-to-compute
// value without paying for it on records the threshold suppresses:
//
//	log := logger.With(map[string]any{"goroutines": logtape.Lazy(countGoroutines)})
type LazyValue struct {
	fn func() any
}

// Lazy wraps fn as a LazyValue.
func Lazy(fn func() any) LazyValue {
	return LazyValue{fn: fn}
}

// mergeProperties layers maps lowest-priority first: a later layer's
// keys win over an earlier layer's. LazyValue wrappers surviving the
// merge are resolved here, once per record, regardless of how many
// sinks later observe the result.
func mergeProperties(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	for k, v := range out {
		if lv, ok := v.(LazyValue); ok && lv.fn != nil {
			out[k] = lv.fn()
		}
	}
	return out
}

func (l *Logger) prefixedCategory(store Store) core.Category {
	if len(store.Prefix) == 0 {
		return l.node.category
	}
	return append(append(core.Category(nil), store.Prefix...), l.node.category...)
}

// thresholdAllows reports whether lvl clears n's own lowestLevel gate.
// It does not consult ancestors:
// lowestLevel is a per-node floor, not inherited, the same way sinks
// inherit but thresholds gate locally.
func thresholdAllows(n *node, lvl level.Level) bool {
	n.mu.RLock()
	threshold := n.lowestLevel
	n.mu.RUnlock()
	return threshold != level.Disabled && lvl >= threshold
}

// dispatch implements the eager named-placeholder and properties-only
// shapes (and is reused by the lazy-properties and error-shortcut
// shapes once their properties are resolved).
func (l *Logger) dispatch(ctx context.Context, lvl level.Level, template string, props map[string]any) {
	n := l.node
	if !thresholdAllows(n, lvl) {
		return
	}

	store := ambientStore(ctx)
	merged := mergeProperties(store.Properties, l.bound, props)

	tmpl := parser.ParseCached(template)
	message := parser.Render(tmpl, merged)

	rec := &core.Record{
		Category:   l.prefixedCategory(store),
		Level:      lvl,
		Message:    message,
		RawMessage: template,
		Timestamp:  time.Now(),
		Properties: merged,
	}

	if !effectiveFilter(n)(rec) {
		return
	}
	emitRecord(n, rec)
}

// dispatchLazy implements the lazy-properties shape: fn runs only after
// the threshold gate passes.
func (l *Logger) dispatchLazy(ctx context.Context, lvl level.Level, template string, fn func() map[string]any) {
	n := l.node
	if !thresholdAllows(n, lvl) {
		return
	}
	var props map[string]any
	if fn != nil {
		props = fn()
	}
	l.dispatch(ctx, lvl, template, props)
}

// dispatchLiteral implements the template-literal shape: fragments and
// values are interleaved directly, bypassing template parsing. Only
// ambient and bound properties participate; there is no per-call
// properties map in this shape, matching the tagged-template call site
// it models.
func (l *Logger) dispatchLiteral(ctx context.Context, lvl level.Level, fragments []string, values []any) {
	n := l.node
	if !thresholdAllows(n, lvl) {
		return
	}

	store := ambientStore(ctx)
	merged := mergeProperties(store.Properties, l.bound)
	message := parser.RenderLiteral(fragments, values)

	rec := &core.Record{
		Category:   l.prefixedCategory(store),
		Level:      lvl,
		Message:    message,
		RawMessage: append([]string(nil), fragments...),
		Timestamp:  time.Now(),
		Properties: merged,
	}

	if !effectiveFilter(n)(rec) {
		return
	}
	emitRecord(n, rec)
}

// dispatchLazyLiteral implements the lazy-template-literal shape: fn
// runs only after the threshold gate passes, and must call the
// TemplateFunc it receives exactly once.
func (l *Logger) dispatchLazyLiteral(ctx context.Context, lvl level.Level, fn func(tmpl TemplateFunc)) error {
	n := l.node
	if !thresholdAllows(n, lvl) {
		return nil
	}

	var calls int
	var message []any
	var rawFragments []string
	tmplFunc := TemplateFunc(func(fragments []string, values ...any) []any {
		calls++
		message = parser.RenderLiteral(fragments, values)
		rawFragments = append([]string(nil), fragments...)
		return message
	})

	fn(tmplFunc)

	if calls != 1 {
		err := &level.InvalidInputError{
			Reason: fmt.Sprintf("lazy template-literal callback invoked its template function %d time(s), want exactly 1", calls),
		}
		if selflog.IsEnabled() {
			selflog.Printf("[dispatch] %v", err)
		}
		emitMetaWarning(err.Error())
		return err
	}

	store := ambientStore(ctx)
	merged := mergeProperties(store.Properties, l.bound)
	rec := &core.Record{
		Category:   l.prefixedCategory(store),
		Level:      lvl,
		Message:    message,
		RawMessage: rawFragments,
		Timestamp:  time.Now(),
		Properties: merged,
	}

	if !effectiveFilter(n)(rec) {
		return nil
	}
	emitRecord(n, rec)
	return nil
}

// dispatchError implements the error-shortcut shape. It is only valid at
// Warning, Error, or Fatal; a lower level is reported to the meta-logger
// as a misuse warning and produces no record.
func (l *Logger) dispatchError(ctx context.Context, lvl level.Level, err error, template string, props map[string]any) {
	if lvl < level.Warning {
		emitMetaWarning(fmt.Sprintf("error-shortcut dispatch invoked at level %s; only warning, error, and fatal are supported", lvl))
		return
	}
	if template == "" {
		template = "{error}"
	}
	merged := make(map[string]any, len(props)+1)
	for k, v := range props {
		merged[k] = v
	}
	merged["error"] = err
	l.dispatch(ctx, lvl, template, merged)
}

// dispatchErrorLazy implements the error-shortcut shape with deferred
// properties: fn runs only after the threshold gate passes, mirroring
// dispatchLazy.
func (l *Logger) dispatchErrorLazy(ctx context.Context, lvl level.Level, err error, template string, fn func() map[string]any) {
	if lvl < level.Warning {
		emitMetaWarning(fmt.Sprintf("error-shortcut dispatch invoked at level %s; only warning, error, and fatal are supported", lvl))
		return
	}
	if !thresholdAllows(l.node, lvl) {
		return
	}
	var props map[string]any
	if fn != nil {
		props = fn()
	}
	l.dispatchError(ctx, lvl, err, template, props)
}
