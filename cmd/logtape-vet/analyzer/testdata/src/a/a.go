// Package a is analyzer test fixture data, not part of the module.
package a

type levelCall struct{}

func (levelCall) Msg(template string, props ...map[string]any) {}
func (levelCall) Lazy(template string, fn func() map[string]any) {}
func (levelCall) Err(err error, template string, props ...map[string]any) {}
func (levelCall) ErrLazy(err error, template string, fn func() map[string]any) {}

type logger struct{}

func (logger) AtTrace() levelCall   { return levelCall{} }
func (logger) AtDebug() levelCall   { return levelCall{} }
func (logger) AtInfo() levelCall    { return levelCall{} }
func (logger) AtWarning() levelCall { return levelCall{} }
func (logger) AtError() levelCall   { return levelCall{} }

func run() {
	var l logger
	var call levelCall

	call.Msg("slow query {dur}ms", map[string]any{"dur": 1200}) // ok: placeholder and key match

	call.Msg("slow query {dur}ms", map[string]any{"duration": 1200}) // want `\[LOGTAPE002\] template "slow query \{dur\}ms" references \{dur\} but properties literal has no key "dur"` `\[LOGTAPE003\] properties literal supplies key "duration" but template "slow query \{dur\}ms" never references it`

	call.Msg("slow query {dur}ms", map[string]any{"dur": 1200, "extra": true}) // want `\[LOGTAPE003\] properties literal supplies key "extra" but template "slow query \{dur\}ms" never references it`

	call.Msg("user {user.name} logged in") // want `\[LOGTAPE001\] template "user \{user\.name\} logged in" references 1 placeholder but no properties literal is supplied at this call site`

	l.AtInfo().Err(nil, "failed") // want `\[LOGTAPE004\] \.Err\(\.\.\.\) after \.AtInfo\(\) is below Warning; the error-shortcut dispatch shape only supports Warning, Error, and Fatal and will silently drop this record`

	l.AtDebug().ErrLazy(nil, "failed", nil) // want `\[LOGTAPE004\] \.ErrLazy\(\.\.\.\) after \.AtDebug\(\) is below Warning; the error-shortcut dispatch shape only supports Warning, Error, and Fatal and will silently drop this record`

	l.AtError().Err(nil, "failed") // ok: Err at Error level
}
