// Package analyzer implements a go vet-style static analyzer for
// logtape call sites. It checks:
//
//   - a {placeholder} in a Msg/Lazy template with no corresponding key in
//     a literal properties map (and vice versa: a property the template
//     never references)
//   - .Err(...) called on a LevelCall below Warning, which the dispatch
//     pipeline rejects at runtime with a meta-logger warning and no
//     emitted record
//
// Both checks are best-effort and literal-only: a template or properties
// map built dynamically (not a string/composite literal at the call
// site) is silently skipped rather than guessed at.
package analyzer

import (
	"fmt"
	"go/ast"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer checks for common logtape call-site mistakes. It can be used
// with go vet or as a standalone tool via singlechecker.
var Analyzer = &analysis.Analyzer{
	Name:     "logtapevet",
	Doc:      "check for common logtape mistakes (template/property mismatches, misplaced .Err() calls)",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var belowWarningLevelCtors = map[string]bool{
	"AtTrace": true,
	"AtDebug": true,
	"AtInfo":  true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{(*ast.CallExpr)(nil)}
	insp.Preorder(nodeFilter, func(n ast.Node) {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}

		switch sel.Sel.Name {
		case "Msg", "Lazy":
			checkTemplateProperties(pass, call, sel.Sel.Name)
		case "Err", "ErrLazy":
			checkErrShortcutLevel(pass, call, sel)
		}
	})

	return nil, nil
}

// checkTemplateProperties flags a Msg/Lazy call whose template argument
// is a string literal and whose properties argument (a literal map, or
// for Lazy the literal map returned by a trivial func() map[string]any
// literal) is a composite literal, cross-checking placeholders against
// keys.
func checkTemplateProperties(pass *analysis.Pass, call *ast.CallExpr, method string) {
	if len(call.Args) == 0 {
		return
	}
	tmplLit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || tmplLit.Kind.String() != "STRING" {
		return
	}
	template, err := strconv.Unquote(tmplLit.Value)
	if err != nil {
		return
	}
	placeholders := extractPlaceholders(template)
	if len(placeholders) == 0 {
		return
	}

	var propsLit *ast.CompositeLit
	if len(call.Args) > 1 {
		switch method {
		case "Msg":
			propsLit, _ = call.Args[1].(*ast.CompositeLit)
		case "Lazy":
			fn, ok := call.Args[1].(*ast.FuncLit)
			if !ok || len(fn.Body.List) != 1 {
				return
			}
			ret, ok := fn.Body.List[0].(*ast.ReturnStmt)
			if !ok || len(ret.Results) != 1 {
				return
			}
			propsLit, _ = ret.Results[0].(*ast.CompositeLit)
		}
		if propsLit == nil {
			// A properties argument that isn't a literal map is built
			// dynamically; its keys can't be checked statically.
			return
		}
	}
	if propsLit == nil {
		// No literal properties map at all: every placeholder resolves to
		// the absent marker at runtime. Worth flagging once, cheaply.
		pass.Reportf(call.Pos(), "[LOGTAPE001] template %q references %s but no properties literal is supplied at this call site",
			template, pluralize(placeholders, "placeholder"))
		return
	}

	keys := compositeLitStringKeys(propsLit)
	if keys == nil {
		// Couldn't resolve every key statically (e.g. a non-string-literal
		// key expression); don't guess.
		return
	}

	for _, ph := range placeholders {
		if ph == "*" {
			continue
		}
		root := strings.TrimSpace(strings.FieldsFunc(ph, func(r rune) bool {
			return r == '.' || r == '[' || r == '?'
		})[0])
		if !keys[root] {
			pass.Reportf(call.Pos(), "[LOGTAPE002] template %q references {%s} but properties literal has no key %q", template, ph, root)
		}
	}
	for k := range keys {
		used := false
		for _, ph := range placeholders {
			if ph == "*" || strings.HasPrefix(ph, k) {
				used = true
				break
			}
		}
		if !used {
			pass.Reportf(call.Pos(), "[LOGTAPE003] properties literal supplies key %q but template %q never references it", k, template)
		}
	}
}

// checkErrShortcutLevel flags logger.AtTrace()/AtDebug()/AtInfo()
// followed by .Err(...) or .ErrLazy(...), which the dispatch pipeline
// accepts syntactically (neither method restricts the level in its
// signature) but rejects at runtime: anything below Warning is routed
// to a meta-logger misuse warning and produces no record.
func checkErrShortcutLevel(pass *analysis.Pass, call *ast.CallExpr, sel *ast.SelectorExpr) {
	inner, ok := sel.X.(*ast.CallExpr)
	if !ok {
		return
	}
	innerSel, ok := inner.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}
	if belowWarningLevelCtors[innerSel.Sel.Name] {
		pass.Reportf(call.Pos(), "[LOGTAPE004] .%s(...) after .%s() is below Warning; the error-shortcut dispatch shape only supports Warning, Error, and Fatal and will silently drop this record", sel.Sel.Name, innerSel.Sel.Name)
	}
}

// extractPlaceholders returns the raw content of every {...} placeholder
// in template, skipping {{ }} escapes, mirroring (loosely) the runtime
// parser's own scan.
func extractPlaceholders(template string) []string {
	var out []string
	n := len(template)
	for i := 0; i < n; i++ {
		if template[i] != '{' {
			continue
		}
		if i+1 < n && template[i+1] == '{' {
			i++
			continue
		}
		closeIdx := strings.IndexByte(template[i+1:], '}')
		if closeIdx < 0 {
			break
		}
		content := strings.TrimSpace(template[i+1 : i+1+closeIdx])
		if content != "" {
			out = append(out, content)
		}
		i += closeIdx + 1
	}
	return out
}

// compositeLitStringKeys resolves a map[string]any{...} composite
// literal's keys, returning nil if any key isn't a plain string literal
// (e.g. a computed key), in which case the caller should skip the check
// rather than report a false positive.
func compositeLitStringKeys(lit *ast.CompositeLit) map[string]bool {
	keys := make(map[string]bool, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return nil
		}
		keyLit, ok := kv.Key.(*ast.BasicLit)
		if !ok || keyLit.Kind.String() != "STRING" {
			return nil
		}
		key, err := strconv.Unquote(keyLit.Value)
		if err != nil {
			return nil
		}
		keys[key] = true
	}
	return keys
}

func pluralize(items []string, noun string) string {
	if len(items) == 1 {
		return fmt.Sprintf("%d %s", len(items), noun)
	}
	return fmt.Sprintf("%d %ss", len(items), noun)
}
