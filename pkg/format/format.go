// Package format backs the CLI's --format/--value custom output
// expansion and the --condition node predicate. Expressions run in a
// restricted Starlark environment exposing only the node's name,
// data, root and two path helpers; there is no ambient filesystem,
// network or process access to escape into.
package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/syntax"

	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/tree"
	"github.com/teemtee/fmf/pkg/value"
)

// EvalValue evaluates one --value expression against a node and
// returns the result's display form.
func EvalValue(expression string, n *tree.Node) (string, error) {
	result, err := eval(expression, n)
	if err != nil {
		return "", err
	}
	if s, ok := starlark.AsString(result); ok {
		return s, nil
	}
	return result.String(), nil
}

// EvalCondition evaluates a --condition expression against a node,
// using Starlark truthiness for the verdict.
func EvalCondition(expression string, n *tree.Node) (bool, error) {
	result, err := eval(expression, n)
	if err != nil {
		return false, err
	}
	return bool(result.Truth()), nil
}

// Expand renders a --format template: every '{i}' placeholder is
// replaced with the evaluated i-th --value expression.
func Expand(template string, valueExprs []string, n *tree.Node) (string, error) {
	out := template
	for i, expr := range valueExprs {
		rendered, err := EvalValue(expr, n)
		if err != nil {
			return "", err
		}
		out = strings.ReplaceAll(out, fmt.Sprintf("{%d}", i), rendered)
	}
	return out, nil
}

func eval(expression string, n *tree.Node) (starlark.Value, error) {
	expr, err := syntax.ParseExpr("expression", expression, syntax.BlockScanner)
	if err != nil {
		return nil, fmferrors.NewGeneral("invalid expression %q: %s", expression, err)
	}

	thread := &starlark.Thread{Name: "fmf-format"}
	result, err := starlark.EvalExpr(thread, expr, environment(n))
	if err != nil {
		return nil, fmferrors.NewGeneral("failed to evaluate %q: %s", expression, err)
	}
	return result, nil
}

// environment builds the sandbox: node attributes plus basename and
// dirname, nothing else.
func environment(n *tree.Node) starlark.StringDict {
	return starlark.StringDict{
		"name":     starlark.String(n.Name),
		"data":     toStarlark(n.Data),
		"root":     starlark.String(n.Root()),
		"basename": starlark.NewBuiltin("basename", pathBuiltin(filepath.Base)),
		"dirname":  starlark.NewBuiltin("dirname", pathBuiltin(filepath.Dir)),
	}
}

func pathBuiltin(fn func(string) string) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var path string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &path); err != nil {
			return nil, err
		}
		return starlark.String(fn(path)), nil
	}
}

func toStarlark(v value.Value) starlark.Value {
	switch tv := v.(type) {
	case nil, value.Null:
		return starlark.None
	case value.Bool:
		return starlark.Bool(tv)
	case value.Int:
		return starlark.MakeInt64(int64(tv))
	case value.Float:
		return starlark.Float(tv)
	case value.String:
		return starlark.String(tv)
	case *value.List:
		items := make([]starlark.Value, tv.Len())
		for i, item := range tv.Items {
			items[i] = toStarlark(item)
		}
		return starlark.NewList(items)
	case *value.Map:
		dict := starlark.NewDict(tv.Len())
		tv.Iterate(func(k string, val value.Value) {
			_ = dict.SetKey(starlark.String(k), toStarlark(val))
		})
		return dict
	default:
		return starlark.None
	}
}
