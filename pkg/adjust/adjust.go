// Package adjust applies a tree's 'adjust' rule lists against a
// supplied Context, conditionally merging patch data into each node.
package adjust

import (
	"github.com/teemtee/fmf/pkg/fmfcontext"
	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/merge"
	"github.com/teemtee/fmf/pkg/tree"
	"github.com/teemtee/fmf/pkg/value"
)

// Callback lets a caller inspect or rewrite a node's effective rule
// list before it is evaluated.
type Callback func(node *tree.Node, rules *value.List) (*value.List, error)

// Options configures one Adjust run.
type Options struct {
	// RuleKey names the attribute holding a node's rule list; defaults
	// to "adjust".
	RuleKey string

	// AdditionalRules, if set, is appended after every node's own rule
	// list and evaluated the same way.
	AdditionalRules *value.List

	Callback Callback
}

func (o Options) ruleKey() string {
	if o.RuleKey == "" {
		return "adjust"
	}
	return o.RuleKey
}

// Adjust walks root and every descendant, applying each node's rule
// list against ctx. It is idempotent: a node already marked Adjusted
// is left untouched on a subsequent call, so running Adjust twice
// with the same context yields the same tree.
func Adjust(root *tree.Node, ctx fmfcontext.Context, opts Options) error {
	return adjustNode(root, ctx, opts)
}

func adjustNode(n *tree.Node, ctx fmfcontext.Context, opts Options) error {
	if n.Adjusted {
		return nil
	}

	rules, err := effectiveRules(n, opts)
	if err != nil {
		return err
	}

	for _, item := range rules.Items {
		ruleMap, ok := item.(*value.Map)
		if !ok {
			return fmferrors.NewContext("adjust rule at node '%s' must be a mapping", n.Name)
		}

		applied, cont, err := applyRule(n, ruleMap, ctx)
		if err != nil {
			return err
		}
		if applied && !cont {
			break
		}
	}

	n.Adjusted = true

	for _, child := range n.Children() {
		if err := adjustNode(child, ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

func effectiveRules(n *tree.Node, opts Options) (*value.List, error) {
	var rules *value.List

	if raw, ok := n.Data.Get(opts.ruleKey()); ok {
		switch r := raw.(type) {
		case *value.List:
			rules = r
		case *value.Map:
			rules = value.NewList(r)
		default:
			return nil, fmferrors.NewContext("'%s' at node '%s' must be a mapping or list of mappings", opts.ruleKey(), n.Name)
		}
	} else {
		rules = value.NewList()
	}

	if opts.AdditionalRules != nil {
		rules = rules.Concat(opts.AdditionalRules)
	}

	if opts.Callback != nil {
		effective, err := opts.Callback(n, rules)
		if err != nil {
			return nil, err
		}
		rules = effective
	}

	return rules, nil
}

// applyRule evaluates one rule's 'when' clause and, if true, merges its
// patch keys into n.Data. It reports whether the rule applied and
// whether processing should continue to the next rule.
func applyRule(n *tree.Node, rule *value.Map, ctx fmfcontext.Context) (applied, cont bool, err error) {
	cont = true
	if raw, ok := rule.Get("continue"); ok {
		b, ok := raw.(value.Bool)
		if !ok {
			return false, true, fmferrors.NewContext("'continue' in an adjust rule at node '%s' must be a boolean", n.Name)
		}
		cont = bool(b)
	}

	outcome := fmfcontext.True
	if raw, ok := rule.Get("when"); ok {
		whenStr, ok := raw.(value.String)
		if !ok {
			return false, cont, fmferrors.NewContext("'when' in an adjust rule at node '%s' must be a string", n.Name)
		}
		outcome, err = fmfcontext.Eval(string(whenStr), ctx)
		if err != nil {
			return false, cont, err
		}
	}

	if outcome != fmfcontext.True {
		return false, true, nil
	}

	patch := value.NewMap()
	for _, key := range rule.Keys() {
		if key == "when" || key == "continue" || key == "because" {
			continue
		}
		v, _ := rule.Get(key)
		patch.Set(key, v)
	}

	if err := merge.MergeInto(n.Data, patch); err != nil {
		return false, cont, err
	}
	return true, cont, nil
}
