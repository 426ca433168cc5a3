package climd

import (
	"github.com/spf13/cobra"

	fmf "github.com/teemtee/fmf"
	"github.com/teemtee/fmf/pkg/adjust"
	"github.com/teemtee/fmf/pkg/cliui"
	"github.com/teemtee/fmf/pkg/format"
	"github.com/teemtee/fmf/pkg/query"
	"github.com/teemtee/fmf/pkg/tree"
)

// SelectOptions holds the node-selection flags ls and show share.
type SelectOptions struct {
	Path       string
	Names      []string
	Filters    []string
	Conditions []string
	Keys       []string
	Whole      bool
	Contexts   []string
}

func (o *SelectOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Path, "path", ".", "Path to the metadata tree")
	cmd.Flags().StringArrayVar(&o.Names, "name", nil, "Node name regular expression (can be repeated)")
	cmd.Flags().StringArrayVar(&o.Filters, "filter", nil, "Filter expression over node attributes (can be repeated)")
	cmd.Flags().StringArrayVar(&o.Conditions, "condition", nil, "Condition expression over node attributes (can be repeated)")
	cmd.Flags().StringArrayVar(&o.Keys, "key", nil, "Attribute key that must be present (can be repeated)")
	cmd.Flags().BoolVar(&o.Whole, "whole", false, "Include branch nodes, not only leaves")
	cmd.Flags().StringArrayVar(&o.Contexts, "context", nil, "Context dimension=value used to adjust the tree (can be repeated)")
}

// selectNodes builds the tree, adjusts it if a context was supplied
// and prunes it per the selection flags.
func (o *SelectOptions) selectNodes() ([]*tree.Node, error) {
	t, err := fmf.NewTree(o.Path)
	if err != nil {
		return nil, err
	}

	ctx, err := parseContext(o.Contexts)
	if err != nil {
		return nil, err
	}
	if ctx != nil {
		if err := t.Adjust(ctx, adjust.Options{}); err != nil {
			return nil, err
		}
	}

	var conditions []query.Predicate
	for _, expr := range o.Conditions {
		expr := expr
		conditions = append(conditions, func(n *tree.Node) bool {
			// An expression that fails on this node (e.g. a missing
			// attribute) does not select it.
			ok, err := format.EvalCondition(expr, n)
			return err == nil && ok
		})
	}

	return t.Prune(query.PruneOptions{
		ClimbOptions: query.ClimbOptions{Whole: o.Whole},
		Names:        o.Names,
		Keys:         o.Keys,
		Filters:      o.Filters,
		Conditions:   conditions,
	})
}

type LsOptions struct {
	Global *GlobalOptions
	Select SelectOptions
}

func NewLsOptions(global *GlobalOptions) *LsOptions {
	return &LsOptions{Global: global}
}

func NewLsCmd(o *LsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List matching node names",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Select.bind(cmd)
	return cmd
}

func (o *LsOptions) Run() error {
	ui := cliui.NewPlainUI(o.Global.Debug)

	nodes, err := o.Select.selectNodes()
	if err != nil {
		return err
	}
	for _, n := range nodes {
		ui.Printf("%s\n", n.Name)
	}
	return nil
}
