package climd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemtee/fmf/pkg/cliui"
	"github.com/teemtee/fmf/pkg/format"
	"github.com/teemtee/fmf/pkg/tree"
	"github.com/teemtee/fmf/pkg/value"
)

type ShowOptions struct {
	Global *GlobalOptions
	Select SelectOptions

	Format string
	Values []string
}

func NewShowOptions(global *GlobalOptions) *ShowOptions {
	return &ShowOptions{Global: global}
}

func NewShowCmd(o *ShowOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show attributes of matching nodes",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.Select.bind(cmd)
	cmd.Flags().StringVar(&o.Format, "format", "", "Custom output template with {i} placeholders")
	cmd.Flags().StringArrayVar(&o.Values, "value", nil, "Expression bound to the next {i} placeholder (can be repeated)")
	return cmd
}

func (o *ShowOptions) Run() error {
	ui := cliui.NewPlainUI(o.Global.Debug)
	mode := cliui.DetectColorMode()

	nodes, err := o.Select.selectNodes()
	if err != nil {
		return err
	}

	for _, n := range nodes {
		if o.Format != "" {
			out, err := format.Expand(o.Format, o.Values, n)
			if err != nil {
				return err
			}
			ui.Printf("%s\n", out)
			continue
		}
		showNode(ui, n, mode)
	}
	return nil
}

func showNode(ui cliui.UI, n *tree.Node, mode cliui.ColorMode) {
	ui.Printf("%s\n", cliui.Color(n.Name, "lightgreen", mode))
	n.Data.Iterate(func(key string, v value.Value) {
		ui.Printf("%s:%s\n", cliui.Color(key, "green", mode), indentValue(v))
	})
	ui.Printf("\n")
}

// indentValue renders an attribute for display: scalars inline,
// lists and mappings one item per line, indented.
func indentValue(v value.Value) string {
	switch tv := v.(type) {
	case *value.List:
		var out strings.Builder
		for _, item := range tv.Items {
			out.WriteString("\n  - ")
			out.WriteString(item.String())
		}
		return out.String()
	case *value.Map:
		var out strings.Builder
		tv.Iterate(func(k string, val value.Value) {
			out.WriteString("\n  ")
			out.WriteString(k)
			out.WriteString(": ")
			out.WriteString(val.String())
		})
		return out.String()
	default:
		return " " + v.String()
	}
}
