package climd

import (
	"github.com/spf13/cobra"

	fmf "github.com/teemtee/fmf"
	"github.com/teemtee/fmf/pkg/cliui"
)

type InitOptions struct {
	Global *GlobalOptions
	Path   string
}

func NewInitOptions(global *GlobalOptions) *InitOptions {
	return &InitOptions{Global: global}
}

func NewInitCmd(o *InitOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new metadata tree root",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringVar(&o.Path, "path", ".", "Directory to initialize")
	return cmd
}

func (o *InitOptions) Run() error {
	ui := cliui.NewPlainUI(o.Global.Debug)

	root, err := fmf.Init(o.Path)
	if err != nil {
		return err
	}
	ui.Printf("Metadata tree '%s' successfully initialized.\n", root)
	return nil
}
