package climd

import (
	"github.com/spf13/cobra"

	"github.com/teemtee/fmf/pkg/cliui"
	"github.com/teemtee/fmf/pkg/fetch"
)

type CleanOptions struct {
	Global   *GlobalOptions
	CacheDir string
}

func NewCleanOptions(global *GlobalOptions) *CleanOptions {
	return &CleanOptions{Global: global}
}

func NewCleanCmd(o *CleanOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the remote-tree cache directory",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringVar(&o.CacheDir, "cache-dir", "", "Cache directory to remove (defaults to the per-user cache)")
	return cmd
}

func (o *CleanOptions) Run() error {
	ui := cliui.NewPlainUI(o.Global.Debug)

	dir := o.CacheDir
	if dir == "" {
		var err error
		dir, err = fetch.DefaultCacheDir()
		if err != nil {
			return err
		}
	}

	if err := fetch.Clean(dir); err != nil {
		return err
	}
	ui.Debugf("Cache directory '%s' removed.\n", dir)
	return nil
}
