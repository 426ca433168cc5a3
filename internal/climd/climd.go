// Package climd wires the fmf command-line interface: init, ls, show
// and clean on top of the library facade. Each command owns an
// Options struct bound to its flags, with a RunE hook doing the work,
// so commands stay constructible and runnable from tests.
package climd

import (
	"fmt"
	"strings"

	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"

	"github.com/teemtee/fmf/pkg/fmfcontext"
)

// UsageError marks a command-line usage problem, mapped to exit code
// 2 by the binary.
type UsageError struct {
	Err error
}

func (e UsageError) Error() string { return e.Err.Error() }
func (e UsageError) Unwrap() error { return e.Err }

// GlobalOptions carries the flags shared by every subcommand.
type GlobalOptions struct {
	Verbose bool
	Debug   bool
}

// NewDefaultFmfCmd builds the fmf root command with all subcommands
// attached.
func NewDefaultFmfCmd() *cobra.Command {
	global := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   "fmf",
		Short: "fmf explores flexible metadata format trees",
		Long: `fmf materializes a hierarchical metadata tree from YAML files,
applying inheritance, merge operators, directives and context
adjustments, and lets you list, show and filter the resulting nodes.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVar(&global.Verbose, "verbose", false, "Accepted by every command; no command prints additional output for it")
	cmd.PersistentFlags().BoolVar(&global.Debug, "debug", false, "Print debugging details")

	cmd.AddCommand(NewInitCmd(NewInitOptions(global)))
	cmd.AddCommand(NewLsCmd(NewLsOptions(global)))
	cmd.AddCommand(NewShowCmd(NewShowOptions(global)))
	cmd.AddCommand(NewCleanCmd(NewCleanOptions(global)))

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return UsageError{err}
	})

	// Affects children as well
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.WrapRunEForCmd(disallowExtraArgs))

	return cmd
}

// disallowExtraArgs rejects positional arguments on every command; no
// fmf command takes any, and stray ones should fail as usage errors.
func disallowExtraArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return UsageError{fmt.Errorf("command '%s' does not accept extra arguments '%s'", cmd.CommandPath(), args[0])}
	}
	return nil
}

// parseContext turns repeated 'dimension=value[,value...]' flag
// occurrences into a Context.
func parseContext(raw []string) (fmfcontext.Context, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dims := map[string][]string{}
	for _, entry := range raw {
		dim, val, ok := strings.Cut(entry, "=")
		if !ok || dim == "" || val == "" {
			return nil, UsageError{fmt.Errorf("invalid context %q, expected dimension=value", entry)}
		}
		for _, v := range strings.Split(val, ",") {
			dims[dim] = append(dims[dim], strings.TrimSpace(v))
		}
	}
	return fmfcontext.New(dims), nil
}
