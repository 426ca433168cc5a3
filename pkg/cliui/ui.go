// Package cliui is the output facade the CLI and library callers
// print through: an explicit UI handle passed where it is needed, not
// a process-wide logger.
package cliui

import (
	"fmt"
	"io"
	"os"
)

// UI is the minimal printing surface the rest of the module needs.
type UI interface {
	Printf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	DebugWriter() io.Writer
}

// PlainUI prints to stdout/stderr, with debug output gated on the
// debug flag.
type PlainUI struct {
	debug bool
	out   io.Writer
	err   io.Writer
}

var _ UI = PlainUI{}

// NewPlainUI returns a UI writing to the process's stdout and stderr.
func NewPlainUI(debug bool) PlainUI {
	return PlainUI{debug: debug, out: os.Stdout, err: os.Stderr}
}

// NewWriterUI returns a UI writing to the given writers, used by tests.
func NewWriterUI(out, err io.Writer, debug bool) PlainUI {
	return PlainUI{debug: debug, out: out, err: err}
}

func (ui PlainUI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(ui.out, format, args...)
}

func (ui PlainUI) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(ui.err, format, args...)
}

func (ui PlainUI) Debugf(format string, args ...interface{}) {
	if ui.debug {
		fmt.Fprintf(ui.err, format, args...)
	}
}

func (ui PlainUI) DebugWriter() io.Writer {
	if ui.debug {
		return ui.err
	}
	return noopWriter{}
}

type noopWriter struct{}

var _ io.Writer = noopWriter{}

func (w noopWriter) Write(data []byte) (int, error) { return len(data), nil }
