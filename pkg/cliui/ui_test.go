package cliui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemtee/fmf/pkg/cliui"
)

func TestPlainUIRoutesOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	ui := cliui.NewWriterUI(&out, &errOut, false)

	ui.Printf("hello %s\n", "world")
	ui.Errorf("oops\n")
	ui.Debugf("hidden\n")

	assert.Equal(t, "hello world\n", out.String())
	assert.Equal(t, "oops\n", errOut.String())
}

func TestPlainUIDebugGate(t *testing.T) {
	var out, errOut bytes.Buffer

	ui := cliui.NewWriterUI(&out, &errOut, true)
	ui.Debugf("visible\n")
	assert.Equal(t, "visible\n", errOut.String())

	n, err := cliui.NewWriterUI(&out, &errOut, false).DebugWriter().Write([]byte("dropped"))
	assert.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestColorOffLeavesTextAlone(t *testing.T) {
	assert.Equal(t, "plain", cliui.Color("plain", "red", cliui.ColorOff))
}

func TestColorOnWrapsInAnsiSequence(t *testing.T) {
	got := cliui.Color("text", "red", cliui.ColorOn)
	assert.Contains(t, got, "text")
	assert.Contains(t, got, "\033[0;31m")

	light := cliui.Color("text", "lightgreen", cliui.ColorOn)
	assert.Contains(t, light, "\033[1;32m")
}

func TestColorUnknownNameLeavesTextAlone(t *testing.T) {
	assert.Equal(t, "text", cliui.Color("text", "chartreuse", cliui.ColorOn))
}
