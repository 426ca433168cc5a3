package cliui

import (
	"fmt"
	"os"
)

// ColorMode controls whether Color wraps text in ANSI sequences.
type ColorMode int

const (
	// ColorAuto enables coloring when stdout is a terminal and the
	// NO_COLOR convention does not forbid it.
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// DetectColorMode resolves ColorAuto using the NO_COLOR and COLOR
// environment variables (COLOR=0 off, COLOR=1 on), falling back to
// terminal detection on stdout.
func DetectColorMode() ColorMode {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return ColorOff
	}
	switch os.Getenv("COLOR") {
	case "0":
		return ColorOff
	case "1":
		return ColorOn
	}
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return ColorOn
	}
	return ColorOff
}

var colorCodes = map[string]int{
	"black": 30, "red": 31, "green": 32, "yellow": 33,
	"blue": 34, "magenta": 35, "cyan": 36, "white": 37,
}

// Color returns text wrapped in the ANSI sequence for the named color
// ("red", "lightblue", ...) when mode allows it, otherwise unchanged.
func Color(text, color string, mode ColorMode) string {
	if mode == ColorAuto {
		mode = DetectColorMode()
	}
	if mode != ColorOn {
		return text
	}

	light := 0
	if len(color) > 5 && color[:5] == "light" {
		light = 1
		color = color[5:]
	}
	code, ok := colorCodes[color]
	if !ok {
		return text
	}
	return fmt.Sprintf("\033[%d;%dm%s\033[1;m", light, code, text)
}
