package main

import (
	"errors"
	"fmt"
	"os"

	uierrs "github.com/cppforlife/go-cli-ui/errors"

	"github.com/teemtee/fmf/internal/climd"
)

func main() {
	command := climd.NewDefaultFmfCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fmf: Error: %s\n", uierrs.NewMultiLineError(err))

		var usage climd.UsageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
