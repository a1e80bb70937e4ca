package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/iliyamo/booking-ledger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Error())
		}
		os.Exit(cli.GetExitCode(err))
	}
}
