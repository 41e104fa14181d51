// Command choicegen generates programs from recorded decisions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/choicegen/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
