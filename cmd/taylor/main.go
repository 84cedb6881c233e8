// Command taylor builds Taylor polynomials of functions of x and reports
// how well they approximate the function and its derivative.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/taylorlab/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// Commands report their own errors; only print what they left silent.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
