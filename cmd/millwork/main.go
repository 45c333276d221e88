// Command millwork compiles recipe definitions, simulates processors and
// serves a live world.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/millwork/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
