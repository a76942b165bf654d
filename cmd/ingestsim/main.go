// Command ingestsim delivers broadcast messages into an ingest directory and
// runs operator-confirmed regression scenarios against it.
package main

import (
	"os"

	"github.com/roach88/ingestsim/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	cli.ReportError(os.Stderr, err)
	os.Exit(cli.GetExitCode(err))
}
