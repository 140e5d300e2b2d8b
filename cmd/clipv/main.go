// clipv is the command-line client for the clipvd daemon.
package main

import (
	"fmt"
	"os"

	"github.com/clipv/clipv/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "clipv:", err)
		os.Exit(1)
	}
}
