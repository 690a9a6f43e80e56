// Command ralix is the Ralix language CLI: run, ast and repl
// subcommands over the pkg/ralix embedding surface.
package main

import (
	"os"

	"github.com/ralix-lang/ralix/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
