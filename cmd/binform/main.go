// Command binform is the CLI entry point: parse, roundtrip, serve, and
// version subcommands over the format engine.
package main

import "github.com/LeJamon/binform/internal/cli"

func main() {
	cli.Execute()
}
