// Relic - entity-relationship graph engine for archival file inventories.
//
// Relic turns DROID-style file inventory CSVs into a typed relation
// graph with stable identifiers, validates it against a fixed
// constraint set, and exports it as Turtle or N-Triples.
package main

import (
	"fmt"
	"os"

	"github.com/archivekit/relic/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
