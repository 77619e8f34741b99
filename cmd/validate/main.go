// The validate command checks a scenario catalog file before it ships:
// container shape, required fields, unique ids. Optionally previews a
// seeded selection so show scripts can be inspected ahead of time.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jwebster45206/improv-engine/pkg/scenario"
)

func main() {
	rounds := flag.Int("rounds", 0, "preview a selection of this many scenarios")
	seed := flag.Int64("seed", 0, "seed for the selection preview")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-rounds n] [-seed s] <catalog.json>\n", os.Args[0])
		os.Exit(1)
	}

	path := flag.Arg(0)
	fmt.Printf("Validating %s...\n", path)

	catalog, err := scenario.LoadCatalog(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Catalog is valid: %d scenarios\n", catalog.Len())
	for _, s := range catalog.All() {
		fmt.Printf("  %s: %s\n", s.ID, s.Prompt)
	}

	if *rounds > 0 {
		selected, err := catalog.SelectUnique(*rounds, *seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Selection preview failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nSelection preview (rounds=%d seed=%d):\n", *rounds, *seed)
		for i, s := range selected {
			fmt.Printf("  %d. %s\n", i+1, s.ID)
		}
	}
}
