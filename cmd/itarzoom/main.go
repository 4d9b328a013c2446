// Command itarzoom interleaves the per-plane tarzoom archives of a
// relightable image into one, so all planes of a tile sit adjacent in
// the blob and a single ranged read fetches them together.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cnr-isti-vclab/openlime/tarzoom"
)

func main() {
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: itarzoom <plane.tzi>... <output>")
		os.Exit(2)
	}

	args := flag.Args()
	planes, output := args[:len(args)-1], args[len(args)-1]

	idx, err := tarzoom.Interleave(planes, output)
	if err != nil {
		log.Fatalf("interleave: %v", err)
	}
	log.Printf("wrote %s.tzb (%d planes, %d chunks)", output, idx.Stride, len(idx.Offsets)-1)
}
