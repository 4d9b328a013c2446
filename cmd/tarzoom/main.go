// Command tarzoom packs DeepZoom pyramids into tarzoom archives: every
// tile of <name>.dzi + <name>_files/ concatenated into <name>.tzb with
// a JSON offsets index in <name>.tzi, so a pyramid ships as two files
// instead of thousands.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cnr-isti-vclab/openlime/tarzoom"
)

func main() {
	tilesize := flag.Int("tilesize", 256, "tile side in pixels recorded in the index")
	overlap := flag.Int("overlap", 0, "tile overlap recorded in the index")
	format := flag.String("format", "jpg", "tile image format recorded in the index")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tarzoom [flags] <basename>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	for _, basename := range flag.Args() {
		idx, err := tarzoom.Pack(basename, *tilesize, *overlap, *format)
		if err != nil {
			log.Fatalf("pack %s: %v", basename, err)
		}
		log.Printf("packed %s: %d levels, %d tiles", basename, idx.NLevels, len(idx.Offsets)-1)
	}
}
