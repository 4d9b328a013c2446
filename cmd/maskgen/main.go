// Command maskgen writes a random binary mask: a square grayscale JPEG
// whose pixels are independently black or white with equal probability.
package main

import (
	"flag"
	"image"
	"image/jpeg"
	"log"
	"math/rand"
	"os"
	"time"
)

func randomMask(rng *rand.Rand, size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		if rng.Intn(2) == 1 {
			img.Pix[i] = 255
		}
	}
	return img
}

func writeMask(path string, img *image.Gray) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	out := flag.String("o", "mask.jpg", "output file")
	size := flag.Int("size", 320, "mask width and height in pixels")
	seed := flag.Int64("seed", 0, "random seed (0 seeds from the clock)")
	flag.Parse()

	if *size <= 0 {
		log.Fatalf("invalid size %d", *size)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	if err := writeMask(*out, randomMask(rng, *size)); err != nil {
		log.Fatalf("failed to write mask: %v", err)
	}
	log.Printf("wrote %dx%d mask to %s", *size, *size, *out)
}
