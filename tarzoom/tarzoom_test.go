package tarzoom_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cnr-isti-vclab/openlime/tarzoom"
)

// buildPyramid lays a DeepZoom pyramid out on disk: <name>.dzi plus
// <name>_files/<level>/<tile> with the given contents.
func buildPyramid(t *testing.T, dir, name string, width, height int, levels map[string]map[string]string) string {
	t.Helper()
	basename := filepath.Join(dir, name)
	dzi := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Image xmlns="http://schemas.microsoft.com/deepzoom/2008" TileSize="256" Overlap="0" Format="jpg">
  <Size Width="%d" Height="%d"/>
</Image>`, width, height)
	if err := os.WriteFile(basename+".dzi", []byte(dzi), 0o644); err != nil {
		t.Fatal(err)
	}
	for level, tiles := range levels {
		levelDir := filepath.Join(basename+"_files", level)
		if err := os.MkdirAll(levelDir, 0o755); err != nil {
			t.Fatal(err)
		}
		for tileName, content := range tiles {
			if err := os.WriteFile(filepath.Join(levelDir, tileName), []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return basename
}

// writePlane writes a ready-made .tzi/.tzb pair.
func writePlane(t *testing.T, basename string, idx *tarzoom.Index, blob string) {
	t.Helper()
	if err := tarzoom.WriteIndex(basename+".tzi", idx); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(basename+".tzb", []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPack(t *testing.T) {
	basename := buildPyramid(t, t.TempDir(), "img", 512, 384, map[string]map[string]string{
		"0": {"0_0.jpg": "L0"},
		"1": {
			"0_0.jpg":   "AAAA",
			"1_0.jpg":   "BB",
			"0_1.jpg":   "CCC",
			"1_1.jpg":   "D",
			"notes.txt": "junk",
		},
	})

	idx, err := tarzoom.Pack(basename, 256, 0, "jpg")
	if err != nil {
		t.Fatal(err)
	}

	if idx.Width != 512 || idx.Height != 384 {
		t.Fatalf("wrong size: %dx%d", idx.Width, idx.Height)
	}
	if idx.NLevels != 2 {
		t.Fatalf("expected 2 levels, got %d", idx.NLevels)
	}
	if idx.Tilesize != 256 || idx.Overlap != 0 || idx.Format != "jpg" {
		t.Fatalf("wrong geometry fields: %+v", idx)
	}

	blob, err := os.ReadFile(basename + ".tzb")
	if err != nil {
		t.Fatal(err)
	}
	// Level 0 first, then level 1 row-major with x varying fastest; the
	// stray notes.txt contributes nothing.
	if string(blob) != "L0"+"AAAA"+"BB"+"CCC"+"D" {
		t.Fatalf("wrong blob layout: %q", blob)
	}

	want := []int64{0, 2, 6, 8, 11, 12}
	if len(idx.Offsets) != len(want) {
		t.Fatalf("expected %d offsets, got %d", len(want), len(idx.Offsets))
	}
	for i, off := range want {
		if idx.Offsets[i] != off {
			t.Fatalf("offset %d: expected %d, got %d", i, off, idx.Offsets[i])
		}
	}

	reread, err := tarzoom.ReadIndex(basename + ".tzi")
	if err != nil {
		t.Fatal(err)
	}
	wb, _ := json.Marshal(idx)
	rb, _ := json.Marshal(reread)
	if string(wb) != string(rb) {
		t.Fatalf("index did not round-trip:\nwrote %s\nread  %s", wb, rb)
	}
}

func TestPackLevelOrder(t *testing.T) {
	levels := map[string]map[string]string{}
	var want strings.Builder
	for i := 0; i <= 10; i++ {
		content := fmt.Sprintf("L%02d;", i)
		levels[strconv.Itoa(i)] = map[string]string{"0_0.jpg": content}
		want.WriteString(content)
	}
	basename := buildPyramid(t, t.TempDir(), "deep", 65536, 65536, levels)

	idx, err := tarzoom.Pack(basename, 256, 0, "jpg")
	if err != nil {
		t.Fatal(err)
	}
	if idx.NLevels != 11 {
		t.Fatalf("expected 11 levels, got %d", idx.NLevels)
	}

	blob, err := os.ReadFile(basename + ".tzb")
	if err != nil {
		t.Fatal(err)
	}
	// Level "10" belongs after "9", not between "1" and "2".
	if string(blob) != want.String() {
		t.Fatalf("levels out of order: %q", blob)
	}
}

func TestPackMissingTile(t *testing.T) {
	basename := buildPyramid(t, t.TempDir(), "holey", 512, 512, map[string]map[string]string{
		"0": {"0_0.jpg": "A", "1_1.jpg": "D"},
	})
	if _, err := tarzoom.Pack(basename, 256, 0, "jpg"); err == nil {
		t.Fatal("expected an error for an incomplete tile grid")
	}
}

func TestPackMissingDescriptor(t *testing.T) {
	if _, err := tarzoom.Pack(filepath.Join(t.TempDir(), "absent"), 256, 0, "jpg"); err == nil {
		t.Fatal("expected an error for a missing .dzi")
	}
}

func TestInterleave(t *testing.T) {
	dir := t.TempDir()
	p0 := filepath.Join(dir, "plane_0")
	p1 := filepath.Join(dir, "plane_1")
	writePlane(t, p0, &tarzoom.Index{
		Tilesize: 256, Format: "jpg", Width: 512, Height: 512, NLevels: 1,
		Offsets: []int64{0, 4, 6},
	}, "AAAA"+"BB")
	writePlane(t, p1, &tarzoom.Index{
		Tilesize: 256, Format: "jpg", Width: 512, Height: 512, NLevels: 1,
		Offsets: []int64{0, 2, 6},
	}, "cc"+"dddd")

	out := filepath.Join(dir, "planes")
	idx, err := tarzoom.Interleave([]string{p0 + ".tzi", p1 + ".tzi"}, out)
	if err != nil {
		t.Fatal(err)
	}

	if idx.Mode != "interleaved" || idx.Stride != 2 {
		t.Fatalf("wrong mode/stride: %+v", idx)
	}
	if idx.Width != 512 || idx.NLevels != 1 {
		t.Fatalf("geometry not carried over: %+v", idx)
	}

	blob, err := os.ReadFile(out + ".tzb")
	if err != nil {
		t.Fatal(err)
	}
	// Tile 0 of every plane, then tile 1 of every plane.
	if string(blob) != "AAAA"+"cc"+"BB"+"dddd" {
		t.Fatalf("wrong interleaving: %q", blob)
	}

	want := []int64{0, 4, 6, 8, 12}
	if len(idx.Offsets) != len(want) {
		t.Fatalf("expected %d offsets, got %d", len(want), len(idx.Offsets))
	}
	for i, off := range want {
		if idx.Offsets[i] != off {
			t.Fatalf("offset %d: expected %d, got %d", i, off, idx.Offsets[i])
		}
	}

	reread, err := tarzoom.ReadIndex(out + ".tzi")
	if err != nil {
		t.Fatal(err)
	}
	wb, _ := json.Marshal(idx)
	rb, _ := json.Marshal(reread)
	if string(wb) != string(rb) {
		t.Fatalf("index did not round-trip:\nwrote %s\nread  %s", wb, rb)
	}
}

func TestInterleaveCountMismatch(t *testing.T) {
	dir := t.TempDir()
	p0 := filepath.Join(dir, "plane_0")
	p1 := filepath.Join(dir, "plane_1")
	writePlane(t, p0, &tarzoom.Index{Offsets: []int64{0, 4, 6}}, "AAAABB")
	writePlane(t, p1, &tarzoom.Index{Offsets: []int64{0, 2}}, "cc")

	out := filepath.Join(dir, "planes")
	if _, err := tarzoom.Interleave([]string{p0 + ".tzi", p1 + ".tzi"}, out); err == nil {
		t.Fatal("expected an error for mismatched tile counts")
	}
}

func TestPackThenInterleave(t *testing.T) {
	dir := t.TempDir()
	var tzis []string
	for p, content := range []string{"plane-zero", "plane-one!"} {
		basename := buildPyramid(t, dir, fmt.Sprintf("plane_%d", p), 256, 256, map[string]map[string]string{
			"0": {"0_0.jpg": content},
		})
		if _, err := tarzoom.Pack(basename, 256, 0, "jpg"); err != nil {
			t.Fatal(err)
		}
		tzis = append(tzis, basename+".tzi")
	}

	out := filepath.Join(dir, "planes")
	idx, err := tarzoom.Interleave(tzis, out)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Stride != 2 || idx.Width != 256 {
		t.Fatalf("unexpected combined index: %+v", idx)
	}

	blob, err := os.ReadFile(out + ".tzb")
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != "plane-zero"+"plane-one!" {
		t.Fatalf("wrong combined blob: %q", blob)
	}
}
