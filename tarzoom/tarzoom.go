// Package tarzoom packs DeepZoom tile pyramids into single-file
// archives. A pyramid <name>.dzi + <name>_files/<level>/<x>_<y>.jpg
// becomes <name>.tzb (every tile concatenated) plus <name>.tzi (a JSON
// index of byte offsets), so the whole pyramid ships as two files and
// fetching a tile is one ranged read. Interleave merges the per-plane
// archives of a relightable image so one read covers every plane of a
// tile.
package tarzoom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Index is the .tzi sidecar: pyramid geometry plus the byte offset of
// every chunk in the companion .tzb blob. Offsets starts at 0 and ends
// at the blob size; chunk i spans Offsets[i] up to Offsets[i+1]. Mode
// and Stride are set only on interleaved archives.
type Index struct {
	Tilesize int     `json:"tilesize"`
	Overlap  int     `json:"overlap"`
	Format   string  `json:"format"`
	Offsets  []int64 `json:"offsets"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	NLevels  int     `json:"nlevels"`
	Mode     string  `json:"mode,omitempty"`
	Stride   int     `json:"stride,omitempty"`
}

var (
	widthRe  = regexp.MustCompile(`Width="(\d+)"`)
	heightRe = regexp.MustCompile(`Height="(\d+)"`)
	tileRe   = regexp.MustCompile(`^(\d+)_(\d+)\.jpe?g$`)
)

// ReadIndex parses the .tzi file at path.
func ReadIndex(path string) (*Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &idx, nil
}

// WriteIndex writes idx to path as compact JSON.
func WriteIndex(path string, idx *Index) error {
	b, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Pack reads the pyramid at basename (.dzi descriptor plus _files tile
// directory) and writes basename.tzb and basename.tzi. Tiles are laid
// out level by level, ascending, row-major within a level (x fastest).
// tilesize, overlap and format are recorded in the index as given; the
// packer never inspects the tile payloads.
func Pack(basename string, tilesize, overlap int, format string) (*Index, error) {
	width, height, err := dziSize(basename + ".dzi")
	if err != nil {
		return nil, err
	}

	levels, err := levelDirs(basename + "_files")
	if err != nil {
		return nil, err
	}

	var tiles []string
	for _, level := range levels {
		lt, err := levelTiles(level)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, lt...)
	}

	idx := &Index{
		Tilesize: tilesize,
		Overlap:  overlap,
		Format:   format,
		Offsets:  []int64{0},
		Width:    width,
		Height:   height,
		NLevels:  len(levels),
	}
	if err := writeBlob(basename+".tzb", tiles, idx); err != nil {
		return nil, err
	}
	return idx, WriteIndex(basename+".tzi", idx)
}

// dziSize pulls the Width and Height attributes out of a .dzi
// descriptor.
func dziSize(path string) (int, int, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	wm := widthRe.FindSubmatch(contents)
	hm := heightRe.FindSubmatch(contents)
	if wm == nil || hm == nil {
		return 0, 0, fmt.Errorf("%s: no Width/Height attributes", path)
	}
	width, _ := strconv.Atoi(string(wm[1]))
	height, _ := strconv.Atoi(string(hm[1]))
	return width, height, nil
}

// levelDirs lists the per-level subdirectories of the _files directory
// in pyramid order. Level names are numbers, so "10" sorts after "9".
func levelDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, errA := strconv.Atoi(names[i])
		b, errB := strconv.Atoi(names[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return names[i] < names[j]
	})
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// levelTiles returns one level's tile files in row-major order. File
// names carry the grid position as <x>_<y>; anything else is skipped.
// The grid must be complete: a missing cell is an error.
func levelTiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type pos struct{ x, y int }
	tiles := map[pos]string{}
	maxx, maxy := 0, 0
	for _, e := range entries {
		m := tileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		if x > maxx {
			maxx = x
		}
		if y > maxy {
			maxy = y
		}
		tiles[pos{x, y}] = filepath.Join(dir, e.Name())
	}
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%s: no tiles", dir)
	}

	ordered := make([]string, 0, (maxx+1)*(maxy+1))
	for y := 0; y <= maxy; y++ {
		for x := 0; x <= maxx; x++ {
			path, ok := tiles[pos{x, y}]
			if !ok {
				return nil, fmt.Errorf("%s: missing tile %d_%d", dir, x, y)
			}
			ordered = append(ordered, path)
		}
	}
	return ordered, nil
}

// writeBlob concatenates the tile files into path, appending each
// tile's end offset to idx.Offsets.
func writeBlob(path string, tiles []string, idx *Index) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	var offset int64
	for _, tile := range tiles {
		in, err := os.Open(tile)
		if err != nil {
			out.Close()
			return err
		}
		n, err := io.Copy(out, in)
		in.Close()
		if err != nil {
			out.Close()
			return err
		}
		offset += n
		idx.Offsets = append(idx.Offsets, offset)
	}
	return out.Close()
}

// Interleave merges per-plane archives into one at output: chunk i of
// the output holds tile i of every plane back to back, in argument
// order, so a single ranged read fetches all planes of a tile. The
// combined index carries mode "interleaved", the plane count as stride,
// and the remaining geometry from the last plane listed. All planes
// must hold the same number of tiles.
func Interleave(planes []string, output string) (*Index, error) {
	if len(planes) == 0 {
		return nil, errors.New("no planes given")
	}

	var big *Index
	var sizes [][]int64
	blobs := make([]*os.File, 0, len(planes))
	defer func() {
		for _, f := range blobs {
			f.Close()
		}
	}()

	ntiles := -1
	for _, plane := range planes {
		if !strings.HasSuffix(plane, ".tzi") {
			return nil, fmt.Errorf("%s: not a .tzi index", plane)
		}
		idx, err := ReadIndex(plane)
		if err != nil {
			return nil, err
		}
		if len(idx.Offsets) == 0 {
			return nil, fmt.Errorf("%s: empty offset table", plane)
		}
		if ntiles == -1 {
			ntiles = len(idx.Offsets) - 1
		} else if len(idx.Offsets)-1 != ntiles {
			return nil, fmt.Errorf("%s: %d tiles, want %d", plane, len(idx.Offsets)-1, ntiles)
		}

		size := make([]int64, 0, ntiles)
		for i := 0; i+1 < len(idx.Offsets); i++ {
			size = append(size, idx.Offsets[i+1]-idx.Offsets[i])
		}
		sizes = append(sizes, size)

		blob, err := os.Open(strings.TrimSuffix(plane, ".tzi") + ".tzb")
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
		big = idx
	}

	big.Offsets = []int64{}
	big.Mode = "interleaved"
	big.Stride = len(planes)

	out, err := os.Create(output + ".tzb")
	if err != nil {
		return nil, err
	}

	var offset int64
	for i := 0; i < ntiles; i++ {
		for p, blob := range blobs {
			big.Offsets = append(big.Offsets, offset)
			n, err := io.CopyN(out, blob, sizes[p][i])
			if err != nil {
				out.Close()
				return nil, err
			}
			offset += n
		}
	}
	big.Offsets = append(big.Offsets, offset)

	if err := out.Close(); err != nil {
		return nil, err
	}
	return big, WriteIndex(output+".tzi", big)
}
