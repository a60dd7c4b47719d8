// apps/go-server/internal/faces/faces.go
//
// Asset catalog for the board: the cosmetic face pool and the win video.
//
// Loading behavior (Load):
//   1. If a faces file path is given, read one image reference per line
//      (blank lines and # comments skipped).
//   2. Otherwise fall back to the embedded default pool in assets/faces.txt.
//   3. An empty pool is an error; the win video falls back to the embedded default.
//
// Draw picks a round's faces from a pool. The engine only needs opaque
// references; image bytes are served elsewhere.

package faces

import (
	"errors"
	"fmt"
	"os"

	"github.com/robalobadob/ojisan/apps/go-server/assets"
)

// ErrEmptyPool is returned when no face references could be loaded.
var ErrEmptyPool = errors.New("faces: pool is empty")

// Catalog is the immutable set of assets a round draws from.
type Catalog struct {
	Faces    []string `json:"faces"`
	WinVideo string   `json:"winVideo"`
}

// Load builds a Catalog from facesFile (or the embedded pool when empty)
// and winVideo (or the embedded default when empty).
func Load(facesFile, winVideo string) (*Catalog, error) {
	var (
		pool []string
		err  error
	)
	if facesFile != "" {
		pool, err = readFile(facesFile)
	} else {
		pool, err = assets.FacesList()
	}
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if winVideo == "" {
		winVideo = assets.DefaultWinVideo
	}
	return &Catalog{Faces: pool, WinVideo: winVideo}, nil
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open faces file: %w", err)
	}
	defer f.Close()
	pool, err := assets.ReadList(f)
	if err != nil {
		return nil, fmt.Errorf("read faces file %s: %w", path, err)
	}
	return pool, nil
}

// Stats returns the pool size.
func (c *Catalog) Stats() int { return len(c.Faces) }

// Picker is the random source Draw consumes; game.Source satisfies it.
type Picker interface {
	IntN(n int) int
}

// Draw returns n faces picked from pool with replacement, consuming one
// value from src per face. An empty pool yields n empty references.
func Draw(pool []string, src Picker, n int) []string {
	out := make([]string, n)
	if len(pool) == 0 {
		return out
	}
	for i := range out {
		out[i] = pool[src.IntN(len(pool))]
	}
	return out
}
