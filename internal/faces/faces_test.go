package faces

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/robalobadob/ojisan/apps/go-server/assets"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	c, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Stats() != 8 {
		t.Fatalf("pool size = %d, want 8", c.Stats())
	}
	if c.Faces[0] != "/assets/ojisan_frames/frame_01.png" {
		t.Fatalf("first face = %q", c.Faces[0])
	}
	if c.WinVideo != assets.DefaultWinVideo {
		t.Fatalf("win video = %q, want %q", c.WinVideo, assets.DefaultWinVideo)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faces.txt")
	body := "# custom pool\n\n/a.png\n  /b.png  \n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path, "/win.mp4")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := []string{"/a.png", "/b.png"}; !reflect.DeepEqual(c.Faces, want) {
		t.Fatalf("faces = %v, want %v", c.Faces, want)
	}
	if c.WinVideo != "/win.mp4" {
		t.Fatalf("win video = %q, want /win.mp4", c.WinVideo)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faces.txt")
	if err := os.WriteFile(path, []byte("# nothing\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, ""); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("err = %v, want ErrEmptyPool", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// seqPicker replays fixed values.
type seqPicker []int

func (p *seqPicker) IntN(n int) int {
	v := (*p)[0]
	*p = (*p)[1:]
	return v % n
}

func TestDraw(t *testing.T) {
	pool := []string{"a.png", "b.png", "c.png"}

	tests := []struct {
		name string
		pool []string
		vals seqPicker
		n    int
		want []string
	}{
		{name: "with replacement", pool: pool, vals: seqPicker{2, 2, 0, 1}, n: 4, want: []string{"c.png", "c.png", "a.png", "b.png"}},
		{name: "empty pool", pool: nil, vals: seqPicker{}, n: 3, want: []string{"", "", ""}},
		{name: "zero faces", pool: pool, vals: seqPicker{}, n: 0, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := tt.vals
			got := Draw(tt.pool, &vals, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Draw = %v, want %v", got, tt.want)
			}
			if len(vals) != 0 {
				t.Fatalf("%d source values left unconsumed", len(vals))
			}
		})
	}
}
