package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed faces.txt
var FS embed.FS

// DefaultWinVideo is the celebration clip played when the winner is found.
const DefaultWinVideo = "/assets/laugh_from_frame003_alpha_2p7_to_8.webm"

// ReadList reads one reference per line, skipping blanks and # comments.
func ReadList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// FacesList returns the embedded default face pool.
func FacesList() ([]string, error) {
	f, err := FS.Open("faces.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadList(f)
}
