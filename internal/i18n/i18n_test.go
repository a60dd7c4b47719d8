package i18n

import (
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/robalobadob/ojisan/apps/go-server/internal/game"
)

func TestCaption(t *testing.T) {
	tests := []struct {
		name string
		tag  language.Tag
		snap game.Snapshot
		want string
	}{
		{"de fresh", language.German, game.Snapshot{Caption: game.CaptionFresh, VisibleCount: 16}, "Es gibt nur einen lachenden Onkel!"},
		{"de remaining", language.German, game.Snapshot{Caption: game.CaptionRemaining, VisibleCount: 12}, "Noch 12 Onkel"},
		{"de won", language.German, game.Snapshot{Caption: game.CaptionWon}, "Lachen Onkel erscheint!"},
		{"en fresh", language.English, game.Snapshot{Caption: game.CaptionFresh}, "There is only one laughing uncle!"},
		{"en remaining", language.English, game.Snapshot{Caption: game.CaptionRemaining, VisibleCount: 3}, "3 uncles left"},
		{"en won", language.English, game.Snapshot{Caption: game.CaptionWon}, "The laughing uncle appears!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Caption(tt.tag, tt.snap); got != tt.want {
				t.Fatalf("caption = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTag(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   language.Tag
	}{
		{"default", "/round", "", language.German},
		{"query en", "/round?lang=en", "", language.English},
		{"query wins over header", "/round?lang=de", "en-US", language.German},
		{"accept en-US", "/round", "en-US,en;q=0.9", language.English},
		{"unsupported falls back", "/round", "ja", language.German},
		{"garbage query", "/round?lang=%%%", "en", language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/round", nil)
			r.URL.RawQuery = ""
			if i := strings.IndexByte(tt.target, '?'); i >= 0 {
				r.URL.RawQuery = tt.target[i+1:]
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			if got := ResolveTag(r); got != tt.want {
				t.Fatalf("tag = %v, want %v", got, tt.want)
			}
		})
	}
}
