// Package i18n renders the board's status caption in the player's language.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/robalobadob/ojisan/apps/go-server/internal/game"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

// German comes first: it is the default and the matcher's fallback.
var supportedTags = []language.Tag{
	language.German,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

const (
	keyFresh     = "caption.fresh"
	keyRemaining = "caption.remaining"
	keyWon       = "caption.won"
)

func init() {
	de := language.German
	message.SetString(de, keyFresh, "Es gibt nur einen lachenden Onkel!")
	message.SetString(de, keyRemaining, "Noch %d Onkel")
	message.SetString(de, keyWon, "Lachen Onkel erscheint!")

	en := language.English
	message.SetString(en, keyFresh, "There is only one laughing uncle!")
	message.SetString(en, keyRemaining, "%d uncles left")
	message.SetString(en, keyWon, "The laughing uncle appears!")
}

// Default returns the default language tag.
func Default() language.Tag { return language.German }

// Caption returns the status caption for a snapshot.
func Caption(tag language.Tag, s game.Snapshot) string {
	p := message.NewPrinter(tag)
	switch s.Caption {
	case game.CaptionWon:
		return p.Sprintf(keyWon)
	case game.CaptionFresh:
		return p.Sprintf(keyFresh)
	default:
		return p.Sprintf(keyRemaining, s.VisibleCount)
	}
}

// ResolveTag picks the caption language from ?lang=, then Accept-Language.
func ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return Default()
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return match(tag)
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return match(tags...)
		}
	}
	return Default()
}

func match(tags ...language.Tag) language.Tag {
	_, idx, conf := tagMatcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return supportedTags[idx]
}
