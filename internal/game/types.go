// apps/go-server/internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Phase: lifecycle of a single round (playing → won).
//   - Round: immutable value describing one board (winner, removed tiles, faces).
//   - Outcome: what a tap did.
//   - Snapshot: read-only view handed to the render surface.

package game

import (
	"errors"
	"sort"
)

// Phase is the coarse state of the current round.
type Phase string

const (
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
)

// Outcome reports the effect of a single tap.
type Outcome string

const (
	// OutcomeIgnored means a guard filtered the tap (won round, removed or fading tile).
	OutcomeIgnored Outcome = "ignored"
	// OutcomeFading means the tile started fading and its removal is scheduled.
	OutcomeFading Outcome = "fading"
	// OutcomeWon means the winning tile was tapped.
	OutcomeWon Outcome = "won"
)

// CaptionKind selects which status caption the render surface shows.
type CaptionKind string

const (
	CaptionFresh     CaptionKind = "fresh"     // nothing removed yet
	CaptionRemaining CaptionKind = "remaining" // some tiles removed, still playing
	CaptionWon       CaptionKind = "won"
)

// ErrTileOutOfRange is returned by Tap for an index outside [0, total).
var ErrTileOutOfRange = errors.New("tile index out of range")

// Round is one board. It is never mutated after construction: removals
// produce a new Round with a copied removed set.
type Round struct {
	Generation uint64   // Strictly increasing per engine; identifies the round.
	Winner     int      // Index of the laughing tile.
	Faces      []string // Cosmetic face reference per tile.

	removed map[int]struct{}
}

// IsRemoved reports whether tile i has been permanently hidden.
func (r Round) IsRemoved(i int) bool {
	_, ok := r.removed[i]
	return ok
}

// RemovedCount returns |removed|.
func (r Round) RemovedCount() int { return len(r.removed) }

// Removed returns the removed indices in ascending order.
func (r Round) Removed() []int { return sortedKeys(r.removed) }

// withRemoved returns a copy of r with i added to the removed set.
func (r Round) withRemoved(i int) Round {
	next := make(map[int]struct{}, len(r.removed)+1)
	for k := range r.removed {
		next[k] = struct{}{}
	}
	next[i] = struct{}{}
	r.removed = next
	return r
}

// Snapshot is the render surface's view of an engine. It never carries the
// winner index.
type Snapshot struct {
	Generation   uint64      `json:"generation"`
	Version      uint64      `json:"version"` // bumps on every state change
	Phase        Phase       `json:"phase"`
	Total        int         `json:"total"`
	Removed      []int       `json:"removed"`
	Fading       []int       `json:"fading"`
	VisibleCount int         `json:"visibleCount"`
	Faces        []string    `json:"faces"`
	Caption      CaptionKind `json:"caption"`
}

// captionFor maps phase and visible count to a caption kind.
func captionFor(p Phase, visible, total int) CaptionKind {
	switch {
	case p == PhaseWon:
		return CaptionWon
	case visible == total:
		return CaptionFresh
	default:
		return CaptionRemaining
	}
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
