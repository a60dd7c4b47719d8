// apps/go-server/internal/game/engine.go
//
// Round engine for a single player session.
// Responsibilities:
//   - Draw rounds (winner + cosmetic faces) from one seedable Source.
//   - Apply taps: ignore guarded taps, win on the winner, fade anything else.
//   - Complete removals after the fade delay, dropping callbacks whose round
//     generation is no longer current.
//   - Reset on demand and when the win video ends.
//   - Publish snapshots to subscribers and cues to the cue sink.
//
// Notes:
//   - One mutex serializes every transition (HTTP handlers, websocket readers
//     and timer goroutines all land here).
//   - Subscribers and cue sinks are called outside the lock.
package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/ojisan/apps/go-server/internal/cue"
	"github.com/robalobadob/ojisan/apps/go-server/internal/faces"
)

const (
	DefaultTotal     = 16
	DefaultFadeDelay = 130 * time.Millisecond
)

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	Total     int           // Number of tiles (default 16).
	FadeDelay time.Duration // Delay between fade start and removal (default 130ms).
	FacePool  []string      // Cosmetic face references; faces stay empty if nil.
	WinVideo  string        // Reference carried by the celebrate cue.
	Source    Source        // Random source (default time-seeded).
	Scheduler Scheduler     // Deferred effects (default TimerScheduler).
	Cues      cue.Sink      // Feedback cues (default cue.Discard).
	Logger    *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Total <= 0 {
		o.Total = DefaultTotal
	}
	if o.FadeDelay <= 0 {
		o.FadeDelay = DefaultFadeDelay
	}
	if o.Source == nil {
		o.Source = NewSource(0)
	}
	if o.Scheduler == nil {
		o.Scheduler = TimerScheduler{}
	}
	if o.Cues == nil {
		o.Cues = cue.Discard
	}
	if o.Logger == nil {
		o.Logger = &log.Logger
	}
	return o
}

// Engine owns the state of one player's board.
type Engine struct {
	mu      sync.Mutex
	opts    Options
	log     zerolog.Logger
	phase   Phase
	round   Round
	fading  map[int]struct{}
	gen     uint64
	version uint64

	subs    map[int]func(Snapshot)
	nextSub int
}

// New constructs an engine with a fresh round in the playing phase.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts: opts,
		log:  opts.Logger.With().Str("component", "round").Logger(),
		subs: make(map[int]func(Snapshot)),
	}
	e.resetLocked()
	return e
}

// Tap applies a tap on tile i and returns what it did plus the resulting
// snapshot. The only error is ErrTileOutOfRange; every other rejected tap
// is OutcomeIgnored.
func (e *Engine) Tap(i int) (Outcome, Snapshot, error) {
	e.mu.Lock()
	if i < 0 || i >= e.opts.Total {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return OutcomeIgnored, snap, fmt.Errorf("%w: %d not in [0,%d)", ErrTileOutOfRange, i, e.opts.Total)
	}
	if e.phase != PhasePlaying || e.round.IsRemoved(i) || e.isFadingLocked(i) {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return OutcomeIgnored, snap, nil
	}

	gen := e.round.Generation
	if i == e.round.Winner {
		e.phase = PhaseWon
		snap, subs := e.changedLocked()
		e.mu.Unlock()

		e.log.Info().Uint64("generation", gen).Int("tile", i).Msg("round won")
		e.emit(cue.Click(gen))
		go e.emit(cue.Celebrate(gen, e.opts.WinVideo))
		notify(subs, snap)
		return OutcomeWon, snap, nil
	}

	e.fading[i] = struct{}{}
	snap, subs := e.changedLocked()
	e.mu.Unlock()

	e.opts.Scheduler.AfterFunc(e.opts.FadeDelay, func() { e.completeRemoval(gen, i) })
	e.emit(cue.Click(gen))
	notify(subs, snap)
	return OutcomeFading, snap, nil
}

// completeRemoval moves tile i from fading to removed if the round it was
// scheduled against is still current and still playing.
func (e *Engine) completeRemoval(gen uint64, i int) {
	e.mu.Lock()
	if gen != e.round.Generation || e.phase != PhasePlaying || e.round.IsRemoved(i) || i == e.round.Winner {
		cur := e.round.Generation
		e.mu.Unlock()
		e.log.Debug().Uint64("scheduled", gen).Uint64("current", cur).Int("tile", i).Msg("stale removal dropped")
		return
	}
	e.round = e.round.withRemoved(i)
	delete(e.fading, i)
	snap, subs := e.changedLocked()
	e.mu.Unlock()

	notify(subs, snap)
}

// NewRound discards the current round and starts a fresh one. It always
// succeeds.
func (e *Engine) NewRound() Snapshot {
	e.mu.Lock()
	e.resetLocked()
	snap, subs := e.changedLocked()
	e.mu.Unlock()

	e.log.Debug().Uint64("generation", snap.Generation).Msg("new round")
	notify(subs, snap)
	return snap
}

// VideoEnded resets the round when the win video for generation gen has
// finished. Reports false (and changes nothing) when gen is not the current
// won round.
func (e *Engine) VideoEnded(gen uint64) (Snapshot, bool) {
	e.mu.Lock()
	if e.phase != PhaseWon || gen != e.round.Generation {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, false
	}
	e.resetLocked()
	snap, subs := e.changedLocked()
	e.mu.Unlock()

	e.log.Debug().Uint64("generation", snap.Generation).Msg("win video ended")
	notify(subs, snap)
	return snap, true
}

// Snapshot returns the current view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Current returns the current round value. Rounds are immutable, so the
// result stays valid after later transitions.
func (e *Engine) Current() Round {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// VisibleCount returns total minus removed tiles.
func (e *Engine) VisibleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts.Total - e.round.RemovedCount()
}

// Total returns the number of tiles.
func (e *Engine) Total() int { return e.opts.Total }

// WinVideo returns the configured win video reference.
func (e *Engine) WinVideo() string { return e.opts.WinVideo }

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that caused the change and must not block for long.
func (e *Engine) Subscribe(fn func(Snapshot)) (cancel func()) {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// ----------------------------- internals -----------------------------------

// resetLocked installs a fresh round. Caller holds e.mu.
func (e *Engine) resetLocked() {
	e.gen++
	total := e.opts.Total
	winner := e.opts.Source.IntN(total)
	e.round = Round{
		Generation: e.gen,
		Winner:     winner,
		Faces:      faces.Draw(e.opts.FacePool, e.opts.Source, total),
		removed:    map[int]struct{}{},
	}
	e.phase = PhasePlaying
	e.fading = map[int]struct{}{}
}

func (e *Engine) isFadingLocked(i int) bool {
	_, ok := e.fading[i]
	return ok
}

// changedLocked bumps the version and captures what to notify.
func (e *Engine) changedLocked() (Snapshot, []func(Snapshot)) {
	e.version++
	subs := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	return e.snapshotLocked(), subs
}

func (e *Engine) snapshotLocked() Snapshot {
	visible := e.opts.Total - e.round.RemovedCount()
	fs := make([]string, len(e.round.Faces))
	copy(fs, e.round.Faces)
	return Snapshot{
		Generation:   e.round.Generation,
		Version:      e.version,
		Phase:        e.phase,
		Total:        e.opts.Total,
		Removed:      e.round.Removed(),
		Fading:       sortedKeys(e.fading),
		VisibleCount: visible,
		Faces:        fs,
		Caption:      captionFor(e.phase, visible, e.opts.Total),
	}
}

// emit delivers a cue; failures are logged and swallowed.
func (e *Engine) emit(c cue.Cue) {
	if err := e.opts.Cues.Send(c); err != nil {
		e.log.Debug().Err(err).Str("cue", string(c.Kind)).Msg("cue not delivered")
	}
}

func notify(subs []func(Snapshot), s Snapshot) {
	for _, fn := range subs {
		fn(s)
	}
}
