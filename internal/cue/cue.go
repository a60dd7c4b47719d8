// Package cue carries feedback cues (tap click, win celebration) from the
// round engine to whatever render surface is listening. Delivery is best
// effort: a missing or failing listener never affects game state.
package cue

import (
	"errors"
	"sync"
)

// Kind names a cue.
type Kind string

const (
	KindClick     Kind = "click"
	KindCelebrate Kind = "celebrate"
)

// ErrNoListener is returned by a Broadcaster with nobody attached.
var ErrNoListener = errors.New("cue: no listener")

// Tone describes a short synthesized sound the client renders locally.
type Tone struct {
	Wave     string  `json:"wave"`
	StartHz  float64 `json:"startHz"`
	EndHz    float64 `json:"endHz"`
	RampMs   int     `json:"rampMs"`   // exponential frequency ramp
	Floor    float64 `json:"floor"`    // gain at start and end of the envelope
	Peak     float64 `json:"peak"`     // gain at the end of the attack
	AttackMs int     `json:"attackMs"` // time to reach Peak
	DecayMs  int     `json:"decayMs"`  // time to fall back to Floor
	StopMs   int     `json:"stopMs"`   // oscillator stop
}

// ClickTone is the tap feedback sound.
var ClickTone = Tone{
	Wave:     "triangle",
	StartHz:  440,
	EndHz:    240,
	RampMs:   120,
	Floor:    0.0001,
	Peak:     0.22,
	AttackMs: 15,
	DecayMs:  140,
	StopMs:   145,
}

// Cue is a single feedback event.
type Cue struct {
	Kind       Kind   `json:"kind"`
	Generation uint64 `json:"generation"`
	Tone       *Tone  `json:"tone,omitempty"`
	Video      string `json:"video,omitempty"`
}

// Click builds the click cue for a round generation.
func Click(gen uint64) Cue {
	t := ClickTone
	return Cue{Kind: KindClick, Generation: gen, Tone: &t}
}

// Celebrate builds the win cue pointing at the win video.
func Celebrate(gen uint64, video string) Cue {
	return Cue{Kind: KindCelebrate, Generation: gen, Video: video}
}

// Sink receives cues.
type Sink interface {
	Send(c Cue) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(c Cue) error

func (f SinkFunc) Send(c Cue) error { return f(c) }

// Discard drops every cue.
var Discard Sink = SinkFunc(func(Cue) error { return nil })

// Broadcaster fans cues out to attached listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]func(Cue) error
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]func(Cue) error)}
}

// Attach registers fn and returns a function that detaches it.
func (b *Broadcaster) Attach(fn func(Cue) error) (detach func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Send delivers c to every listener. It returns ErrNoListener when nobody is
// attached, otherwise the joined listener errors.
func (b *Broadcaster) Send(c Cue) error {
	b.mu.RLock()
	fns := make([]func(Cue) error, 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	if len(fns) == 0 {
		return ErrNoListener
	}
	var errs []error
	for _, fn := range fns {
		if err := fn(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
