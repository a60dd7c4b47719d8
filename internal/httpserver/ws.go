// apps/go-server/internal/httpserver/ws.go
//
// GET /round/ws: live stream for one session.
//   - Server → client frames: "state" (every engine change), "cue" (click,
//     celebrate), "tap" (outcome of a tap frame), "error".
//   - Client → server frames: "tap" {index}, "reset", "video_ended" {generation}.
//
// Cue and reply frames go through a bounded queue drained by one writer
// goroutine; a full queue drops the frame instead of blocking the engine.
// State frames go through a one-slot buffer that keeps only the newest
// snapshot, so a slow client skips intermediate boards but never the last one.

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/net/websocket"
	"golang.org/x/text/language"

	"github.com/robalobadob/ojisan/apps/go-server/internal/cue"
	"github.com/robalobadob/ojisan/apps/go-server/internal/game"
	"github.com/robalobadob/ojisan/apps/go-server/internal/i18n"
	"github.com/robalobadob/ojisan/apps/go-server/internal/store"
)

const wsQueueSize = 32

var (
	errWSClosed = errors.New("websocket closed")
	errWSSlow   = errors.New("websocket queue full")
)

// wsFrame is a server → client message.
type wsFrame struct {
	Type    string       `json:"type"`
	State   *stateRes    `json:"state,omitempty"`
	Cue     *cue.Cue     `json:"cue,omitempty"`
	Outcome game.Outcome `json:"outcome,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// wsCommand is a client → server message.
type wsCommand struct {
	Type       string `json:"type"`
	Index      *int   `json:"index,omitempty"`
	Generation uint64 `json:"generation,omitempty"`
}

// handleWS upgrades the request and streams the session until the client leaves.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	tag := i18n.ResolveTag(r)
	l := hlog.FromRequest(r).With().Str("session", sess.ID).Logger()

	ws := websocket.Server{
		Handshake: s.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			s.serveWS(conn, sess, tag, l)
		},
	}
	ws.ServeHTTP(w, r)
}

// checkOrigin accepts the configured client origin or same-host pages.
func (s *Server) checkOrigin(cfg *websocket.Config, r *http.Request) error {
	origin, err := websocket.Origin(cfg, r)
	if err != nil {
		return err
	}
	if origin == nil {
		return errors.New("missing origin")
	}
	if origin.Host == r.Host || sameOrigin(origin, s.cfg.ClientOrigin) {
		cfg.Origin = origin
		return nil
	}
	return fmt.Errorf("origin %s not allowed", origin)
}

func sameOrigin(u *url.URL, allowed string) bool {
	a, err := url.Parse(allowed)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, a.Scheme) && strings.EqualFold(u.Host, a.Host)
}

func (s *Server) serveWS(conn *websocket.Conn, sess *store.Session, tag language.Tag, l zerolog.Logger) {
	defer func() {
		_ = conn.Close()
	}()

	out := make(chan wsFrame, wsQueueSize)
	latest := newStateSlot()
	done := make(chan struct{})
	defer close(done)

	send := func(f wsFrame) error {
		select {
		case <-done:
			return errWSClosed
		default:
		}
		select {
		case out <- f:
			return nil
		case <-done:
			return errWSClosed
		default:
			return errWSSlow
		}
	}

	unsubscribe := sess.Engine.Subscribe(func(snap game.Snapshot) {
		latest.put(s.stateOf(snap, tag))
	})
	defer unsubscribe()
	detach := sess.Cues.Attach(func(c cue.Cue) error {
		return send(wsFrame{Type: "cue", Cue: &c})
	})
	defer detach()

	go writeFrames(conn, out, latest, done, l)

	latest.put(s.stateOf(sess.Engine.Snapshot(), tag))
	l.Debug().Msg("websocket attached")

	for {
		var cmd wsCommand
		if err := websocket.JSON.Receive(conn, &cmd); err != nil {
			l.Debug().Err(err).Msg("websocket detached")
			return
		}
		if err := s.store.Touch(context.Background(), sess.ID); err != nil {
			l.Debug().Err(err).Msg("touch session")
		}
		if f, ok := s.applyCommand(sess, cmd); ok {
			if err := send(f); err != nil {
				l.Debug().Err(err).Str("frame", f.Type).Msg("frame dropped")
			}
		}
	}
}

// stateSlot holds the newest state not yet written. Older states are
// replaced rather than queued, so the client always ends on the latest board.
type stateSlot struct {
	mu    sync.Mutex
	st    *stateRes
	ready chan struct{}
}

func newStateSlot() *stateSlot {
	return &stateSlot{ready: make(chan struct{}, 1)}
}

// put stores st unless a newer state is already pending.
func (q *stateSlot) put(st stateRes) {
	q.mu.Lock()
	if q.st == nil || st.Version >= q.st.Version {
		q.st = &st
	}
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// take removes and returns the pending state.
func (q *stateSlot) take() (stateRes, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.st == nil {
		return stateRes{}, false
	}
	st := *q.st
	q.st = nil
	return st, true
}

// writeFrames drains the frame queue and the state slot onto conn until done
// closes or a write fails.
func writeFrames(conn *websocket.Conn, out <-chan wsFrame, latest *stateSlot, done <-chan struct{}, l zerolog.Logger) {
	var (
		lastVersion uint64
		wrote       bool
	)
	write := func(f wsFrame) bool {
		if err := websocket.JSON.Send(conn, f); err != nil {
			l.Debug().Err(err).Msg("websocket write failed")
			_ = conn.Close()
			return false
		}
		return true
	}
	for {
		select {
		case <-done:
			return
		case f := <-out:
			if !write(f) {
				return
			}
		case <-latest.ready:
			st, ok := latest.take()
			if !ok || (wrote && st.Version < lastVersion) {
				continue
			}
			lastVersion, wrote = st.Version, true
			if !write(wsFrame{Type: "state", State: &st}) {
				return
			}
		}
	}
}

// applyCommand runs one client command; state changes reach the client via
// the engine subscription, so only acknowledgements and errors are returned.
func (s *Server) applyCommand(sess *store.Session, cmd wsCommand) (wsFrame, bool) {
	switch cmd.Type {
	case "tap":
		if cmd.Index == nil {
			return wsFrame{Type: "error", Error: "missing_index"}, true
		}
		out, _, err := sess.Engine.Tap(*cmd.Index)
		if errors.Is(err, game.ErrTileOutOfRange) {
			return wsFrame{Type: "error", Error: "tile_out_of_range"}, true
		}
		return wsFrame{Type: "tap", Outcome: out}, true
	case "reset":
		sess.Engine.NewRound()
		return wsFrame{}, false
	case "video_ended":
		sess.Engine.VideoEnded(cmd.Generation)
		return wsFrame{}, false
	default:
		return wsFrame{Type: "error", Error: "unknown_command"}, true
	}
}
