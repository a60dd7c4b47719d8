// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the round engine.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, access logs, CORS, timeouts).
//   - Public endpoints: "/", "/health", "/assets/catalog", "/debug/sessions".
//   - Session creation: POST /round/new (random board), POST /daily/new (daily board).
//   - Session endpoints (token required): GET /round, POST /round/tap,
//     POST /round/reset, POST /round/video-ended, GET /round/ws.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so the session cookie works).
//   - The websocket route sits outside the timeout middleware; it is long-lived.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/robalobadob/ojisan/apps/go-server/internal/config"
	"github.com/robalobadob/ojisan/apps/go-server/internal/cue"
	"github.com/robalobadob/ojisan/apps/go-server/internal/faces"
	"github.com/robalobadob/ojisan/apps/go-server/internal/game"
	"github.com/robalobadob/ojisan/apps/go-server/internal/i18n"
	"github.com/robalobadob/ojisan/apps/go-server/internal/store"
)

// Server bundles router, session store, asset catalog and config.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	catalog *faces.Catalog
	now     func() time.Time

	// scheduler overrides the engines' timer scheduler (tests only).
	scheduler game.Scheduler
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, cat *faces.Catalog) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, store: st, catalog: cat, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)         // add X-Request-ID
	s.r.Use(chimw.RealIP)            // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)         // recover from panics
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(s.cors)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"ojisan-go","endpoints":["/health","POST /round/new","POST /daily/new","GET /round","POST /round/tap","POST /round/reset","POST /round/video-ended","GET /round/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/assets/catalog", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(s.catalog)
		})
		r.Get("/debug/sessions", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"sessions": s.store.Len(), "faces": s.catalog.Stats()})
		})

		// Session creation (no token needed)
		r.Post("/round/new", s.handleNewRound)
		s.mountDaily(r)

		// Round endpoints (token required)
		r.With(s.withSession).Get("/round", s.handleState)
		r.With(s.withSession).Post("/round/tap", s.handleTap)
		r.With(s.withSession).Post("/round/reset", s.handleReset)
		r.With(s.withSession).Post("/round/video-ended", s.handleVideoEnded)
	})

	// Live stream (token required, no timeout)
	s.r.With(s.withSession).Get("/round/ws", s.handleWS)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	ev := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("request")
}

// writeError writes {"error": code} with the given status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// ------------------------------ ROUND --------------------------------------

// stateRes is the render surface's view of a session.
type stateRes struct {
	game.Snapshot
	CaptionText string `json:"captionText"`
	Lang        string `json:"lang"`
	WinVideo    string `json:"winVideo,omitempty"` // set while won
}

func (s *Server) stateOf(snap game.Snapshot, tag language.Tag) stateRes {
	res := stateRes{Snapshot: snap, CaptionText: i18n.Caption(tag, snap), Lang: tag.String()}
	if snap.Phase == game.PhaseWon {
		res.WinVideo = s.catalog.WinVideo
	}
	return res
}

// newRes is returned by /round/new and /daily/new.
type newRes struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Mode      string    `json:"mode"`
	Date      string    `json:"date,omitempty"`
	State     stateRes  `json:"state"`
}

// newSession builds an engine for a fresh session, stores it and issues a token.
func (s *Server) newSession(ctx context.Context, mode store.Mode, src game.Source, date string) (*store.Session, string, time.Time, error) {
	uid, err := uuid.NewV7()
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("session id: %w", err)
	}
	id := uid.String()
	logger := log.With().Str("session", id).Str("mode", string(mode)).Logger()
	cues := cue.NewBroadcaster()
	eng := game.New(game.Options{
		Total:     s.cfg.TileCount,
		FadeDelay: s.cfg.FadeDelay,
		FacePool:  s.catalog.Faces,
		WinVideo:  s.catalog.WinVideo,
		Source:    src,
		Scheduler: s.scheduler,
		Cues:      cues,
		Logger:    &logger,
	})
	sess := &store.Session{ID: id, Mode: mode, Date: date, Engine: eng, Cues: cues, CreatedAt: s.now()}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("save session: %w", err)
	}
	tok, exp, err := s.signSession(id, mode)
	if err != nil {
		_ = s.store.Delete(ctx, id)
		return nil, "", time.Time{}, err
	}
	logger.Info().Msg("session started")
	return sess, tok, exp, nil
}

// respondNew writes the cookie and the newRes payload for a fresh session.
func (s *Server) respondNew(w http.ResponseWriter, r *http.Request, sess *store.Session, tok string, exp time.Time) {
	s.setSessionCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(newRes{
		SessionID: sess.ID,
		Token:     tok,
		ExpiresAt: exp,
		Mode:      string(sess.Mode),
		Date:      sess.Date,
		State:     s.stateOf(sess.Engine.Snapshot(), i18n.ResolveTag(r)),
	})
}

// handleNewRound starts a session with a randomly seeded board.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sess, tok, exp, err := s.newSession(r.Context(), store.ModeRandom, nil, "")
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("new session")
		writeError(w, http.StatusInternalServerError, "session_failed")
		return
	}
	s.respondNew(w, r, sess, tok, exp)
}

// handleState returns the current board.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	_ = json.NewEncoder(w).Encode(s.stateOf(sess.Engine.Snapshot(), i18n.ResolveTag(r)))
}

// tapReq/Res payloads for POST /round/tap.
type tapReq struct {
	Index *int `json:"index"`
}
type tapRes struct {
	Outcome game.Outcome `json:"outcome"`
	State   stateRes     `json:"state"`
}

// handleTap applies a tap to the session's engine.
func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	var req tapReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess := sessionFrom(r.Context())
	out, snap, err := sess.Engine.Tap(*req.Index)
	if errors.Is(err, game.ErrTileOutOfRange) {
		writeError(w, http.StatusBadRequest, "tile_out_of_range")
		return
	}
	_ = json.NewEncoder(w).Encode(tapRes{Outcome: out, State: s.stateOf(snap, i18n.ResolveTag(r))})
}

// handleReset starts a new round in the same session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	snap := sess.Engine.NewRound()
	_ = json.NewEncoder(w).Encode(s.stateOf(snap, i18n.ResolveTag(r)))
}

// videoEndedReq/Res payloads for POST /round/video-ended.
type videoEndedReq struct {
	Generation uint64 `json:"generation"`
}
type videoEndedRes struct {
	Reset bool     `json:"reset"`
	State stateRes `json:"state"`
}

// handleVideoEnded resets the round once the win video for its generation ends.
func (s *Server) handleVideoEnded(w http.ResponseWriter, r *http.Request) {
	var req videoEndedReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess := sessionFrom(r.Context())
	snap, reset := sess.Engine.VideoEnded(req.Generation)
	_ = json.NewEncoder(w).Encode(videoEndedRes{Reset: reset, State: s.stateOf(snap, i18n.ResolveTag(r))})
}
