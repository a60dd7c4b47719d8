// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "daily board" mode.
//   - POST /daily/new → start a session whose random source is seeded from
//     today's date, so every player gets the same first board.
//
// Nothing is recorded: the daily board only fixes the seed.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/ojisan/apps/go-server/internal/daily"
	"github.com/robalobadob/ojisan/apps/go-server/internal/game"
	"github.com/robalobadob/ojisan/apps/go-server/internal/store"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
	})
}

// handleDailyNew starts a session on today's deterministic board.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	date := daily.DateKey(now)
	src := game.NewSource(daily.Seed(now, s.cfg.DailySalt))

	sess, tok, exp, err := s.newSession(r.Context(), store.ModeDaily, src, date)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("date", date).Msg("new daily session")
		writeError(w, http.StatusInternalServerError, "session_failed")
		return
	}
	s.respondNew(w, r, sess, tok, exp)
}
