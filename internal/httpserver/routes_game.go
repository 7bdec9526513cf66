// internal/httpserver/routes_game.go
//
// HTTP routes for a solo game session:
//   - POST /game/new     → fresh session, target fetched in the background
//   - POST /game/restart → discard the game, fetch a new target
//   - GET  /game/state   → snapshot for rendering
//   - POST /game/input   → one key (letter, Backspace, Enter)
//   - POST /game/guess   → a whole word
//
// Game rejections are reported with a non-2xx status but still carry the
// outcome and snapshot so the client can show the banner.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solo-server/internal/game"
	"github.com/robalobadob/wordle/apps/solo-server/internal/store"
)

func (s *Server) mountGame() {
	s.r.Post("/game/new", s.handleNewGame)
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Post("/game/restart", s.handleRestart)
		r.Get("/game/state", s.handleState)
		r.Post("/game/input", s.handleInput)
		r.Post("/game/guess", s.handleGuess)
	})
}

// newGameRes is returned by /game/new.
type newGameRes struct {
	GameID string        `json:"gameId"`
	Token  string        `json:"token"`
	State  game.Snapshot `json:"state"`
}

// handleNewGame creates a session and starts fetching its target word.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess := store.NewSession(genID(), game.New(s.deps.Game, s.deps.Validator))
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.tokens.Sign(sess.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	s.loadTarget(sess)

	log.Info().Str("gameId", sess.ID).Msg("game created")
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID, Token: tok, State: sess.Machine.Snapshot()})
}

// handleRestart discards the current game; late results for it are ignored.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	gen := sess.Machine.Restart()
	s.loadTarget(sess)
	log.Info().Str("gameId", sess.ID).Uint64("gen", gen).Msg("game restarted")
	_ = json.NewEncoder(w).Encode(map[string]any{"state": sess.Machine.Snapshot()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{"state": sessionFrom(r).Machine.Snapshot()})
}

type inputReq struct {
	Key string `json:"key"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess := sessionFrom(r)
	out, err := sess.Machine.HandleInput(r.Context(), req.Key)
	s.writeOutcome(w, sess, out, err)
}

type guessReq struct {
	Guess string `json:"guess"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess := sessionFrom(r)
	out, err := sess.Machine.SubmitGuess(r.Context(), req.Guess)
	s.writeOutcome(w, sess, out, err)
}

// actionRes is the body for /game/input and /game/guess.
type actionRes struct {
	game.Outcome
	Error string        `json:"error,omitempty"`
	State game.Snapshot `json:"state"`
}

func (s *Server) writeOutcome(w http.ResponseWriter, sess *store.Session, out game.Outcome, err error) {
	res := actionRes{Outcome: out, State: sess.Machine.Snapshot()}
	status := statusFor(err)
	if err != nil {
		res.Error = string(out.Signal)
		ev := log.Debug()
		if errors.Is(err, game.ErrValidationUnavailable) {
			ev = log.Warn()
		}
		ev.Err(err).Str("gameId", sess.ID).Str("signal", string(out.Signal)).Msg("guess rejected")
	} else if out.Signal == game.SignalWin || out.Signal == game.SignalLoss {
		log.Info().Str("gameId", sess.ID).Str("signal", string(out.Signal)).Int("attempt", out.Attempt).Msg("game finished")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

// statusFor maps machine rejections onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, game.ErrInvalidLength), errors.Is(err, game.ErrInvalidWord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrValidationUnavailable), errors.Is(err, game.ErrProviderFailure):
		return http.StatusServiceUnavailable
	}
	return http.StatusConflict
}

// loadTarget fetches the target for the session's current generation in the
// background. A fetch that finishes after a restart is dropped by the machine.
func (s *Server) loadTarget(sess *store.Session) {
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.deps.LoadTimeout)
		defer cancel()

		err := sess.Machine.Load(ctx, s.deps.Provider)
		switch {
		case err == nil:
			log.Debug().Str("gameId", sess.ID).Msg("target loaded")
		case errors.Is(err, game.ErrStale):
			log.Debug().Str("gameId", sess.ID).Msg("discarded target for a restarted game")
		default:
			log.Error().Err(err).Str("gameId", sess.ID).Msg("target word unavailable")
		}
	}()
}
