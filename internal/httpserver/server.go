// internal/httpserver/server.go
//
// HTTP server wiring for the solo game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints: POST /game/new, then (session token required)
//     POST /game/restart, GET /game/state, POST /game/input, POST /game/guess.
//   - Background target-word acquisition for new and restarted games.
//
// Notes:
//   - The session token is a short-lived HS256 JWT naming the game ID; it is
//     accepted as a Bearer header or the wordle_session cookie.
//   - CORS is origin-aware and credentials-enabled so the cookie works cross-site.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/solo-server/internal/game"
	"github.com/robalobadob/wordle/apps/solo-server/internal/store"
	"github.com/robalobadob/wordle/apps/solo-server/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Provider      game.Provider
	Validator     game.Validator // nil accepts every well-formed guess
	Game          game.Config
	Words         *words.List // optional, for /debug/words
	SessionSecret string
	SessionTTL    time.Duration
	LoadTimeout   time.Duration // upper bound for one target fetch
	ClientOrigin  string
}

// Server bundles router, session store and game collaborators.
type Server struct {
	r      *chi.Mux
	store  store.Store
	deps   Deps
	tokens *tokens

	loads sync.WaitGroup // background target fetches
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, deps Deps) (*Server, error) {
	if deps.Provider == nil {
		return nil, errors.New("httpserver: a word provider is required")
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = 2 * time.Hour
	}
	if deps.LoadTimeout <= 0 {
		deps.LoadTimeout = 10 * time.Second
	}
	tk, err := newTokens(deps.SessionSecret, deps.SessionTTL)
	if err != nil {
		return nil, err
	}
	s := &Server{r: chi.NewRouter(), store: st, deps: deps, tokens: tk}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(deps.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"wordle-solo","endpoints":["/health","POST /game/new","POST /game/restart","GET /game/state","POST /game/input","POST /game/guess"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		out := map[string]int{"sessions": s.store.Len()}
		if deps.Words != nil {
			out["answers"], out["allowed"] = deps.Words.Stats()
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	s.mountGame()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s, nil
}

// Start begins serving HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := hs.Shutdown(shutdownCtx)
	s.Wait()
	return err
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Wait blocks until every background target fetch has finished.
func (s *Server) Wait() { s.loads.Wait() }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", sessionTokenHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- small util --------------------------------

func writeError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// secureOrigin reports whether the client is served over TLS, which decides
// the cookie's Secure and SameSite attributes.
func secureOrigin(origin string) bool {
	return strings.HasPrefix(strings.ToLower(origin), "https://")
}
