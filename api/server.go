// Package api exposes the watchlist and the name matcher over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/net/netutil"

	"github.com/pedrohavay/namescreen/internal/logging"
	"github.com/pedrohavay/namescreen/screen"
	"github.com/pedrohavay/namescreen/watchlist"
)

// BasePath is the prefix of every watchlist route.
const BasePath = "/api/v1/names"

// Store is the watchlist the handlers read from and write to.
type Store interface {
	Add(name string) (watchlist.Entry, error)
	Get(id int64) (watchlist.Entry, error)
	Update(id int64, name string) (watchlist.Entry, error)
	Delete(id int64) error
	All() []watchlist.Entry
	Candidates() []screen.Candidate
}

// Options tune the HTTP server.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodySize  int
	MaxConns     int  // 0 = unlimited
	Trace        bool // log every scored candidate
}

// Server serves the watchlist API.
type Server struct {
	store   Store
	log     logging.Logger
	opts    Options
	matcher screen.Matcher
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer wires handlers to a store.
func NewServer(store Store, log logging.Logger, opts Options) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{store: store, log: log, opts: opts}
	if opts.Trace {
		s.matcher.Trace = func(input string, c screen.Candidate, mv screen.MetricVector, matched bool) {
			log.Debug("Candidate scored",
				"input", input,
				"candidate_id", c.ID,
				"candidate", c.Canonical,
				"jaro", mv.Jaro,
				"jaccard", mv.Jaccard,
				"phonetic_matches", mv.PhoneticMatches,
				"levenshtein_norm", mv.LevenshteinNorm,
				"matched", matched,
			)
		}
	}
	return s
}

// Handler is the fasthttp entry point.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	ctx.Response.Header.Set("Content-Type", "application/json")

	path := strings.TrimSuffix(string(ctx.Path()), "/")
	switch {
	case path == "/health":
		s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case path == BasePath:
		s.routeCollection(ctx)
	case path == BasePath+"/verify":
		if !ctx.IsPost() {
			s.methodNotAllowed(ctx)
			break
		}
		s.handleVerify(ctx)
	case strings.HasPrefix(path, BasePath+"/"):
		s.routeItem(ctx, strings.TrimPrefix(path, BasePath+"/"))
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}

	s.log.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"duration", time.Since(start),
	)
}

func (s *Server) routeCollection(ctx *fasthttp.RequestCtx) {
	switch {
	case ctx.IsGet():
		s.writeJSON(ctx, fasthttp.StatusOK, s.store.All())
	case ctx.IsPost():
		e, err := s.store.Add(string(ctx.PostBody()))
		if err != nil {
			s.writeStoreError(ctx, err)
			return
		}
		s.log.Info("Sanctioned name stored", "key", watchlist.Key(e.ID), "preprocessed_name", e.PreprocessedName)
		s.writeJSON(ctx, fasthttp.StatusCreated, e)
	default:
		s.methodNotAllowed(ctx)
	}
}

func (s *Server) routeItem(ctx *fasthttp.RequestCtx, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || !screen.IsValidID(id) {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid id")
		return
	}
	switch {
	case ctx.IsGet():
		e, err := s.store.Get(id)
		if err != nil {
			s.writeStoreError(ctx, err)
			return
		}
		s.writeJSON(ctx, fasthttp.StatusOK, e)
	case ctx.IsPut():
		e, err := s.store.Update(id, string(ctx.PostBody()))
		if err != nil {
			s.writeStoreError(ctx, err)
			return
		}
		s.log.Info("Sanctioned name updated", "key", watchlist.Key(id), "preprocessed_name", e.PreprocessedName)
		s.writeJSON(ctx, fasthttp.StatusOK, e)
	case ctx.IsDelete():
		if err := s.store.Delete(id); err != nil {
			s.writeStoreError(ctx, err)
			return
		}
		s.log.Info("Sanctioned name deleted", "key", watchlist.Key(id))
		s.writeJSON(ctx, fasthttp.StatusOK, map[string]bool{"deleted": true})
	default:
		s.methodNotAllowed(ctx)
	}
}

func (s *Server) handleVerify(ctx *fasthttp.RequestCtx) {
	name := string(ctx.PostBody())
	if !screen.IsValidName(name) {
		s.writeJSON(ctx, fasthttp.StatusBadRequest, screen.NoMatch(screen.MsgInvalidName))
		return
	}
	candidates := s.store.Candidates()
	res := s.matcher.Verify(name, candidates)
	if res.IsSanctioned {
		s.log.Warn("Sanctioned name matched",
			"input", name,
			"entry_id", res.EntryID,
			"sanctioned_name", res.SanctionedName,
			"rules", strings.Join(screen.ExplainDecision(*res.MetricVector), ","),
		)
	} else {
		s.log.Info("Name cleared", "input", name, "candidates", len(candidates))
	}
	s.writeJSON(ctx, fasthttp.StatusOK, res)
}

func (s *Server) writeStoreError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, watchlist.ErrInvalidID), errors.Is(err, watchlist.ErrInvalidName):
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
	case errors.Is(err, watchlist.ErrNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, err.Error())
	default:
		s.log.Error("Store operation failed", "error", err)
		s.writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
	}
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	s.writeJSON(ctx, status, ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		s.log.Error("Error encoding response", "error", err)
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.opts.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConns)
	}
	srv := &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "namescreen",
		ReadTimeout:        s.opts.ReadTimeout,
		WriteTimeout:       s.opts.WriteTimeout,
		MaxRequestBodySize: s.opts.MaxBodySize,
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.log.Info("Shutting down server...")
			if err := srv.Shutdown(); err != nil {
				s.log.Error("Error during server shutdown", "error", err)
			}
		case <-done:
		}
	}()
	defer close(done)

	s.log.Info("Server listening", "address", ln.Addr().String())
	return srv.Serve(ln)
}
