package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/wordle-sleuth/firstguess/internal/explain"
	"github.com/wordle-sleuth/firstguess/internal/lib/util"
	"github.com/wordle-sleuth/firstguess/internal/report"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/solver"
)

const maxBody = 1 << 20

// Server answers solve requests over HTTP. One solver is shared by all
// requests.
type Server struct {
	r         *chi.Mux
	solver    *solver.Solver
	explainer *explain.Explainer
	timeout   time.Duration
	log       logrus.FieldLogger
}

type Option func(s *Server) error

// WithExplainer adds conflict explanations to Impossible outcomes.
func WithExplainer(e *explain.Explainer) Option {
	return func(s *Server) error {
		s.explainer = e
		return nil
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Server) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		s.timeout = d
		return nil
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) error {
		s.log = log
		return nil
	}
}

var defaults = []Option{
	func(s *Server) error {
		if s.timeout == 0 {
			s.timeout = 10 * time.Second
		}
		return nil
	},
	func(s *Server) error {
		if s.log == nil {
			log := logrus.New()
			log.SetOutput(io.Discard)
			s.log = log
		}
		return nil
	},
}

func New(so *solver.Solver, options ...Option) (*Server, error) {
	if so == nil {
		return nil, errors.New("server requires a solver")
	}
	s := Server{r: chi.NewRouter(), solver: so}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger(s.log))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(s.timeout))

	s.r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":    true,
			"words": so.Dictionary().Len(),
		})
	})
	s.r.Post("/solve", s.handleSolve)
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no route for %s %s", r.Method, r.URL.Path))
	})

	return &s, nil
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type solveObservation struct {
	Grid   string `json:"grid"`
	Day    *int   `json:"day,omitempty"`
	Answer string `json:"answer,omitempty"`
}

type solveRequest struct {
	Observations []solveObservation `json:"observations"`
	Excludes     []int              `json:"excludes,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := util.JSONUnmarshal(http.MaxBytesReader(w, r.Body, maxBody), &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	observations, err := s.observations(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rep, err := report.Analyze(r.Context(), s.solver, s.explainer, observations)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"request_id":   chimw.GetReqID(r.Context()),
		"observations": len(observations),
		"outcome":      rep.Outcome.Kind,
	}).Debug("solved")

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := rep.Write(w, report.JSON); err != nil {
		s.log.WithError(err).Warn("failed to write response")
	}
}

// observations resolves answers by day and drops the excluded days. An
// observation with an explicit answer and no day is never excluded; it
// gets the negative day -(i+1) so leaving one day out never drops
// several of them.
func (s *Server) observations(req solveRequest) ([]firstguess.Observation, error) {
	excluded := make(map[int]struct{}, len(req.Excludes))
	for _, d := range req.Excludes {
		excluded[d] = struct{}{}
	}

	out := make([]firstguess.Observation, 0, len(req.Observations))
	for i, o := range req.Observations {
		guess, ok := firstguess.ParseGuess(o.Grid)
		if !ok {
			return nil, fmt.Errorf("observation %d: invalid grid %q", i, o.Grid)
		}
		day := -(i + 1)
		if o.Day != nil {
			day = *o.Day
			if _, ok := excluded[day]; ok {
				continue
			}
		}
		answer := o.Answer
		if answer == "" {
			if o.Day == nil {
				return nil, fmt.Errorf("observation %d: either day or answer is required", i)
			}
			a, err := s.solver.Dictionary().Answer(day)
			if err != nil {
				return nil, fmt.Errorf("observation %d: %w", i, err)
			}
			answer = a
		}
		obs, err := firstguess.NewObservation(guess, answer, day)
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.WithFields(logrus.Fields{
					"request_id": chimw.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start),
				}).Info("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := util.JSONMarshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
