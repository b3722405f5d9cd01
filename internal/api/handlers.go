package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pable/go-tennis-metrics/internal/aggregator"
	"github.com/pable/go-tennis-metrics/internal/api/response"
	"github.com/pable/go-tennis-metrics/internal/model"
	"github.com/pable/go-tennis-metrics/internal/service"
	"github.com/pable/go-tennis-metrics/pkg/logger"
)

const dateLayout = "2006-01-02"

// parseFilter reads surface, dateFrom, dateTo and side from the query string.
func parseFilter(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	f := model.Filter{Surface: q.Get("surface")}
	var err error
	if v := q.Get("dateFrom"); v != "" {
		if f.DateFrom, err = time.Parse(dateLayout, v); err != nil {
			return f, fmt.Errorf("dateFrom: want YYYY-MM-DD, got %q", v)
		}
	}
	if v := q.Get("dateTo"); v != "" {
		if f.DateTo, err = time.Parse(dateLayout, v); err != nil {
			return f, fmt.Errorf("dateTo: want YYYY-MM-DD, got %q", v)
		}
	}
	side, ok := model.ParseSide(q.Get("side"))
	if !ok {
		return f, fmt.Errorf("side: want Deuce or Ad, got %q", q.Get("side"))
	}
	f.Side = side
	return f, nil
}

// minN reads the minN query parameter, falling back to def.
func minN(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("minN")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("minN: want a positive integer, got %q", v)
	}
	return n, nil
}

func descriptive(r *http.Request) bool {
	return r.URL.Query().Get("model") == "descriptive"
}

// fail maps service errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound):
		response.NotFound(w, err)
	case errors.Is(err, service.ErrNoDistributions):
		response.ServiceUnavailable(w, err)
	default:
		s.log.Error(r.Context(), "request failed", logger.String("path", r.URL.Path), logger.Error(err))
		response.InternalError(w, err)
	}
}

// noMinN marks handlers that take no minN parameter.
const noMinN = -1

// withQuery validates the filters and, unless def is noMinN, the minN
// parameter (falling back to def) before loading the player's query. Bad
// input is rejected without touching the store.
func (s *Server) withQuery(w http.ResponseWriter, r *http.Request, def int, fn func(q *aggregator.Query, minN int) any) {
	f, err := parseFilter(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	n := def
	if def != noMinN {
		if n, err = minN(r, def); err != nil {
			response.BadRequest(w, err)
			return
		}
	}
	q, err := s.analyzer.Query(r.Context(), chi.URLParam(r, "name"), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	response.Success(w, fn(q, n))
}

func (s *Server) players(w http.ResponseWriter, r *http.Request) {
	names, err := s.analyzer.Players(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("all") == "true")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	response.Success(w, names)
}

func (s *Server) coverage(w http.ResponseWriter, r *http.Request) {
	cov, err := s.analyzer.Coverage(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	response.Success(w, cov)
}

func (s *Server) patterns(w http.ResponseWriter, r *http.Request) {
	p := s.analyzer.Params()
	if descriptive(r) {
		s.withQuery(w, r, p.DescriptiveMinN, func(q *aggregator.Query, n int) any { return q.PatternsDescriptive(n) })
		return
	}
	s.withQuery(w, r, p.MinN, func(q *aggregator.Query, n int) any { return q.Patterns(n) })
}

func (s *Server) directionPatterns(w http.ResponseWriter, r *http.Request) {
	p := s.analyzer.Params()
	if descriptive(r) {
		s.withQuery(w, r, p.ComboMinN, func(q *aggregator.Query, n int) any { return q.DirectionsDescriptive(n) })
		return
	}
	s.withQuery(w, r, p.MinN, func(q *aggregator.Query, n int) any { return q.Directions(n) })
}

func (s *Server) servePlusOne(w http.ResponseWriter, r *http.Request) {
	p := s.analyzer.Params()
	if descriptive(r) {
		s.withQuery(w, r, p.ComboMinN, func(q *aggregator.Query, n int) any { return q.ServePlusOneDescriptive(n) })
		return
	}
	s.withQuery(w, r, p.MinN, func(q *aggregator.Query, n int) any { return q.ServePlusOne(n) })
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.withQuery(w, r, noMinN, func(q *aggregator.Query, _ int) any { return q.Serve() })
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	s.withQuery(w, r, s.analyzer.Params().DescriptiveMinN, func(q *aggregator.Query, n int) any { return q.Compare(n) })
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	s.withQuery(w, r, noMinN, func(q *aggregator.Query, _ int) any { return q.Insights() })
}

func (s *Server) patternInference(w http.ResponseWriter, r *http.Request) {
	p := s.analyzer.SequenceParams()
	s.withQuery(w, r, p.MinN, func(q *aggregator.Query, n int) any {
		p.MinN = n
		return service.SequencesFor(q, p)
	})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	s.withQuery(w, r, noMinN, func(q *aggregator.Query, _ int) any { return q.Report() })
}

func (s *Server) radar(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	prof, err := s.analyzer.Radar(r.Context(), chi.URLParam(r, "name"), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	response.Success(w, prof)
}

func (s *Server) card(w http.ResponseWriter, r *http.Request) {
	c, err := s.analyzer.Card(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	response.Success(w, c)
}
