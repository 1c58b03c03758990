package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rustam-sa/nba-01/internal/history"
	"github.com/rustam-sa/nba-01/internal/models"
	"github.com/rustam-sa/nba-01/internal/odds"
	"github.com/rustam-sa/nba-01/internal/parlay"
	"github.com/rustam-sa/nba-01/internal/pipeline"
)

// maxRequestBytes bounds the evaluate request body
const maxRequestBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ParlayView is one parlay rendered for clients
type ParlayView struct {
	ParlayID            int      `json:"parlay_id"`
	Rank                int      `json:"rank"`
	Legs                []string `json:"legs"`
	CombinedProbability float64  `json:"combined_probability"`
	HouseProbability    float64  `json:"house_probability"`
	CombinedOdds        float64  `json:"combined_odds"`
	AmericanOdds        int      `json:"american_odds"`
	CombinedEV          float64  `json:"combined_ev"`
	SumEV               float64  `json:"sum_ev"`
	ExactEV             float64  `json:"exact_ev"`
	ToWin               string   `json:"to_win"`
	StakeToWin          string   `json:"stake_to_win"`
	Diversity           int      `json:"diversity"`
}

// EvaluateRequest scores skeletons against samples supplied inline.
// Samples map player name to statistic to observations, newest first.
type EvaluateRequest struct {
	Skeletons      []models.PropSkeleton           `json:"skeletons"`
	Samples        map[string]map[string][]float64 `json:"samples"`
	MinLegs        int                             `json:"min_legs,omitempty"`
	MaxLegs        int                             `json:"max_legs,omitempty"`
	EVMode         string                          `json:"ev_mode,omitempty"`
	OnScoringError string                          `json:"on_scoring_error,omitempty"`
}

// EvaluateResponse carries the run produced for an evaluate request
type EvaluateResponse struct {
	Run     *models.Run          `json:"run"`
	Scored  []models.Proposition `json:"scored"`
	Parlays []ParlayView         `json:"parlays"`
}

func parlayViews(run *models.Run) []ParlayView {
	if run == nil || run.Portfolio == nil {
		return []ParlayView{}
	}

	views := make([]ParlayView, 0, len(run.Portfolio.Parlays))
	for _, p := range run.Portfolio.Parlays {
		legs := make([]string, 0, len(p.Legs))
		for _, idx := range p.Legs {
			legs = append(legs, run.Propositions[idx].Label())
		}
		american, _ := odds.DecimalToAmerican(p.CombinedOdds)
		views = append(views, ParlayView{
			ParlayID:            p.ParlayID,
			Rank:                p.Rank,
			Legs:                legs,
			CombinedProbability: p.CombinedProbability,
			HouseProbability:    p.CombinedHouseProbability,
			CombinedOdds:        p.CombinedOdds,
			AmericanOdds:        american,
			CombinedEV:          p.CombinedEV,
			SumEV:               p.SumEV,
			ExactEV:             p.ExactEV,
			ToWin:               p.ToWin.StringFixed(2),
			StakeToWin:          p.StakeToWin.StringFixed(2),
			Diversity:           p.Diversity,
		})
	}
	return views
}

func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) (*models.Run, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	run, err := s.store.Latest(ctx)
	if errors.Is(err, models.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "no run recorded yet", nil)
		return nil, false
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load latest run", err)
		return nil, false
	}
	return run, true
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.latestRun(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleLatestParlays(w http.ResponseWriter, r *http.Request) {
	run, ok := s.latestRun(w, r)
	if !ok {
		return
	}
	views := parlayViews(run)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  run.ID,
		"parlays": views,
		"count":   len(views),
	})
}

// validate rejects request options the engine would otherwise reinterpret
func (req *EvaluateRequest) validate() error {
	if len(req.Skeletons) == 0 {
		return errors.New("at least one skeleton is required")
	}
	switch parlay.EVMode(req.EVMode) {
	case "", parlay.EVModeSum, parlay.EVModeExact:
	default:
		return fmt.Errorf("ev_mode must be %q or %q, got %q", parlay.EVModeSum, parlay.EVModeExact, req.EVMode)
	}
	switch pipeline.ScoringPolicy(req.OnScoringError) {
	case "", pipeline.PolicyHalt, pipeline.PolicyExclude:
	default:
		return fmt.Errorf("on_scoring_error must be %q or %q, got %q", pipeline.PolicyHalt, pipeline.PolicyExclude, req.OnScoringError)
	}
	if req.MinLegs < 0 || req.MaxLegs < 0 {
		return errors.New("min_legs and max_legs must not be negative")
	}
	return nil
}

func (s *Server) requestConfig(req *EvaluateRequest) pipeline.Config {
	cfg := s.pipeline
	if req.MinLegs > 0 {
		cfg.Generator.MinLegs = req.MinLegs
		cfg.Selector.MinLegs = req.MinLegs
	}
	if req.MaxLegs > 0 {
		cfg.Generator.MaxLegs = req.MaxLegs
		cfg.Selector.MaxLegs = req.MaxLegs
	}
	if req.EVMode != "" {
		cfg.Generator.EVMode = parlay.EVMode(req.EVMode)
	}
	if req.OnScoringError != "" {
		cfg.OnScoringError = pipeline.ScoringPolicy(req.OnScoringError)
	}
	return cfg
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	source := history.NewMemorySource()
	for player, stats := range req.Samples {
		for stat, samples := range stats {
			source.Put(player, stat, samples)
		}
	}

	engine := pipeline.NewEngine(source, s.requestConfig(&req), s.logger)
	rc := engine.NewRunContext(engine.Config())
	run, err := engine.Run(r.Context(), rc, req.Skeletons)
	if err != nil {
		s.respondError(w, statusFor(err), "evaluation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, EvaluateResponse{
		Run:     run,
		Scored:  run.Scored,
		Parlays: parlayViews(run),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrEmptyPortfolio),
		errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrDuplicateProposition),
		errors.Is(err, models.ErrTooManyPropositions),
		errors.Is(err, models.ErrInvalidLegRange),
		errors.Is(err, models.ErrInvalidOdds),
		errors.Is(err, models.ErrUnknownBetSide):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	if err != nil {
		resp.Message = message + ": " + err.Error()
		s.logger.WithError(err).WithField("status", status).Warn(message)
	}
	respondJSON(w, status, resp)
}
