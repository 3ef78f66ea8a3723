package http

import (
	"net/http"

	"pocketwise/internal/core"
	applog "pocketwise/internal/log"
)

func (s *Server) handleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userID(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.onboarding.Questions())
}

type onboardingRequest struct {
	Age     int         `json:"age"`
	Goals   []string    `json:"goals"`
	Answers map[int]int `json:"answers"`
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req onboardingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.onboarding.Complete(r.Context(), userID, req.Age, req.Goals, req.Answers)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)

	s.logger.InfoContext(r.Context(), "Onboarding completed",
		applog.FieldUserID, userID,
		"knowledge_score", result.KnowledgeScore,
		"level", string(result.Level))

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	profile, err := s.onboarding.Profile(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type budgetRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.onboarding.SetMonthlyBudget(r.Context(), userID, req.Amount); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	writeJSON(w, http.StatusOK, map[string]float64{"monthly_budget": core.RoundCents(req.Amount)})
}
