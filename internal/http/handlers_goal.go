package http

import (
	"net/http"

	"pocketwise/internal/core"
	applog "pocketwise/internal/log"
	"pocketwise/internal/services"
)

type createGoalRequest struct {
	Title         string  `json:"title"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Category      string  `json:"category"`
	Deadline      string  `json:"deadline"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req createGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal, err := s.goals.Create(r.Context(), userID, core.SavingsGoal{
		Title:         sanitizeInput(req.Title),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Category:      sanitizeInput(req.Category),
		Deadline:      req.Deadline,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)

	s.logger.InfoContext(r.Context(), "Goal created",
		applog.FieldUserID, userID,
		applog.FieldGoalID, goal.ID,
		applog.FieldGoalTitle, goal.Title)

	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	goals, err := s.goals.List(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if goals == nil {
		goals = []core.SavingsGoal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var update services.GoalUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	goal, err := s.goals.Update(r.Context(), userID, r.PathValue("id"), update)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	if err := s.goals.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

type depositRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleGoalDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal, err := s.goals.Deposit(r.Context(), userID, r.PathValue("id"), req.Amount)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	writeJSON(w, http.StatusOK, goal)
}
