package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nutrisight/internal/core"
	"nutrisight/internal/dashboard"
	applog "nutrisight/internal/log"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build snapshot", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load budget state")
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Summary core.BudgetSummary   `json:"summary"`
		Entries []core.SpendingEntry `json:"entries"`
	}{snap.Summary, snap.Entries})
}

func (s *Server) handleMeals(w http.ResponseWriter, r *http.Request) {
	credential := r.Header.Get("Authorization")

	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build snapshot", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load budget state")
		return
	}

	if !snap.PlanReady {
		// First call waits for the plan so the response carries candidates.
		s.svc.RefreshPlan(r.Context(), credential)
		snap, err = s.svc.Snapshot(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to build snapshot", applog.FieldError, err)
			writeError(w, r, http.StatusInternalServerError, "failed to load budget state")
			return
		}
	} else {
		go s.svc.RefreshPlan(context.Background(), credential)
	}
	writeJSON(w, r, http.StatusOK, struct {
		PlanReady  bool                  `json:"plan_ready"`
		Candidates []dashboard.Candidate `json:"candidates"`
		AddedToday []string              `json:"added_today"`
	}{snap.PlanReady, snap.Candidates, snap.AddedToday})
}

type logEntryRequest struct {
	Dish     string  `json:"dish"`
	Category string  `json:"category"`
	Price    string  `json:"price"`
	Calories float64 `json:"calories"`
	Diet     string  `json:"diet"`
}

func (s *Server) handleLogEntry(w http.ResponseWriter, r *http.Request) {
	var req logEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var pricePaise int64
	if req.Price != "" {
		paise, err := core.ParseDecimalToPaise(req.Price)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "invalid price: "+err.Error())
			return
		}
		pricePaise = paise
	}

	candidate := core.MealCandidate{
		Dish:       sanitizeInput(req.Dish),
		Category:   core.MealSlot(sanitizeInput(req.Category)),
		Calories:   req.Calories,
		Diet:       sanitizeInput(req.Diet),
		PricePaise: pricePaise,
	}

	entry, notice, err := s.svc.LogMeal(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, core.ErrEmptyDish) {
			writeError(w, r, http.StatusBadRequest, "dish is required")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to log entry", applog.FieldError, err, applog.FieldDish, candidate.Dish)
		writeError(w, r, http.StatusInternalServerError, "failed to log entry")
		return
	}

	writeJSON(w, r, http.StatusCreated, struct {
		Entry  core.SpendingEntry `json:"entry"`
		Notice string             `json:"notice,omitempty"`
	}{entry, notice})
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.RemoveEntry(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to remove entry", applog.FieldError, err, applog.FieldEntryID, id)
		writeError(w, r, http.StatusInternalServerError, "failed to remove entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearAll(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to clear entries", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "failed to clear entries")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setWalletRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleSetWallet(w http.ResponseWriter, r *http.Request) {
	var req setWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	paise, err := core.ParseDecimalToPaise(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
		return
	}

	if err := s.svc.SetWallet(r.Context(), core.Money{Paise: paise}); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			writeError(w, r, http.StatusUnprocessableEntity, "wallet must be positive")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to set wallet", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "failed to set wallet")
		return
	}

	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build snapshot", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "failed to load budget state")
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Summary core.BudgetSummary `json:"summary"`
	}{snap.Summary})
}
