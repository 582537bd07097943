package handlers

import (
	"net/http"
	"strings"
	"time"

	"daytrip-itinerary-service/internal/api/dto"
	"daytrip-itinerary-service/internal/domain"
	"daytrip-itinerary-service/internal/ports"
)

// PlanHandler exposes CRUD endpoints for day plans.
type PlanHandler struct {
	Repo ports.PlanRepository
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "title is required")
		return
	}
	planDate, err := time.Parse("2006-01-02", req.PlanDate)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "plan_date must be formatted YYYY-MM-DD")
		return
	}
	mode := domain.TransportMode(req.DefaultTransport)
	if req.DefaultTransport == "" {
		mode = domain.TransportDriving
	}
	if !mode.Valid() {
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "invalid default_transport")
		return
	}

	plan, err := h.Repo.CreatePlan(r.Context(), domain.DayPlan{
		PlanDate:         planDate,
		Title:            title,
		Status:           domain.PlanStatusDraft,
		DefaultTransport: mode,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toPlanResponse(plan))
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Repo.ListPlans(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListPlansResponse{Plans: make([]dto.PlanSummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		res.Plans = append(res.Plans, dto.PlanSummaryResponse{
			ID:        s.ID,
			PlanDate:  s.PlanDate,
			Title:     s.Title,
			Status:    string(s.Status),
			StopCount: s.StopCount,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	plan, err := h.Repo.GetPlan(r.Context(), planID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// Update applies a partial update. Status changes must be forward
// transitions in the plan lifecycle.
func (h *PlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	var req dto.UpdatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := h.Repo.GetPlan(r.Context(), planID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "title cannot be empty")
			return
		}
		plan.Title = title
	}
	if req.DefaultTransport != nil {
		mode := domain.TransportMode(*req.DefaultTransport)
		if !mode.Valid() {
			writeError(w, r, http.StatusUnprocessableEntity, "validation_error", "invalid default_transport")
			return
		}
		plan.DefaultTransport = mode
	}
	if req.Status != nil {
		if err := plan.TransitionTo(domain.PlanStatus(*req.Status)); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	updated, err := h.Repo.UpdatePlan(r.Context(), plan)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPlanResponse(updated))
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathUUID(w, r, "planID")
	if !ok {
		return
	}
	if err := h.Repo.DeletePlan(r.Context(), planID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
