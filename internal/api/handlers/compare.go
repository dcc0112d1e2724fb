package handlers

import (
	"net/http"
	"route-scenario-service/internal/api/dto"
	"route-scenario-service/internal/services"
)

type CompareHandler struct {
	Comparer *services.Comparer
}

// Compare returns metrics for 2 or 3 scenarios and, for exactly two, the
// pairwise delta of the second against the first.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req dto.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cmp, err := h.Comparer.Compare(r.Context(), req.ScenarioIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cmp)
}
