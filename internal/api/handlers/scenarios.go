package handlers

import (
	"fmt"
	"net/http"
	"route-scenario-service/internal/api/dto"
	"route-scenario-service/internal/services"
	"strings"

	"github.com/go-chi/chi/v5"
)

const spreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScenarioHandler struct {
	Scenarios *services.ScenarioService
}

func (h *ScenarioHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Scenarios.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *ScenarioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	sc, err := h.Scenarios.Create(r.Context(), req.ToScenario())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sc)
}

func (h *ScenarioHandler) Get(w http.ResponseWriter, r *http.Request) {
	sc, err := h.Scenarios.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sc)
}

func (h *ScenarioHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sc, err := h.Scenarios.Update(r.Context(), chi.URLParam(r, "id"), req.ToPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sc)
}

func (h *ScenarioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Scenarios.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Scenario deleted successfully", "id": id})
}

// Duplicate copies a scenario under the name given in ?new_name=.
func (h *ScenarioHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	newName := strings.TrimSpace(r.URL.Query().Get("new_name"))
	if newName == "" {
		writeError(w, r, http.StatusBadRequest, "new_name is required")
		return
	}

	sc, err := h.Scenarios.Duplicate(r.Context(), chi.URLParam(r, "id"), newName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sc)
}

func (h *ScenarioHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sc, err := h.Scenarios.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sc)
}

func (h *ScenarioHandler) Tables(w http.ResponseWriter, r *http.Request) {
	sc, tables, err := h.Scenarios.Tables(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.TablesResponse{
		ScenarioID:  sc.ID,
		Name:        sc.Name,
		Description: sc.Description,
		Optimized:   sc.Optimized(),
		Tables:      tables,
	})
}

func (h *ScenarioHandler) tablesRequest(w http.ResponseWriter, r *http.Request) (services.SaveTablesRequest, bool) {
	var req dto.TablesRequest
	if !decodeJSON(w, r, &req) {
		return services.SaveTablesRequest{}, false
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return services.SaveTablesRequest{}, false
	}

	return services.SaveTablesRequest{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		Tables:      req.Tables,
	}, true
}

// SaveTables stores edited tables. Without an {id} it creates a scenario.
func (h *ScenarioHandler) SaveTables(w http.ResponseWriter, r *http.Request) {
	req, ok := h.tablesRequest(w, r)
	if !ok {
		return
	}

	res, err := h.Scenarios.SaveTables(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, savedStatus(req), res)
}

// OptimizeTables stores edited tables together with a fresh optimization.
func (h *ScenarioHandler) OptimizeTables(w http.ResponseWriter, r *http.Request) {
	req, ok := h.tablesRequest(w, r)
	if !ok {
		return
	}

	res, err := h.Scenarios.OptimizeTables(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, savedStatus(req), res)
}

func savedStatus(req services.SaveTablesRequest) int {
	if req.ID == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *ScenarioHandler) Export(w http.ResponseWriter, r *http.Request) {
	sc, b, err := h.Scenarios.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", spreadsheetContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(sc.Name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func exportFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "scenario"
	}
	return name + "_results.xlsx"
}
