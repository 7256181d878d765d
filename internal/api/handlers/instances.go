package handlers

import (
	"cvrp-route-service/internal/api/dto"
	"cvrp-route-service/internal/ports"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

// InstanceHandler manages stored instances and their solve history.
type InstanceHandler struct {
	Repo    ports.InstanceRepository
	RunRepo ports.SolveRunRepository
	Matrix  ports.MatrixSource
}

// Collection serves GET (list) and POST (store) on /instances.
func (h *InstanceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

func (h *InstanceHandler) list(w http.ResponseWriter, r *http.Request) {
	sums, err := h.Repo.ListInstances(r.Context())
	if err != nil {
		writeFailure(w, r, "list instances", err)
		return
	}

	res := dto.ListInstancesResponse{
		Instances: make([]dto.InstanceSummaryResponse, 0, len(sums)),
	}
	for _, s := range sums {
		res.Instances = append(res.Instances, dto.InstanceSummaryResponse{
			Name:      s.Name,
			Customers: s.Customers,
			Capacity:  s.Capacity,
			FleetSize: s.FleetSize,
			CreatedAt: s.CreatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *InstanceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.InstanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	inst, err := req.File().Build(r.Context(), h.Matrix)
	if err != nil {
		writeFailure(w, r, "build instance", err)
		return
	}

	if err := h.Repo.SaveInstance(r.Context(), name, inst); err != nil {
		writeFailure(w, r, "save instance", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.SaveInstanceResponse{
		Name:      name,
		Customers: len(inst.Customers()),
	})
}

// Runs lists solve history for /instances/{name}/runs, most recent first.
func (h *InstanceHandler) Runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "instance name is required")
		return
	}

	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunLimit {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	if _, err := h.Repo.GetInstance(r.Context(), name); err != nil {
		writeFailure(w, r, "get instance", err)
		return
	}

	res := dto.ListRunsResponse{Instance: name, Runs: []dto.RunResponse{}}
	if h.RunRepo == nil {
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	runs, err := h.RunRepo.ListRuns(r.Context(), name, limit)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		writeFailure(w, r, "list runs", err)
		return
	}
	for _, run := range runs {
		res.Runs = append(res.Runs, dto.RunResponse{
			ID:          run.ID,
			Strategy:    run.Strategy,
			Fingerprint: run.Fingerprint,
			Outcome:     run.Outcome,
			ErrorKind:   run.ErrorKind,
			Routes:      run.Routes,
			Unreachable: run.Unreachable,
			TotalCost:   run.TotalCost,
			DurationMS:  run.Duration.Milliseconds(),
			CacheHit:    run.CacheHit,
			CreatedAt:   run.CreatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
