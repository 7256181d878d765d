package handlers

import (
	"context"
	"cvrp-route-service/internal/api/dto"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/ports"
	"cvrp-route-service/internal/services"
	"fmt"
	"net/http"
	"strings"
)

// inlinePrefix marks run history rows recorded for inline problems.
const inlinePrefix = "inline:"

// SolveHandler runs construction strategies on stored or inline instances.
type SolveHandler struct {
	Service   *services.SolveService
	Instances ports.InstanceRepository
	// Optional; only inline instances with the "ors" metric need it.
	Matrix ports.MatrixSource
}

func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.SolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name, inst, err := h.resolve(r.Context(), req.Instance, req.Problem, req.FleetSize)
	if err != nil {
		writeFailure(w, r, "resolve instance", err)
		return
	}

	res, err := h.Service.Solve(r.Context(), services.SolveRequest{
		InstanceName: name,
		Instance:     inst,
		Strategy:     req.Strategy,
	})
	if res == nil {
		writeFailure(w, r, "solve", err)
		return
	}

	routes, rerr := routeResponses(inst, res.Solution.Routes)
	if rerr != nil {
		writeFailure(w, r, "solve", rerr)
		return
	}

	status := http.StatusOK
	if err != nil {
		// Partial solutions are still returned alongside the error.
		status = statusFor(err)
	}

	writeJSON(w, r, status, dto.SolveResponse{
		RunID:       res.RunID,
		Strategy:    res.Solution.Strategy,
		Fingerprint: res.Fingerprint,
		CacheHit:    res.CacheHit,
		Routes:      routes,
		TotalCost:   res.TotalCost,
		Unreachable: nodeIDs(res.Solution.Unreachable),
		Error:       errorResponse(err),
	})
}

func (h *SolveHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, inst, err := h.resolve(r.Context(), req.Instance, req.Problem, req.FleetSize)
	if err != nil {
		writeFailure(w, r, "resolve instance", err)
		return
	}

	results, best, err := h.Service.Compare(r.Context(), inst, req.Strategies)
	if err != nil {
		writeFailure(w, r, "compare", err)
		return
	}

	res := dto.CompareResponse{Results: make([]dto.StrategyResultResponse, 0, len(results))}
	for _, sr := range results {
		out := dto.StrategyResultResponse{
			Strategy:    sr.Strategy,
			Feasible:    sr.Feasible(),
			Routes:      []dto.RouteResponse{},
			TotalCost:   sr.TotalCost,
			Unreachable: []int{},
			Error:       errorResponse(sr.Err),
		}
		if sr.Solution != nil {
			routes, err := routeResponses(inst, sr.Solution.Routes)
			if err != nil {
				writeFailure(w, r, "compare", err)
				return
			}
			out.Routes = routes
			out.Unreachable = nodeIDs(sr.Solution.Unreachable)
		}
		res.Results = append(res.Results, out)
	}
	if best >= 0 {
		res.Best = results[best].Strategy
	}

	writeJSON(w, r, http.StatusOK, res)
}

// resolve loads the named instance or builds the inline one, then applies a fleet override.
func (h *SolveHandler) resolve(
	ctx context.Context,
	name string,
	problem *dto.InstanceRequest,
	fleetSize *int,
) (string, *domain.ProblemInstance, error) {
	name = strings.TrimSpace(name)

	var (
		inst *domain.ProblemInstance
		err  error
	)
	switch {
	case name != "" && problem != nil:
		return "", nil, fmt.Errorf("%w: give either instance or problem, not both", domain.ErrInvalidInstance)
	case problem != nil:
		name = inlineRunName(problem.Name)
		f := problem.File()
		if fleetSize != nil {
			f.FleetSize = *fleetSize
		}
		inst, err = f.Build(ctx, h.Matrix)
	case h.Instances == nil:
		return "", nil, fmt.Errorf("instance %q: %w", name, ports.ErrNotFound)
	default:
		inst, err = h.Instances.GetInstance(ctx, name)
	}
	if err != nil {
		return "", nil, err
	}

	if fleetSize != nil {
		inst, err = inst.WithFleetSize(*fleetSize)
		if err != nil {
			return "", nil, err
		}
	}
	return name, inst, nil
}

// inlineRunName keeps runs of ad-hoc problems out of a stored instance's history.
func inlineRunName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return inlinePrefix + name
}
