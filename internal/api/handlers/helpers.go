package handlers

import (
	"cvrp-route-service/internal/adapters/instancefile"
	"cvrp-route-service/internal/api/dto"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/platform/obs"
	"cvrp-route-service/internal/ports"
	"cvrp-route-service/internal/services"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.Logger(r.Context()).Warn("encode failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeJSON reads exactly one JSON object into dst, rejecting unknown fields.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}

	if err := validateRequest(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// statusFor maps service and domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInstance), errors.Is(err, services.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFleetExhausted), errors.Is(err, domain.ErrUnreachableCustomer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, instancefile.ErrMatrixSource):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure answers err without a body payload. Server-side failures are logged and hidden.
func writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		obs.Logger(r.Context()).Error(op+" failed", zap.Error(err))
		if status == http.StatusBadGateway {
			writeError(w, r, status, "routing engine unavailable")
			return
		}
		writeError(w, r, status, "internal server error")
		return
	}
	writeError(w, r, status, err.Error())
}

func errorResponse(err error) *dto.ErrorResponse {
	if err == nil {
		return nil
	}
	return &dto.ErrorResponse{Kind: domain.Kind(err), Message: err.Error()}
}

func routeResponses(inst *domain.ProblemInstance, routes domain.RouteSet) ([]dto.RouteResponse, error) {
	out := make([]dto.RouteResponse, 0, len(routes))
	for _, rt := range routes {
		load, err := rt.Load(inst)
		if err != nil {
			return nil, err
		}
		cost, err := rt.Cost(inst)
		if err != nil {
			return nil, err
		}
		nodes := make([]int, 0, len(rt.Nodes))
		for _, n := range rt.Nodes {
			nodes = append(nodes, int(n))
		}
		out = append(out, dto.RouteResponse{Nodes: nodes, Load: load, Cost: cost})
	}
	return out, nil
}

func nodeIDs(ns []domain.NodeID) []int {
	out := make([]int, 0, len(ns))
	for _, n := range ns {
		out = append(out, int(n))
	}
	return out
}
