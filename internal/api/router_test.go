package api

import (
	"context"
	"cvrp-route-service/internal/adapters/repositories"
	"cvrp-route-service/internal/api/dto"
	"cvrp-route-service/internal/platform/db"
	"cvrp-route-service/internal/services"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const referenceProblem = `{
	"matrix": [[0,10,15,0,10],[10,0,30,25,30],[15,30,0,30,20],[20,25,30,0,15],[10,30,20,15,0]],
	"demands": [0,5,10,5,10],
	"capacity": 10,
	"fleet_size": 3
}`

func newTestServer(t *testing.T, rps float64, burst int) http.Handler {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSqlite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(ctx, conn))

	instances := repositories.NewSqliteInstanceRepository(conn)
	runs := repositories.NewSqliteRunRepository(conn)
	_, err = repositories.SeedInstances(ctx, instances, filepath.Join("..", "..", "data", "seeds", "instances.json"), nil)
	require.NoError(t, err)

	svc := services.NewSolveService(nil, runs, zap.NewNop())

	return NewRouter(Deps{
		Service:        svc,
		Instances:      instances,
		Runs:           runs,
		Log:            zap.NewNop(),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func routeNodes(rs []dto.RouteResponse) [][]int {
	out := make([][]int, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Nodes)
	}
	return out
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, 0, 0)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = do(t, h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestServer(t, 0, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get(requestIDHeader))
}

func TestSolveInline(t *testing.T) {
	h := newTestServer(t, 0, 0)

	rec := do(t, h, http.MethodPost, "/solve", `{"strategy":"savings-merge","problem":`+referenceProblem+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	assert.Equal(t, "savings-merge", res.Strategy)
	assert.Equal(t, [][]int{{0, 2, 0}, {0, 4, 0}, {0, 1, 3, 0}}, routeNodes(res.Routes))
	assert.InDelta(t, 105.0, res.TotalCost, 1e-9)
	assert.Equal(t, 10.0, res.Routes[2].Load)
	assert.InDelta(t, 55.0, res.Routes[2].Cost, 1e-9)
	assert.Empty(t, res.Unreachable)
	assert.Nil(t, res.Error)
	assert.NotEmpty(t, res.RunID)
}

func TestSolveInlineFleetFromOverride(t *testing.T) {
	h := newTestServer(t, 0, 0)

	body := `{"problem":{"matrix":[[0,1,1],[1,0,1],[1,1,0]],"demands":[0,1,1],"capacity":1},"fleet_size":2}`
	rec := do(t, h, http.MethodPost, "/solve", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Routes, 2)
	assert.Nil(t, res.Error)
}

func TestSolveStoredInstanceFleetExhausted(t *testing.T) {
	h := newTestServer(t, 0, 0)

	// The seeded reference instance has two vehicles but needs three routes.
	rec := do(t, h, http.MethodPost, "/solve", `{"instance":"reference","strategy":"nearest-neighbor"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var res dto.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Error)
	assert.Equal(t, "fleet_exhausted", res.Error.Kind)
	assert.Equal(t, [][]int{{0, 3, 1, 0}, {0, 4, 0}, {0, 2, 0}}, routeNodes(res.Routes))
	assert.InDelta(t, 85.0, res.TotalCost, 1e-9)

	rec = do(t, h, http.MethodPost, "/solve", `{"instance":"reference","strategy":"nearest-neighbor","fleet_size":3}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSolveUnreachableCustomer(t *testing.T) {
	h := newTestServer(t, 0, 0)

	body := `{"problem":{"matrix":[[0,1,1],[1,0,1],[1,1,0]],"demands":[0,4,20],"capacity":10,"fleet_size":2}}`
	rec := do(t, h, http.MethodPost, "/solve", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var res dto.SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []int{2}, res.Unreachable)
	assert.Equal(t, [][]int{{0, 1, 0}}, routeNodes(res.Routes))
	assert.Equal(t, "unreachable_customer", res.Error.Kind)
}

func TestSolveErrors(t *testing.T) {
	h := newTestServer(t, 0, 0)

	testCases := []struct {
		name   string
		method string
		body   string
		want   int
		substr string
	}{
		{name: "wrong method", method: http.MethodGet, want: http.StatusMethodNotAllowed},
		{name: "bad json", method: http.MethodPost, body: `{`, want: http.StatusBadRequest, substr: "invalid json"},
		{name: "unknown field", method: http.MethodPost, body: `{"instance":"reference","x":1}`, want: http.StatusBadRequest},
		{name: "trailing object", method: http.MethodPost, body: `{"instance":"reference"}{}`, want: http.StatusBadRequest, substr: "only one"},
		{name: "missing instance", method: http.MethodPost, body: `{}`, want: http.StatusBadRequest, substr: "validation error"},
		{name: "both sources", method: http.MethodPost, body: `{"instance":"reference","problem":` + referenceProblem + `}`, want: http.StatusBadRequest, substr: "not both"},
		{name: "unknown instance", method: http.MethodPost, body: `{"instance":"nope"}`, want: http.StatusNotFound},
		{name: "unknown strategy", method: http.MethodPost, body: `{"instance":"reference","strategy":"genetic"}`, want: http.StatusBadRequest, substr: "unknown strategy"},
		{name: "invalid capacity", method: http.MethodPost, body: `{"problem":{"matrix":[[0]],"demands":[0],"capacity":0,"fleet_size":1}}`, want: http.StatusBadRequest, substr: "capacity"},
		{name: "invalid matrix", method: http.MethodPost, body: `{"problem":{"matrix":[[0,1]],"demands":[0],"capacity":1,"fleet_size":1}}`, want: http.StatusBadRequest},
		{name: "bad fleet override", method: http.MethodPost, body: `{"instance":"reference","fleet_size":0}`, want: http.StatusBadRequest},
		{name: "inline without fleet", method: http.MethodPost, body: `{"problem":{"matrix":[[0,1],[1,0]],"demands":[0,1],"capacity":1}}`, want: http.StatusBadRequest, substr: "fleet"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, "/solve", tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			if tc.substr != "" {
				assert.Contains(t, rec.Body.String(), tc.substr)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	h := newTestServer(t, 0, 0)

	rec := do(t, h, http.MethodPost, "/compare", `{"instance":"reference","fleet_size":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 2)
	assert.Equal(t, "nearest-neighbor", res.Best)
	for _, r := range res.Results {
		assert.True(t, r.Feasible, r.Strategy)
	}

	rec = do(t, h, http.MethodPost, "/compare", `{"instance":"reference"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = dto.CompareResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Best)
	for _, r := range res.Results {
		assert.False(t, r.Feasible)
		require.NotNil(t, r.Error)
		assert.Equal(t, "fleet_exhausted", r.Error.Kind)
		assert.Len(t, r.Routes, 3)
	}

	rec = do(t, h, http.MethodPost, "/compare", `{"instance":"reference","strategies":["savings-merge","tabu"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInstancesAndRuns(t *testing.T) {
	h := newTestServer(t, 0, 0)

	create := `{"name":"square","coordinates":[{"x":0,"y":0},{"x":1,"y":0},{"x":1,"y":1},{"x":0,"y":1}],"demands":[0,1,1,1],"capacity":2,"fleet_size":2}`
	rec := do(t, h, http.MethodPost, "/instances", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"name":"square","customers":3}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/instances", `{"matrix":[[0]],"demands":[0],"capacity":1,"fleet_size":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/instances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.ListInstancesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	names := make([]string, 0, len(list.Instances))
	for _, i := range list.Instances {
		names = append(names, i.Name)
	}
	assert.Contains(t, names, "square")
	assert.Contains(t, names, "reference")

	rec = do(t, h, http.MethodPost, "/solve", `{"instance":"square"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// An inline problem that reuses a stored name stays out of that instance's history.
	inline := `{"problem":{"name":"square","matrix":[[0,1],[1,0]],"demands":[0,1],"capacity":1,"fleet_size":1}}`
	rec = do(t, h, http.MethodPost, "/solve", inline)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/instances/square/runs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var runs dto.ListRunsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, "ok", runs.Runs[0].Outcome)
	assert.Equal(t, services.StrategySavingsMerge, runs.Runs[0].Strategy)

	rec = do(t, h, http.MethodGet, "/instances/missing/runs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/instances/square/runs?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/instances", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, 0.001, 1)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, 0, 0)

	do(t, h, http.MethodGet, "/health", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
