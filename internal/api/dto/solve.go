package dto

// SolveRequest names a stored instance or carries one inline under "problem".
type SolveRequest struct {
	Instance string           `json:"instance,omitempty" validate:"required_without=Problem,max=128"`
	Problem  *InstanceRequest `json:"problem,omitempty" validate:"required_without=Instance"`
	Strategy string           `json:"strategy,omitempty" validate:"max=64"`

	// Overrides the instance fleet size when set.
	FleetSize *int `json:"fleet_size,omitempty" validate:"omitempty,gte=1"`
}

type CompareRequest struct {
	Instance   string           `json:"instance,omitempty" validate:"required_without=Problem,max=128"`
	Problem    *InstanceRequest `json:"problem,omitempty" validate:"required_without=Instance"`
	Strategies []string         `json:"strategies,omitempty" validate:"omitempty,max=16,dive,required"`
	FleetSize  *int             `json:"fleet_size,omitempty" validate:"omitempty,gte=1"`
}

type RouteResponse struct {
	Nodes []int   `json:"nodes"`
	Load  float64 `json:"load"`
	Cost  float64 `json:"cost"`
}

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type SolveResponse struct {
	RunID       string          `json:"run_id"`
	Strategy    string          `json:"strategy"`
	Fingerprint string          `json:"fingerprint"`
	CacheHit    bool            `json:"cache_hit"`
	Routes      []RouteResponse `json:"routes"`
	TotalCost   float64         `json:"total_cost"`
	Unreachable []int           `json:"unreachable"`
	Error       *ErrorResponse  `json:"error,omitempty"`
}

type StrategyResultResponse struct {
	Strategy    string          `json:"strategy"`
	Feasible    bool            `json:"feasible"`
	Routes      []RouteResponse `json:"routes"`
	TotalCost   float64         `json:"total_cost"`
	Unreachable []int           `json:"unreachable"`
	Error       *ErrorResponse  `json:"error,omitempty"`
}

type CompareResponse struct {
	Results []StrategyResultResponse `json:"results"`
	// Empty when no strategy produced a feasible solution.
	Best string `json:"best"`
}
