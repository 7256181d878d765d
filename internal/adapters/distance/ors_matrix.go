package distance

import (
	"context"
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/platform/obs"
	"cvrp-route-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultORSBaseURL = "https://api.openrouteservice.org"

// ORSMatrixSource implements ports.MatrixSource using the OpenRouteService matrix API.
//
// Point X/Y are interpreted as longitude/latitude and costs are road distances in meters.
// Pairwise results are kept in an optional persistent cache so repeated instances over the
// same locations do not hit the remote API. The source is safe for concurrent use.
type ORSMatrixSource struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	profile     string
	cache       ports.CostCache
	log         *zap.Logger
	maxAttempts int
	backoff     time.Duration
}

type ORSOption func(*ORSMatrixSource)

func WithORSBaseURL(u string) ORSOption {
	return func(o *ORSMatrixSource) { o.baseURL = u }
}

func WithORSProfile(p string) ORSOption {
	return func(o *ORSMatrixSource) { o.profile = p }
}

func WithORSHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSMatrixSource) { o.session = c }
}

func WithORSCostCache(c ports.CostCache) ORSOption {
	return func(o *ORSMatrixSource) { o.cache = c }
}

func WithORSRetry(attempts int, backoff time.Duration) ORSOption {
	return func(o *ORSMatrixSource) {
		o.maxAttempts = attempts
		o.backoff = backoff
	}
}

func NewORSMatrixSource(apiKey string, log *zap.Logger, opts ...ORSOption) (*ORSMatrixSource, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	o := &ORSMatrixSource{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     defaultORSBaseURL,
		profile:     "driving-car",
		log:         log,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxAttempts < 1 {
		o.maxAttempts = 1
	}

	return o, nil
}

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
}

// pointKey normalizes a location so that equal coordinates share cache entries.
func pointKey(p domain.Point) string {
	return strconv.FormatFloat(p.X, 'f', 6, 64) + "," + strconv.FormatFloat(p.Y, 'f', 6, 64)
}

// FetchMatrix returns the full distance matrix between points.
func (o *ORSMatrixSource) FetchMatrix(ctx context.Context, points []domain.Point) (_ [][]float64, err error) {
	defer obs.Time(ctx, o.log, "ors.FetchMatrix")(&err)

	if len(points) == 0 {
		return nil, errors.New("fetch matrix: no points")
	}

	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = pointKey(p)
	}

	if cached, ok := o.fromCache(ctx, keys); ok {
		return cached, nil
	}

	matrix, err := o.fetchRemote(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("fetch matrix: %w", err)
	}

	if o.cache != nil {
		for i, origin := range keys {
			row := make(map[string]float64, len(keys))
			for j, dest := range keys {
				if i != j {
					row[dest] = matrix[i][j]
				}
			}
			if err := o.cache.PutMany(ctx, origin, row); err != nil {
				o.log.Warn("cost cache write failed", zap.String("origin", origin), zap.Error(err))
				break
			}
		}
	}

	return matrix, nil
}

// fromCache assembles the matrix only when every off-diagonal pair is cached.
func (o *ORSMatrixSource) fromCache(ctx context.Context, keys []string) ([][]float64, bool) {
	if o.cache == nil {
		return nil, false
	}

	n := len(keys)
	out := make([][]float64, n)
	for i, origin := range keys {
		hits, err := o.cache.GetMany(ctx, origin, keys)
		if err != nil {
			o.log.Warn("cost cache read failed", zap.String("origin", origin), zap.Error(err))
			return nil, false
		}

		row := make([]float64, n)
		for j, dest := range keys {
			if dest == origin {
				continue
			}
			c, ok := hits[dest]
			if !ok {
				return nil, false
			}
			row[j] = c
		}
		out[i] = row
	}
	return out, true
}

func (o *ORSMatrixSource) fetchRemote(ctx context.Context, points []domain.Point) ([][]float64, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, len(points))
	for _, p := range points {
		locations = append(locations, p.LonLat())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	body, err := o.postMatrix(ctx, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	n := len(points)
	if len(mr.Distances) != n {
		return nil, fmt.Errorf("expected %d source rows; got %d", n, len(mr.Distances))
	}

	out := make([][]float64, n)
	for i, row := range mr.Distances {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d entries, want %d", i, len(row), n)
		}
		vals := make([]float64, n)
		for j, v := range row {
			// Unroutable pairs come back as null.
			if v == nil {
				return nil, fmt.Errorf("matrix returned no distance for %d -> %d", i, j)
			}
			if i != j {
				vals[j] = *v
			}
		}
		out[i] = vals
	}

	return out, nil
}
