package instancefile

import (
	"context"
	"cvrp-route-service/internal/domain"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMatrixSource struct {
	matrix [][]float64
	err    error
	calls  int
}

func (s *stubMatrixSource) FetchMatrix(_ context.Context, points []domain.Point) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.matrix, nil
}

func TestDecodeSingleAndList(t *testing.T) {
	single := `{"name":"one","depot":0,"matrix":[[0,1],[1,0]],"demands":[0,1],"capacity":1,"fleet_size":1}`
	files, err := Decode([]byte(single), "json")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "one", files[0].Name)
	assert.Equal(t, 1, files[0].FleetSize)

	list := "\n  [" + single + "," + single + "]"
	files, err = Decode([]byte(list), "json")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	yml := `
name: y
depot: 0
matrix: [[0, 2], [2, 0]]
demands: [0, 1]
capacity: 3
fleet_size: 2
`
	files, err = Decode([]byte(yml), "yml")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 3.0, files[0].Capacity)
	assert.Equal(t, [][]float64{{0, 2}, {2, 0}}, files[0].Matrix)

	_, err = Decode([]byte(single), "toml")
	assert.Error(t, err)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inst.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: a\n  depot: 0\n  matrix: [[0]]\n  demands: [0]\n  capacity: 1\n  fleet_size: 1\n"), 0o600))

	files, err := Load(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a", files[0].Name)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestBuildDefaultsCustomers(t *testing.T) {
	f := File{
		Depot:     1,
		Matrix:    [][]float64{{0, 1, 2}, {1, 0, 3}, {2, 3, 0}},
		Demands:   []float64{2, 0, 3},
		Capacity:  5,
		FleetSize: 1,
	}

	inst, err := f.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.NodeID{0, 2}, inst.Customers())
	assert.Equal(t, domain.NodeID(1), inst.Depot())
}

func TestBuildEuclidean(t *testing.T) {
	f := File{
		Coordinates: []domain.Point{{X: 0, Y: 0}, {X: 3, Y: 4}},
		Demands:     []float64{0, 1},
		Capacity:    1,
		FleetSize:   1,
	}

	inst, err := f.Build(context.Background(), nil)
	require.NoError(t, err)
	c, err := inst.Cost(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, c, 1e-9)
}

func TestBuildORSUsesMatrixSource(t *testing.T) {
	src := &stubMatrixSource{matrix: [][]float64{{0, 120}, {130, 0}}}
	f := File{
		Coordinates: []domain.Point{{X: -112.07, Y: 33.45}, {X: -112.1, Y: 33.5}},
		Metric:      "ORS",
		Demands:     []float64{0, 1},
		Capacity:    1,
		FleetSize:   1,
	}

	inst, err := f.Build(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	c, err := inst.Cost(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 130.0, c)

	_, err = f.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInstance)

	src.err = errors.New("quota")
	_, err = f.Build(context.Background(), src)
	assert.ErrorIs(t, err, ErrMatrixSource)
	assert.ErrorContains(t, err, "quota")
}

func TestBuildRejectsAmbiguousOrMissingCosts(t *testing.T) {
	base := File{Demands: []float64{0}, Capacity: 1, FleetSize: 1}

	_, err := base.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInstance)

	both := base
	both.Matrix = [][]float64{{0}}
	both.Coordinates = []domain.Point{{}}
	_, err = both.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInstance)

	unknown := base
	unknown.Coordinates = []domain.Point{{}}
	unknown.Metric = "manhattan"
	_, err = unknown.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInstance)
}

func TestBuildPropagatesInstanceValidation(t *testing.T) {
	f := File{
		Matrix:    [][]float64{{0, 1}, {1, 0}},
		Demands:   []float64{0, 1},
		Capacity:  0,
		FleetSize: 1,
	}
	_, err := f.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInstance)
}

func TestFromInstanceRoundTrip(t *testing.T) {
	f := File{
		Name:      "rt",
		Matrix:    [][]float64{{0, 1, 2}, {1, 0, 3}, {2, 4, 0}},
		Demands:   []float64{0, 1, 2},
		Capacity:  3,
		FleetSize: 2,
	}
	inst, err := f.Build(context.Background(), nil)
	require.NoError(t, err)

	out, err := FromInstance("rt", inst)
	require.NoError(t, err)
	assert.Equal(t, f.Matrix, out.Matrix)
	assert.Equal(t, []int{1, 2}, out.Customers)
	assert.Equal(t, f.Demands, out.Demands)
	assert.Equal(t, "rt", out.Name)
}
