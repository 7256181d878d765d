package services

import (
	"cvrp-route-service/internal/domain"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes everything that influences a solve: depot, customer order, demands,
// capacity, fleet size and the full cost matrix.
func Fingerprint(inst *domain.ProblemInstance) (uint64, error) {
	h := xxhash.New()
	var buf [8]byte

	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	writeFloat := func(v float64) { writeUint(math.Float64bits(v)) }

	writeUint(uint64(inst.NumNodes()))
	writeUint(uint64(inst.Depot()))
	for _, c := range inst.Customers() {
		writeUint(uint64(c))
	}
	for _, d := range inst.Demands() {
		writeFloat(d)
	}
	writeFloat(inst.Capacity())
	writeUint(uint64(inst.FleetSize()))

	matrix, err := inst.DenseMatrix()
	if err != nil {
		return 0, fmt.Errorf("fingerprint: %w", err)
	}
	for _, row := range matrix {
		for _, v := range row {
			writeFloat(v)
		}
	}

	return h.Sum64(), nil
}

// CacheKey identifies a deterministic solve of inst with the named strategy.
func CacheKey(strategy string, fingerprint uint64) string {
	return fmt.Sprintf("%s:%016x", strategy, fingerprint)
}
