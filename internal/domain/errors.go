package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error kinds reported by the routing core. Use errors.Is to classify.
var (
	ErrInvalidInstance     = errors.New("invalid instance")
	ErrUnreachableCustomer = errors.New("unreachable customer")
	ErrFleetExhausted      = errors.New("fleet exhausted")
	ErrOutOfRange          = errors.New("node out of range")
	ErrInvariant           = errors.New("internal invariant violated")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInstance, fmt.Sprintf(format, args...))
}

// UnreachableError lists customers whose demand alone exceeds vehicle capacity.
type UnreachableError struct {
	Nodes    []NodeID
	Capacity float64
}

func (e *UnreachableError) Error() string {
	ids := make([]string, 0, len(e.Nodes))
	for _, n := range e.Nodes {
		ids = append(ids, fmt.Sprint(n))
	}
	return fmt.Sprintf("%v: demand exceeds capacity %g for nodes [%s]", ErrUnreachableCustomer, e.Capacity, strings.Join(ids, ","))
}

func (e *UnreachableError) Is(target error) bool { return target == ErrUnreachableCustomer }

// NewUnreachableError returns nil when nodes is empty.
func NewUnreachableError(nodes []NodeID, capacity float64) error {
	if len(nodes) == 0 {
		return nil
	}
	sorted := slices.Clone(nodes)
	slices.Sort(sorted)
	return &UnreachableError{Nodes: sorted, Capacity: capacity}
}

// FleetExhaustedError reports a construction that needs more vehicles than the fleet has.
type FleetExhaustedError struct {
	Routes    int
	FleetSize int
}

func (e *FleetExhaustedError) Error() string {
	return fmt.Sprintf("%v: %d routes remain for a fleet of %d", ErrFleetExhausted, e.Routes, e.FleetSize)
}

func (e *FleetExhaustedError) Is(target error) bool { return target == ErrFleetExhausted }

type OutOfRangeError struct {
	Node NodeID
	Size int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%v: node %d not in [0,%d)", ErrOutOfRange, e.Node, e.Size)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// InvariantError is a post-condition failure of an algorithm, never a user input problem.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvariant, e.Reason)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariant }

// Kind names the error class of err for logs, metrics and persisted runs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidInstance):
		return "invalid_instance"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrInvariant):
		return "invariant"
	case errors.Is(err, ErrFleetExhausted):
		return "fleet_exhausted"
	case errors.Is(err, ErrUnreachableCustomer):
		return "unreachable_customer"
	default:
		return "internal"
	}
}
