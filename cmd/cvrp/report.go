package main

import (
	"cvrp-route-service/internal/domain"
	"cvrp-route-service/internal/services"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

type routeReport struct {
	Nodes []domain.NodeID `json:"nodes"`
	Load  float64         `json:"load"`
	Cost  float64         `json:"cost"`
}

type solutionReport struct {
	Instance    string          `json:"instance,omitempty"`
	Strategy    string          `json:"strategy"`
	Routes      []routeReport   `json:"routes"`
	TotalCost   float64         `json:"total_cost"`
	FleetSize   int             `json:"fleet_size"`
	Unreachable []domain.NodeID `json:"unreachable"`
	Error       string          `json:"error,omitempty"`
}

type comparisonReport struct {
	Instance string           `json:"instance,omitempty"`
	Results  []solutionReport `json:"results"`
	Best     string           `json:"best"`
}

func buildReport(name string, inst *domain.ProblemInstance, sol *domain.Solution, solveErr error) (solutionReport, error) {
	rep := solutionReport{
		Instance:    name,
		Strategy:    sol.Strategy,
		Routes:      make([]routeReport, 0, len(sol.Routes)),
		FleetSize:   inst.FleetSize(),
		Unreachable: append([]domain.NodeID{}, sol.Unreachable...),
	}
	if solveErr != nil {
		rep.Error = solveErr.Error()
	}

	for _, r := range sol.Routes {
		load, err := r.Load(inst)
		if err != nil {
			return solutionReport{}, err
		}
		cost, err := r.Cost(inst)
		if err != nil {
			return solutionReport{}, err
		}
		rep.Routes = append(rep.Routes, routeReport{Nodes: r.Nodes, Load: load, Cost: cost})
		rep.TotalCost += cost
	}
	return rep, nil
}

func writeSolution(w io.Writer, name string, inst *domain.ProblemInstance, sol *domain.Solution, solveErr error, asJSON bool) error {
	rep, err := buildReport(name, inst, sol, solveErr)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, rep)
	}
	return writeText(w, rep)
}

func writeComparison(
	w io.Writer,
	name string,
	inst *domain.ProblemInstance,
	results []services.StrategyResult,
	best int,
	asJSON bool,
) error {
	cmp := comparisonReport{Instance: name, Results: make([]solutionReport, 0, len(results))}
	for _, r := range results {
		if r.Solution == nil {
			cmp.Results = append(cmp.Results, solutionReport{Strategy: r.Strategy, Error: errString(r.Err)})
			continue
		}
		rep, err := buildReport(name, inst, r.Solution, r.Err)
		if err != nil {
			return err
		}
		cmp.Results = append(cmp.Results, rep)
	}
	if best >= 0 {
		cmp.Best = results[best].Strategy
	}

	if asJSON {
		return writeJSON(w, cmp)
	}

	for _, rep := range cmp.Results {
		if err := writeText(w, rep); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if cmp.Best == "" {
		_, err := fmt.Fprintln(w, "best: none (no feasible solution)")
		return err
	}
	_, err := fmt.Fprintf(w, "best: %s\n", cmp.Best)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeText prints one line per route followed by the totals.
func writeText(w io.Writer, rep solutionReport) error {
	header := rep.Strategy
	if rep.Instance != "" {
		header = rep.Instance + " / " + rep.Strategy
	}
	fmt.Fprintln(w, header)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tNODES\tLOAD\tCOST")
	for i, r := range rep.Routes {
		fmt.Fprintf(tw, "%d\t%s\t%g\t%g\n", i+1, joinNodes(r.Nodes, " -> "), r.Load, r.Cost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "routes: %d/%d  total cost: %g\n", len(rep.Routes), rep.FleetSize, rep.TotalCost)
	if len(rep.Unreachable) > 0 {
		fmt.Fprintf(w, "unreachable: %s\n", joinNodes(rep.Unreachable, ", "))
	}
	if rep.Error != "" {
		fmt.Fprintf(w, "error: %s\n", rep.Error)
	}
	return nil
}

func joinNodes(ns []domain.NodeID, sep string) string {
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, fmt.Sprint(n))
	}
	return strings.Join(parts, sep)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
