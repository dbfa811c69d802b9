package simulation

import (
	"time"
)

// SimulationResult captures the final state of the simulation for reporting
type SimulationResult struct {
	ScenarioName   string                   `json:"scenario_name"`
	Duration       time.Duration            `json:"duration"`
	TotalGestures  uint64                   `json:"total_gestures"`
	TotalClamped   uint64                   `json:"total_clamped"`
	TotalContended uint64                   `json:"total_contended"` // Moves that landed on another pointer's grab
	TotalErrors    uint64                   `json:"total_errors"`
	OutOfBounds    int                      `json:"out_of_bounds"`
	PointerStats   map[string]*PointerStats `json:"pointer_stats"`
	Invariants     []InvariantResult        `json:"invariants"`
	Success        bool                     `json:"success"`
}

type PointerStats struct {
	Gestures  uint64 `json:"gestures"`
	Clamped   uint64 `json:"clamped"`
	Contended uint64 `json:"contended"`
	Errors    uint64 `json:"errors"`
}

type InvariantResult struct {
	Metric   string `json:"metric"`
	Scope    string `json:"scope"`
	Expected string `json:"expected"` // e.g. "== 0.00"
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

type Scenario struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Duration    time.Duration   `json:"duration"`
	Seed        int64           `json:"seed"` // Deterministic seed
	Reset       bool            `json:"reset"`
	Pointers    []PointerConfig `json:"pointers"`
	Invariants  []Invariant     `json:"invariants,omitempty"`
}

type Invariant struct {
	Metric    string  `json:"metric"`    // error_rate, clamp_rate, contention_rate, gestures, out_of_bounds
	Condition string  `json:"condition"` // e.g., ">", "<", ">=", "<=", "=="
	Value     float64 `json:"value"`
	Scope     string  `json:"scope"` // "global" or specific pointer name
}

// PointerConfig describes a group of simulated pointers dragging nodes.
type PointerConfig struct {
	Name      string        `json:"name"`
	Count     int           `json:"count"`
	Nodes     []string      `json:"nodes,omitempty"` // Targets (default: every node)
	Overshoot float64       `json:"overshoot"`       // Pixels a drop may land outside the canvas
	Behavior  BehaviorType  `json:"behavior"`
	Rate      int           `json:"rate"` // Gestures per second
	Burst     int           `json:"burst"`
	Jitter    time.Duration `json:"jitter"`
}

type BehaviorType string

const (
	BehaviorPeriodic BehaviorType = "periodic"
	BehaviorGreedy   BehaviorType = "greedy"
	BehaviorPoisson  BehaviorType = "poisson"
	BehaviorBursty   BehaviorType = "bursty"
)
