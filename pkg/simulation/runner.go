package simulation

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
	"github.com/rmax-ai/flowcanvas/pkg/client"
)

// RunScenario drives the daemon at apiURL with simulated drag gestures for
// s.Duration, then checks the final layout and the scenario invariants.
func RunScenario(s Scenario, apiURL string) SimulationResult {
	if s.Seed == 0 {
		s.Seed = time.Now().UnixNano()
	}

	log.Printf("Running Scenario: %s (Seed: %d)", s.Name, s.Seed)

	res := SimulationResult{
		ScenarioName: s.Name,
		Duration:     s.Duration,
		PointerStats: make(map[string]*PointerStats),
	}

	api := client.NewClient(apiURL)

	if s.Reset {
		if _, err := api.Reset(context.Background()); err != nil {
			log.Printf("Failed to reset canvas: %v", err)
		}
	}

	nodes, err := api.GetNodes(context.Background())
	if err != nil {
		log.Printf("Failed to fetch nodes: %v", err)
		res.TotalErrors++
		evaluateInvariants(&res, s.Invariants)
		return res
	}
	allIDs := make([]string, len(nodes))
	for i, n := range nodes {
		allIDs[i] = n.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Duration)
	defer cancel()

	// Initialize Stats Map
	var statsMutex sync.Mutex
	getPointerStats := func(name string) *PointerStats {
		statsMutex.Lock()
		defer statsMutex.Unlock()
		if _, ok := res.PointerStats[name]; !ok {
			res.PointerStats[name] = &PointerStats{}
		}
		return res.PointerStats[name]
	}

	var wg sync.WaitGroup

	for groupIdx, cfg := range s.Pointers {
		if len(cfg.Nodes) == 0 {
			cfg.Nodes = allIDs
		}
		for i := 0; i < cfg.Count; i++ {
			wg.Add(1)
			seed := s.Seed + int64(groupIdx*1000) + int64(i)
			stats := getPointerStats(cfg.Name) // Group stats by pointer config name

			go func(cfg PointerConfig, seed int64, st *PointerStats) {
				defer wg.Done()
				runPointer(ctx, api, cfg, seed, &res, st)
			}(cfg, seed, stats)
		}
	}

	wg.Wait()

	// Final layout must stay inside the canvas regardless of interleaving.
	if final, err := api.GetNodes(context.Background()); err != nil {
		log.Printf("Failed to fetch final layout: %v", err)
		res.TotalErrors++
	} else {
		for _, n := range final {
			if n.Position != canvas.Clamp(n.Position) {
				res.OutOfBounds++
			}
		}
	}

	evaluateInvariants(&res, s.Invariants)
	return res
}

func runPointer(ctx context.Context, api *client.Client, cfg PointerConfig, seed int64, global *SimulationResult, stats *PointerStats) {
	rng := rand.New(rand.NewSource(seed))

	track := func(o gestureOutcome, err error) {
		atomic.AddUint64(&global.TotalGestures, 1)
		atomic.AddUint64(&stats.Gestures, 1)
		if err != nil {
			atomic.AddUint64(&global.TotalErrors, 1)
			atomic.AddUint64(&stats.Errors, 1)
			return
		}
		switch o {
		case outcomeClamped:
			atomic.AddUint64(&global.TotalClamped, 1)
			atomic.AddUint64(&stats.Clamped, 1)
		case outcomeContended:
			atomic.AddUint64(&global.TotalContended, 1)
			atomic.AddUint64(&stats.Contended, 1)
		}
	}

	// One gesture: grab a node, drop it somewhere, possibly off-canvas.
	action := func() {
		if len(cfg.Nodes) == 0 {
			return
		}
		id := cfg.Nodes[rng.Intn(len(cfg.Nodes))]
		target := canvas.Point{
			X: rng.Float64()*(canvas.MaxX+2*cfg.Overshoot) - cfg.Overshoot,
			Y: rng.Float64()*(canvas.MaxY+2*cfg.Overshoot) - cfg.Overshoot,
		}

		n, err := api.MoveNode(ctx, id, target)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			track(outcomeExact, err)
			return
		}
		track(classify(id, target, n), nil)
	}

	switch cfg.Behavior {
	case BehaviorGreedy:
		for {
			select {
			case <-ctx.Done():
				return
			default:
				action()
			}
		}
	case BehaviorPoisson:
		lambda := float64(max(cfg.Rate, 1))
		for {
			interval := -math.Log(1-rng.Float64()) / lambda
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(interval * float64(time.Second))):
				action()
			}
		}
	case BehaviorBursty:
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for k := 0; k < cfg.Burst; k++ {
					action()
				}
			}
		}
	case BehaviorPeriodic:
		fallthrough
	default:
		interval := 10 * time.Millisecond
		if cfg.Rate > 0 {
			interval = time.Second / time.Duration(cfg.Rate)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if cfg.Jitter > 0 {
					time.Sleep(time.Duration(rng.Int63n(int64(cfg.Jitter))))
				}
				action()
			}
		}
	}
}

type gestureOutcome int

const (
	outcomeExact gestureOutcome = iota
	outcomeClamped
	outcomeContended
)

// classify judges a gesture that dragged id toward target and got moved back.
// Pointers share one drag session, so another pointer may have re-grabbed
// between begin and move; such a gesture says nothing about clamping.
func classify(id string, target canvas.Point, moved canvas.Node) gestureOutcome {
	switch {
	case moved.ID != id:
		return outcomeContended
	case canvas.Distance(moved.Position, target) > 1e-6:
		return outcomeClamped
	default:
		return outcomeExact
	}
}

func evaluateInvariants(res *SimulationResult, invariants []Invariant) {
	res.Success = true

	for _, inv := range invariants {
		var stats *PointerStats
		if inv.Scope == "global" || inv.Scope == "" {
			stats = &PointerStats{
				Gestures:  atomic.LoadUint64(&res.TotalGestures),
				Clamped:   atomic.LoadUint64(&res.TotalClamped),
				Contended: atomic.LoadUint64(&res.TotalContended),
				Errors:    atomic.LoadUint64(&res.TotalErrors),
			}
		} else if s, ok := res.PointerStats[inv.Scope]; ok {
			stats = &PointerStats{
				Gestures:  atomic.LoadUint64(&s.Gestures),
				Clamped:   atomic.LoadUint64(&s.Clamped),
				Contended: atomic.LoadUint64(&s.Contended),
				Errors:    atomic.LoadUint64(&s.Errors),
			}
		} else {
			res.Invariants = append(res.Invariants, InvariantResult{
				Metric: inv.Metric, Scope: inv.Scope, Expected: fmt.Sprintf("%s %.2f", inv.Condition, inv.Value), Actual: "N/A", Passed: false,
			})
			res.Success = false
			continue
		}

		var actual float64
		switch inv.Metric {
		case "out_of_bounds":
			actual = float64(res.OutOfBounds)
		case "gestures":
			actual = float64(stats.Gestures)
		case "error_rate":
			if stats.Gestures > 0 {
				actual = float64(stats.Errors) / float64(stats.Gestures)
			}
		case "clamp_rate":
			if stats.Gestures > 0 {
				actual = float64(stats.Clamped) / float64(stats.Gestures)
			}
		case "contention_rate":
			if stats.Gestures > 0 {
				actual = float64(stats.Contended) / float64(stats.Gestures)
			}
		}

		var passed bool
		switch inv.Condition {
		case ">":
			passed = actual > inv.Value
		case ">=":
			passed = actual >= inv.Value
		case "<":
			passed = actual < inv.Value
		case "<=":
			passed = actual <= inv.Value
		case "==":
			passed = math.Abs(actual-inv.Value) < 0.0001
		}

		res.Invariants = append(res.Invariants, InvariantResult{
			Metric:   inv.Metric,
			Scope:    inv.Scope,
			Expected: fmt.Sprintf("%s %.2f", inv.Condition, inv.Value),
			Actual:   fmt.Sprintf("%.4f", actual),
			Passed:   passed,
		})
		if !passed {
			res.Success = false
		}
	}
}
