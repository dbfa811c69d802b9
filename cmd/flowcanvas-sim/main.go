package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/rmax-ai/flowcanvas/pkg/simulation"
)

func main() {
	var (
		scenarioFile string
		apiURL       string
		jsonOutput   bool
		outputFile   string
	)

	flag.StringVar(&scenarioFile, "scenario", "", "Path to scenario JSON file")
	flag.StringVar(&apiURL, "api", "http://127.0.0.1:8095", "Base URL of flowcanvas-d API")
	flag.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	flag.StringVar(&outputFile, "out", "", "Write output to file instead of stdout")
	flag.Parse()

	var scenario simulation.Scenario

	if scenarioFile != "" {
		data, err := os.ReadFile(scenarioFile)
		if err != nil {
			log.Fatalf("Failed to read scenario file: %v", err)
		}
		if err := json.Unmarshal(data, &scenario); err != nil {
			log.Fatalf("Failed to parse scenario file: %v", err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "No scenario file provided, running default drag scenario...")
		scenario = simulation.Scenario{
			Name:        "Default Drag",
			Duration:    10 * time.Second,
			Description: "Two pointers dragging nodes, some drops off-canvas",
			Reset:       true,
			Pointers: []simulation.PointerConfig{
				{
					Name:      "pointer-default",
					Count:     2,
					Overshoot: 150,
					Behavior:  simulation.BehaviorPeriodic,
					Rate:      5,
				},
			},
			Invariants: []simulation.Invariant{
				{Metric: "out_of_bounds", Condition: "==", Value: 0},
			},
		}
	}

	result := simulation.RunScenario(scenario, apiURL)

	writeReport(result, jsonOutput, outputFile)

	if !result.Success {
		os.Exit(1)
	}
}

func writeReport(res simulation.SimulationResult, jsonFmt bool, filePath string) {
	var output []byte
	var err error

	if jsonFmt {
		output, err = json.MarshalIndent(res, "", "  ")
	} else {
		var buf bytes.Buffer
		buf.WriteString(fmt.Sprintf("\n--- Simulation Report: %s ---\n", res.ScenarioName))
		buf.WriteString(fmt.Sprintf("Duration: %s\n", res.Duration))
		buf.WriteString(fmt.Sprintf("Gestures: %d | Clamped: %d | Contended: %d | Errors: %d | Out of bounds: %d\n",
			atomic.LoadUint64(&res.TotalGestures),
			atomic.LoadUint64(&res.TotalClamped),
			atomic.LoadUint64(&res.TotalContended),
			atomic.LoadUint64(&res.TotalErrors),
			res.OutOfBounds))

		if len(res.Invariants) > 0 {
			buf.WriteString("\nInvariants:\n")
			for _, inv := range res.Invariants {
				status := "FAIL"
				if inv.Passed {
					status = "PASS"
				}
				buf.WriteString(fmt.Sprintf("[%s] %s (%s): Expected %s, Got %s\n", status, inv.Metric, inv.Scope, inv.Expected, inv.Actual))
			}
		}
		output = buf.Bytes()
	}

	if err != nil {
		log.Fatalf("Failed to marshal report: %v", err)
	}

	if filePath != "" {
		if err := os.WriteFile(filePath, output, 0644); err != nil {
			log.Fatalf("Failed to write report to %s: %v", filePath, err)
		}
		fmt.Printf("Report written to %s\n", filePath)
	} else {
		fmt.Println(string(output))
	}
}
