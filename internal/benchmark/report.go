package benchmark

import (
	"fmt"
	"strings"
)

// Report renders results as a markdown summary.
func Report(results []Result) string {
	if len(results) == 0 {
		return "No benchmark results available.\n"
	}
	passed := 0
	var total float64
	for _, r := range results {
		if r.Passed {
			passed++
		}
		total += r.Score
	}

	var b strings.Builder
	b.WriteString("# Benchmark Report\n\n")
	fmt.Fprintf(&b, "Total checks: %d\n", len(results))
	fmt.Fprintf(&b, "Passed: %d/%d\n", passed, len(results))
	fmt.Fprintf(&b, "Average score: %.2f\n\n", total/float64(len(results)))
	b.WriteString("## Results\n\n")
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "### %s: %s\n", r.Name, status)
		fmt.Fprintf(&b, "Score: %.2f\n", r.Score)
		fmt.Fprintf(&b, "Elapsed: %dms\n\n", r.ElapsedMs)
	}
	return b.String()
}
