package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for different operations
type TimingStats struct {
	TotalTime       time.Duration
	DataLoadingTime time.Duration
	ModelInitTime   time.Duration
	TrainingTime    time.Duration
	MutationTime    time.Duration
	EvaluationTime  time.Duration
	SaveTime        time.Duration
}

// Track adds the time since start to *field. Use as
//
//	defer stats.Track(&stats.SaveTime, time.Now())
func (s *TimingStats) Track(field *time.Duration, start time.Time) {
	*field += time.Since(start)
}

func percent(part, whole time.Duration) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, blocks int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Blocks completed: %d\n", blocks)
	if blocks > 0 {
		fmt.Fprintf(Output, "Average time per block: %.1fµs\n", DurationUS(stats.TrainingTime)/float64(blocks))
	}
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	fmt.Fprintf(Output, "  Data loading: %v (%.1f%%)\n", stats.DataLoadingTime, percent(stats.DataLoadingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Model initialization: %v (%.1f%%)\n", stats.ModelInitTime, percent(stats.ModelInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Training: %v (%.1f%%)\n", stats.TrainingTime, percent(stats.TrainingTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Topology edits: %v (%.1f%%)\n", stats.MutationTime, percent(stats.MutationTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Evaluation: %v (%.1f%%)\n", stats.EvaluationTime, percent(stats.EvaluationTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Saving: %v (%.1f%%)\n", stats.SaveTime, percent(stats.SaveTime, stats.TotalTime))
}

// DurationUS is d in microseconds.
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
