package utils

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestPrintTimingStats(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevVerbose := Output, Verbose
	Output, Verbose = &buf, true
	defer func() { Output, Verbose = prevOut, prevVerbose }()

	stats := &TimingStats{TotalTime: 10 * time.Second, TrainingTime: 5 * time.Second}
	PrintTimingStats(stats, 5)

	out := buf.String()
	if !strings.Contains(out, "Training: 5s (50.0%)") {
		t.Errorf("missing training share in:\n%s", out)
	}
	if !strings.Contains(out, "Average time per block: 1000000.0µs") {
		t.Errorf("missing per-block average in:\n%s", out)
	}
}

func TestPrintTimingStatsQuiet(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevVerbose := Output, Verbose
	Output, Verbose = &buf, false
	defer func() { Output, Verbose = prevOut, prevVerbose }()

	PrintTimingStats(&TimingStats{}, 0)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestTrack(t *testing.T) {
	var stats TimingStats
	stats.Track(&stats.SaveTime, time.Now().Add(-time.Millisecond))
	if stats.SaveTime < time.Millisecond {
		t.Fatalf("SaveTime = %v, want at least 1ms", stats.SaveTime)
	}
}
