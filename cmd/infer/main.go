// brain-infer: evaluates a saved network on comma separated input rows
//
// Usage:
//
//	brain-infer --net=nets/demo.brain --input=rows.csv
//	echo "0.25" | brain-infer --net=nets/demo.brain
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"brainlib/m"
	"brainlib/utils"
)

var (
	netFile   = flag.String("net", "", "Network file (.brain)")
	weights   = flag.String("weights", "", "JSON weights export, used instead of --net")
	inputFile = flag.String("input", "", "Input rows (stdin when empty)")
	activator = flag.String("activator", "logistic", "Activator the network was trained with")
	squash    = flag.Bool("squash", false, "Pass inputs through the activator's normalizer first")
	verbose   = flag.Bool("verbose", false, "Print timing")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	act, err := m.ParseActivator(*activator)
	if err != nil {
		log.Fatal(err)
	}

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	net, err := loadNetwork(act)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	stats.ModelInitTime = time.Since(start)

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatalf("input: %v", err)
		}
		defer f.Close()
		in = f
	}

	start = time.Now()
	lines, err := m.GetLines(in, net.InputNum(), 0)
	if err != nil {
		log.Fatalf("input: %v", err)
	}
	stats.DataLoadingTime = time.Since(start)

	norm := m.NormalizeRaw
	if *squash {
		if norm, err = m.Normalizer(*activator); err != nil {
			log.Fatal(err)
		}
	}

	start = time.Now()
	for i, line := range lines {
		out, err := net.Evaluate(norm(line.Inputs))
		if err != nil {
			log.Fatalf("row %d: %v", i+1, err)
		}
		fmt.Println(formatRow(out))
	}
	stats.EvaluationTime = time.Since(start)

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, 0)
}

func loadNetwork(act m.Activator) (*m.Network, error) {
	if *weights != "" {
		mw, err := utils.LoadWeights(*weights)
		if err != nil {
			return nil, err
		}
		net, err := utils.ImportWeights(mw)
		if err != nil {
			return nil, err
		}
		if mw.Activator == "" {
			err = net.SetActivator(act)
		}
		return net, err
	}
	if *netFile == "" {
		return nil, fmt.Errorf("one of --net or --weights is required")
	}
	return m.LoadFile(*netFile, m.WithActivator(act))
}

func formatRow(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
