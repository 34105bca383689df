// brain-train: trains a feed-forward network and saves it as a .brain file
//
// Usage:
//
//	brain-train --arch="1 8 1" --target=0.001 --output=./nets
//	brain-train --config=train.yaml --data=rows.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"brainlib/m"
	"brainlib/train"
	"brainlib/utils"

	"github.com/google/uuid"
)

var (
	configFile  = flag.String("config", "", "YAML config file (flags override it)")
	name        = flag.String("name", "", "Network name; a run id is generated when empty")
	arch        = flag.String("arch", "", "Layer widths, input first, e.g. \"1 8 1\"")
	activator   = flag.String("activator", "", "raw, logistic, sech or tanh")
	dataFile    = flag.String("data", "", "CSV dataset: inputs then targets per row (demo curve when empty)")
	outputDir   = flag.String("output", "", "Directory for the saved network")
	format      = flag.String("format", "", "plain or legacy")
	accuracy    = flag.Float64("accuracy", 0, "Learning-rate divisor")
	momentum    = flag.Float64("momentum", 0, "Momentum factor")
	blockSize   = flag.Int("block", 0, "Examples per update")
	errorMemory = flag.Int("memory", 0, "Blocks in the rolling error")
	targetError = flag.Float64("target", 0, "Stop once the rolling error reaches this")
	maxBlocks   = flag.Int("blocks", 0, "Block budget")
	normalize   = flag.Bool("normalize", false, "Z-score inputs before training")
	exportJSON  = flag.Bool("json", false, "Also write a JSON weights export")
	verbose     = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Name == "" {
		cfg.Name = "brain-" + uuid.NewString()[:8]
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      brainlib Trainer                        ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Name:          %s\n", cfg.Name)
	fmt.Printf("  Architecture:  %v\n", cfg.Architecture)
	fmt.Printf("  Activator:     %s\n", cfg.Activator)
	fmt.Printf("  Accuracy:      %g\n", cfg.Accuracy)
	fmt.Printf("  Momentum:      %g\n", cfg.Momentum)
	fmt.Printf("  Block size:    %d\n", cfg.BlockSize)
	fmt.Printf("  Target error:  %g\n", cfg.TargetError)
	fmt.Printf("  Max blocks:    %d\n", cfg.MaxBlocks)
	fmt.Println()

	stats := &utils.TimingStats{}
	totalStart := time.Now()

	start := time.Now()
	examples, err := loadExamples(cfg)
	if err != nil {
		log.Fatalf("data: %v", err)
	}
	stats.DataLoadingTime = time.Since(start)
	fmt.Printf("Loaded %d examples\n", len(examples))

	start = time.Now()
	nc, err := cfg.NetworkConfig()
	if err != nil {
		log.Fatalf("network: %v", err)
	}
	net, err := m.NewNetwork(nc)
	if err != nil {
		log.Fatalf("network: %v", err)
	}
	learner, err := train.NewLearner(net, train.Config{Optimizer: cfg.OptimizerConfig(), ErrorMemory: cfg.ErrorMemory})
	if err != nil {
		log.Fatalf("learner: %v", err)
	}
	src, err := train.NewLinesSource(examples)
	if err != nil {
		log.Fatalf("data: %v", err)
	}
	learner.SetSource(src)
	learner.Logger = log.New(os.Stdout, "", log.Ltime)
	learner.LogEvery = cfg.LogEvery
	stats.ModelInitTime = time.Since(start)
	fmt.Printf("Network: %v\n", net)

	session := train.NewSession(learner)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() {
		<-ctx.Done()
		// Stop fails only when the run already ended.
		_ = session.Stop()
	}()

	fmt.Println("\nStarting training...")
	start = time.Now()
	err = session.Run(context.Background(), func(p train.Progress) bool {
		return p.MeanSquaredError > cfg.TargetError && (cfg.MaxBlocks <= 0 || p.BlocksDone < cfg.MaxBlocks)
	})
	stats.TrainingTime = time.Since(start)
	if err != nil {
		log.Fatalf("training: %v", err)
	}
	fmt.Printf("\nTraining finished (%s) after %d blocks, error %.6f\n",
		session.State(), learner.BlocksDone(), learner.MeanSquaredError())

	start = time.Now()
	report(net, examples)
	stats.EvaluationTime = time.Since(start)

	start = time.Now()
	if err := save(cfg, net); err != nil {
		log.Fatalf("save: %v", err)
	}
	stats.SaveTime = time.Since(start)

	stats.TotalTime = time.Since(totalStart)
	utils.PrintTimingStats(stats, learner.BlocksDone())
}

func loadConfig() (*utils.Config, error) {
	cfg := utils.DefaultConfig()
	if *configFile != "" {
		loaded, err := utils.LoadConfig(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *arch != "" {
		a, err := utils.ParseArchitecture(*arch)
		if err != nil {
			return nil, fmt.Errorf("arch: %w", err)
		}
		cfg.Architecture = a
	}
	if *name != "" {
		cfg.Name = *name
	}
	if *activator != "" {
		cfg.Activator = *activator
	}
	if *dataFile != "" {
		cfg.DataPath = *dataFile
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *format != "" {
		cfg.Format = *format
	}
	if set["accuracy"] {
		cfg.Accuracy = *accuracy
	}
	if set["momentum"] {
		cfg.Momentum = *momentum
	}
	if set["block"] {
		cfg.BlockSize = *blockSize
	}
	if set["memory"] {
		cfg.ErrorMemory = *errorMemory
	}
	if set["target"] {
		cfg.TargetError = *targetError
	}
	if set["blocks"] {
		cfg.MaxBlocks = *maxBlocks
	}
	if set["normalize"] {
		cfg.Normalize = *normalize
	}
	if set["json"] {
		cfg.ExportJSON = *exportJSON
	}
	return &cfg, nil
}

func loadExamples(cfg *utils.Config) ([]m.Example, error) {
	in, out := cfg.Architecture[0], cfg.Architecture[len(cfg.Architecture)-1]
	var lines m.Lines
	if cfg.DataPath == "" {
		if in != 1 || out != 1 {
			return nil, fmt.Errorf("demo curve needs a 1-input 1-output architecture, got %v", cfg.Architecture)
		}
		lines = demoCurve(64)
	} else {
		var err error
		lines, err = m.GetLinesFile(cfg.DataPath, in, out)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Normalize {
		lines = m.NormalizeLines(lines, m.CalculateStdDev(lines), m.CalculateMean(lines))
	}
	return lines.Examples(), nil
}

// demoCurve samples a sine bump squeezed into (0, 1) on [0, 1].
func demoCurve(n int) m.Lines {
	lines := make(m.Lines, n)
	for i := range lines {
		x := float64(i) / float64(n-1)
		lines[i] = m.Line{
			Inputs:  []float64{x},
			Targets: []float64{0.5 + 0.4*math.Sin(2*math.Pi*x)},
		}
	}
	return lines
}

func report(net *m.Network, examples []m.Example) {
	if !*verbose {
		return
	}
	var sse float64
	for _, ex := range examples {
		out, err := net.Evaluate(ex.Input)
		if err != nil {
			log.Printf("evaluate: %v", err)
			return
		}
		for i := range out {
			d := out[i] - ex.Target[i]
			sse += d * d
		}
	}
	fmt.Printf("Dataset mean squared error: %.6f\n", sse/float64(len(examples)))
}

func save(cfg *utils.Config, net *m.Network) error {
	f, err := m.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	path, err := net.SaveFile(cfg.OutputDir, cfg.Name, m.WithFormat(f))
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)

	if cfg.ExportJSON {
		jsonPath := filepath.Join(cfg.OutputDir, strings.TrimSuffix(filepath.Base(path), m.FileSuffix)+".json")
		if err := utils.SaveWeights(jsonPath, utils.ExportWeights(net)); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", jsonPath)
	}
	return nil
}
