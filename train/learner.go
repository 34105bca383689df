package train

import (
	"context"
	"fmt"
	"log"
	"math"

	"brainlib/m"
	"gonum.org/v1/gonum/floats"
)

// DefaultErrorMemory is how many block losses feed MeanSquaredError.
const DefaultErrorMemory = 10

// Config holds the training knobs of a Learner.
type Config struct {
	Optimizer   m.OptimizerConfig
	ErrorMemory int // >= 0; 0 reports the latest block loss only
}

func DefaultConfig() Config {
	return Config{Optimizer: m.DefaultOptimizerConfig(), ErrorMemory: DefaultErrorMemory}
}

func (c Config) Validate() error {
	if err := c.Optimizer.Validate(); err != nil {
		return err
	}
	if c.ErrorMemory < 0 {
		return &m.ConfigurationError{Field: "errorMemory", Value: float64(c.ErrorMemory), Reason: "cannot be lower than zero"}
	}
	return nil
}

// BlockResult describes one completed training block.
type BlockResult struct {
	Block            int // 1-based, within the current session
	Loss             float64
	MeanSquaredError float64
}

// Learner drives a network through blocks of examples pulled from a Source.
// It is not safe for concurrent use; see Session for cross-goroutine control.
type Learner struct {
	net    *m.Network
	source Source
	config Config

	history []float64 // ring of block losses
	histPos int
	filled  int
	mse     float64

	blocksDone    int
	examplesDone  int64
	totalBlocks   int
	totalExamples int64

	// OnBlock, if set, is called after every block.
	OnBlock func(BlockResult)
	// Logger, if set, receives a progress line every LogEvery blocks.
	Logger   *log.Logger
	LogEvery int
}

// NewLearner binds net and installs cfg's optimizer settings on it.
func NewLearner(net *m.Network, cfg Config) (*Learner, error) {
	if net == nil {
		return nil, fmt.Errorf("new learner: nil network")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Learner{net: net, config: cfg}
	if err := net.SetOptimizerConfig(cfg.Optimizer); err != nil {
		return nil, err
	}
	l.Reset()
	return l, nil
}

func (l *Learner) Network() *m.Network { return l.net }

// SetNetwork binds another network, zeroes its momentum and starts a new session.
func (l *Learner) SetNetwork(net *m.Network) error {
	if net == nil {
		return fmt.Errorf("set network: nil network")
	}
	if err := net.SetOptimizerConfig(l.config.Optimizer); err != nil {
		return err
	}
	net.ResetMomentum()
	l.net = net
	l.Reset()
	return nil
}

func (l *Learner) SetSource(s Source) { l.source = s }

func (l *Learner) Config() Config { return l.config }

// SetConfig validates and installs cfg. Changing ErrorMemory clears the loss history.
func (l *Learner) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := l.net.SetOptimizerConfig(cfg.Optimizer); err != nil {
		return err
	}
	resize := cfg.ErrorMemory != l.config.ErrorMemory
	l.config = cfg
	if resize {
		l.resetHistory()
	}
	return nil
}

// Reset starts a new session: session counters and the loss history are
// cleared. Lifetime totals and momentum are kept.
func (l *Learner) Reset() {
	l.blocksDone = 0
	l.examplesDone = 0
	l.resetHistory()
}

func (l *Learner) resetHistory() {
	l.history = make([]float64, l.config.ErrorMemory)
	l.histPos = 0
	l.filled = 0
	l.mse = math.Inf(1)
}

// MeanSquaredError is the mean block loss over the last ErrorMemory blocks,
// or +Inf before the first block of the session.
func (l *Learner) MeanSquaredError() float64 { return l.mse }

func (l *Learner) BlocksDone() int { return l.blocksDone }

func (l *Learner) ExamplesDone() int64 { return l.examplesDone }

func (l *Learner) TotalBlocks() int { return l.totalBlocks }

func (l *Learner) TotalExamples() int64 { return l.totalExamples }

func (l *Learner) Progress() Progress {
	return Progress{BlocksDone: l.blocksDone, ExamplesDone: l.examplesDone, MeanSquaredError: l.mse}
}

func (l *Learner) record(loss float64) {
	if len(l.history) == 0 {
		l.mse = loss
		return
	}
	l.history[l.histPos] = loss
	l.histPos = (l.histPos + 1) % len(l.history)
	if l.filled < len(l.history) {
		l.filled++
	}
	l.mse = floats.Sum(l.history[:l.filled]) / float64(l.filled)
}

// LearnBlock pulls one block of examples, trains on it and returns the block's
// mean loss.
func (l *Learner) LearnBlock() (float64, error) {
	if l.source == nil {
		return 0, &MissingDataSourceError{Op: "learn block"}
	}
	size := l.config.Optimizer.BlockSize
	p := l.Progress()
	block := make([]m.Example, size)
	for i := range block {
		ex, err := l.source.Next(p, i)
		if err != nil {
			return 0, fmt.Errorf("block %d example %d: %w", l.blocksDone, i, err)
		}
		block[i] = ex
	}

	loss, err := l.net.TrainBlock(block)
	if err != nil {
		return 0, fmt.Errorf("block %d: %w", l.blocksDone, err)
	}
	l.blocksDone++
	l.totalBlocks++
	l.examplesDone += int64(size)
	l.totalExamples += int64(size)
	l.record(loss)

	if l.OnBlock != nil {
		l.OnBlock(BlockResult{Block: l.blocksDone, Loss: loss, MeanSquaredError: l.mse})
	}
	if l.Logger != nil && l.LogEvery > 0 && l.blocksDone%l.LogEvery == 0 {
		l.Logger.Printf("block %d: loss %.6f, mse %.6f", l.blocksDone, loss, l.mse)
	}
	return loss, nil
}

// LearnWhile trains block by block for as long as cond holds. cond and ctx are
// checked before every block, never inside one.
func (l *Learner) LearnWhile(ctx context.Context, cond func(Progress) bool) (float64, error) {
	if l.source == nil {
		return l.mse, &MissingDataSourceError{Op: "learn"}
	}
	for cond(l.Progress()) {
		if err := ctx.Err(); err != nil {
			return l.mse, err
		}
		if _, err := l.LearnBlock(); err != nil {
			return l.mse, err
		}
	}
	return l.mse, nil
}

// LearnBlocks trains exactly n more blocks unless ctx ends first.
func (l *Learner) LearnBlocks(ctx context.Context, n int) (float64, error) {
	stop := l.blocksDone + n
	return l.LearnWhile(ctx, func(p Progress) bool { return p.BlocksDone < stop })
}

// LearnToError trains until MeanSquaredError drops to target or maxBlocks more
// blocks have run. maxBlocks <= 0 means no budget.
func (l *Learner) LearnToError(ctx context.Context, target float64, maxBlocks int) (float64, error) {
	stop := l.blocksDone + maxBlocks
	return l.LearnWhile(ctx, func(p Progress) bool {
		return p.MeanSquaredError > target && (maxBlocks <= 0 || p.BlocksDone < stop)
	})
}

// LearnExamples starts a new session over examples and trains until every one
// of them has been used once. The final block wraps around to the start when
// the dataset is not a multiple of the block size. The bound Source is restored
// afterwards.
func (l *Learner) LearnExamples(ctx context.Context, examples []Example) (float64, error) {
	src, err := NewLinesSource(examples)
	if err != nil {
		return l.mse, err
	}
	prev := l.source
	l.source = src
	defer func() { l.source = prev }()

	l.Reset()
	size := l.config.Optimizer.BlockSize
	blocks := (len(examples) + size - 1) / size
	return l.LearnBlocks(ctx, blocks)
}
