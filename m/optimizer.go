package m

import (
	"fmt"
	"sync"
)

// OptimizerConfig controls momentum gradient descent.
//
//	velocity = gradient/Accuracy + velocity*Momentum
//	param    = param - velocity
type OptimizerConfig struct {
	Accuracy  float64 // learning-rate divisor, > 0
	Momentum  float64 // >= 0
	BlockSize int     // examples averaged per update, >= 1
}

func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{Accuracy: 10, Momentum: 0.1, BlockSize: 5}
}

func (c OptimizerConfig) Validate() error {
	if !(c.Accuracy > 0) {
		return &ConfigurationError{Field: "accuracy", Value: c.Accuracy, Reason: "must be greater than zero"}
	}
	if !(c.Momentum >= 0) {
		return &ConfigurationError{Field: "momentum", Value: c.Momentum, Reason: "cannot be lower than zero"}
	}
	if c.BlockSize < 1 {
		return &ConfigurationError{Field: "blockSize", Value: float64(c.BlockSize), Reason: "must be at least 1"}
	}
	return nil
}

// Optimizer owns one momentum buffer per parameter array. Buffers follow the
// network through topology edits and are otherwise only touched by apply.
type Optimizer struct {
	config   OptimizerConfig
	velocity []Synapse
}

func newOptimizer(c OptimizerConfig, counts []int) *Optimizer {
	o := &Optimizer{config: c}
	o.reset(counts)
	return o
}

func (o *Optimizer) reset(counts []int) {
	o.velocity = make([]Synapse, len(counts)-1)
	for l := range o.velocity {
		o.velocity[l] = zeroSynapse(counts[l+1], counts[l])
	}
}

func (o *Optimizer) apply(synapses []Synapse, g *Gradients) {
	for l, s := range synapses {
		v := o.velocity[l]
		v.Weights.Apply(func(i, j int, x float64) float64 {
			return g.Weights[l].At(i, j)/o.config.Accuracy + x*o.config.Momentum
		}, v.Weights)
		s.Weights.Sub(s.Weights, v.Weights)

		for i := 0; i < v.Biases.Len(); i++ {
			v.Biases.SetVec(i, g.Biases[l].AtVec(i)/o.config.Accuracy+v.Biases.AtVec(i)*o.config.Momentum)
		}
		s.Biases.SubVec(s.Biases, v.Biases)
	}
}

// OptimizerConfig returns the active training knobs.
func (net *Network) OptimizerConfig() OptimizerConfig { return net.opt.config }

// SetOptimizerConfig validates and installs c. Momentum buffers are kept.
func (net *Network) SetOptimizerConfig(c OptimizerConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	net.opt.config = c
	return nil
}

// ResetMomentum zeroes every momentum buffer.
func (net *Network) ResetMomentum() {
	net.opt.reset(net.layerCounts)
}

// Momentum returns copies of the momentum buffers, shallowest layer first.
func (net *Network) Momentum() []Synapse {
	out := make([]Synapse, len(net.opt.velocity))
	for i, v := range net.opt.velocity {
		out[i] = v.clone()
	}
	return out
}

// ApplyGradients blends already averaged gradients into the momentum buffers
// and subtracts the result from the parameters.
func (net *Network) ApplyGradients(g *Gradients) error {
	if g == nil {
		return fmt.Errorf("apply gradients: nil gradients")
	}
	if err := net.checkShape(g); err != nil {
		return fmt.Errorf("apply gradients: %w", err)
	}
	net.opt.apply(net.synapses, g)
	return nil
}

// Example is one input/target pair.
type Example struct {
	Input  []float64
	Target []float64
}

// BlockGradients computes the mean gradient over examples. Each example is
// backpropagated on its own goroutine; parameters are only read.
func (net *Network) BlockGradients(examples []Example) (*Gradients, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("block gradients: empty block")
	}
	for i, ex := range examples {
		if len(ex.Input) != net.InputNum() {
			return nil, fmt.Errorf("example %d: %w", i, &ShapeError{What: "input", Want: net.InputNum(), Got: len(ex.Input)})
		}
		if len(ex.Target) != net.OutputNum() {
			return nil, fmt.Errorf("example %d: %w", i, &ShapeError{What: "target", Want: net.OutputNum(), Got: len(ex.Target)})
		}
	}

	results := make([]*Gradients, len(examples))
	var wg sync.WaitGroup
	wg.Add(len(examples))
	for i := range examples {
		go func(i int) {
			defer wg.Done()
			// shapes were checked above, so this cannot fail
			results[i], _ = net.ComputeGradients(examples[i].Input, examples[i].Target)
		}(i)
	}
	wg.Wait()

	sum := NewGradients(net.layerCounts)
	for _, g := range results {
		sum.Add(g)
	}
	sum.Scale(1 / float64(len(examples)))
	return sum, nil
}

// TrainBlock averages the gradients of one block and applies them in a single
// step. It returns the mean loss over the block.
func (net *Network) TrainBlock(examples []Example) (float64, error) {
	g, err := net.BlockGradients(examples)
	if err != nil {
		return 0, err
	}
	net.opt.apply(net.synapses, g)
	return g.Loss, nil
}
