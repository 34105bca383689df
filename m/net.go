package m

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Config describes a network to construct. HiddenLayerNeurons must be non-nil;
// an empty slice gives a single synapse layer from input to output.
type Config struct {
	Name               string
	InputNum           int
	HiddenLayerNeurons []int
	OutputNum          int
	Activator          Activator       // defaults to Logistic
	Optimizer          OptimizerConfig // zero value means DefaultOptimizerConfig
}

// Network is a linear stack of dense affine+activation layers.
// It is not safe for concurrent mutation; Evaluate and ComputeGradients only read
// parameters and may run concurrently with each other.
type Network struct {
	name        string
	layerCounts []int
	synapses    []Synapse
	activator   Activator
	opt         *Optimizer
}

// NewNetwork builds a randomly initialised network.
func NewNetwork(c Config) (*Network, error) {
	counts, err := layerCountsFor(c.InputNum, c.HiddenLayerNeurons, c.OutputNum)
	if err != nil {
		return nil, err
	}
	synapses := make([]Synapse, len(counts)-1)
	for i := range synapses {
		rows, cols := counts[i+1], counts[i]
		synapses[i] = newSynapse(rows, cols, randomArray(rows*cols), randomArray(rows))
	}
	return assemble(c.Name, counts, synapses, c.Activator, c.Optimizer)
}

// NewFromSynapses builds a network around explicit parameters. The matrices are
// copied; counts must agree with every shape.
func NewFromSynapses(counts []int, weights []*mat.Dense, biases []*mat.VecDense, act Activator) (*Network, error) {
	if len(counts) < 2 {
		return nil, &ConstructionError{Field: "layerCounts", Value: len(counts), Reason: "need at least input and output widths"}
	}
	for i, c := range counts {
		if c < 1 {
			return nil, &ConstructionError{Field: fmt.Sprintf("layerCounts[%d]", i), Value: c, Reason: "width must be at least 1"}
		}
	}
	if len(weights) != len(counts)-1 || len(biases) != len(counts)-1 {
		return nil, &ConstructionError{Field: "synapses", Value: len(weights), Reason: fmt.Sprintf("expected %d weight and bias layers", len(counts)-1)}
	}
	synapses := make([]Synapse, len(weights))
	for l := range weights {
		r, c := weights[l].Dims()
		if r != counts[l+1] || c != counts[l] {
			return nil, &ConstructionError{Field: fmt.Sprintf("weights[%d]", l), Value: r * c,
				Reason: fmt.Sprintf("shape %dx%d, want %dx%d", r, c, counts[l+1], counts[l])}
		}
		if biases[l].Len() != counts[l+1] {
			return nil, &ConstructionError{Field: fmt.Sprintf("biases[%d]", l), Value: biases[l].Len(),
				Reason: fmt.Sprintf("want %d entries", counts[l+1])}
		}
		synapses[l] = Synapse{Weights: cloneDense(weights[l]), Biases: cloneVec(biases[l])}
	}
	return assemble("", append([]int(nil), counts...), synapses, act, OptimizerConfig{})
}

func assemble(name string, counts []int, synapses []Synapse, act Activator, oc OptimizerConfig) (*Network, error) {
	if act == nil {
		act = Logistic{}
	}
	if oc == (OptimizerConfig{}) {
		oc = DefaultOptimizerConfig()
	}
	if err := oc.Validate(); err != nil {
		return nil, err
	}
	net := &Network{
		name:        name,
		layerCounts: counts,
		synapses:    synapses,
		activator:   act,
	}
	net.opt = newOptimizer(oc, counts)
	return net, nil
}

func layerCountsFor(input int, hidden []int, output int) ([]int, error) {
	if hidden == nil {
		return nil, &ConstructionError{Field: "hiddenLayerNeurons", Reason: "absent"}
	}
	if input < 1 {
		return nil, &ConstructionError{Field: "inputNum", Value: input, Reason: "must be at least 1"}
	}
	if output < 1 {
		return nil, &ConstructionError{Field: "outputNum", Value: output, Reason: "must be at least 1"}
	}
	counts := make([]int, 0, len(hidden)+2)
	counts = append(counts, input)
	for i, h := range hidden {
		if h < 1 {
			return nil, &ConstructionError{Field: fmt.Sprintf("hiddenLayerNeurons[%d]", i), Value: h, Reason: "must be at least 1"}
		}
		counts = append(counts, h)
	}
	return append(counts, output), nil
}

func (net *Network) Name() string { return net.name }

func (net *Network) SetName(name string) { net.name = name }

// LayerCounts returns a copy of the neuron layer widths, input first.
func (net *Network) LayerCounts() []int {
	return append([]int(nil), net.layerCounts...)
}

func (net *Network) InputNum() int { return net.layerCounts[0] }

func (net *Network) OutputNum() int { return net.layerCounts[net.lastIndex()] }

// SynapseLayers is L, the number of weight matrices.
func (net *Network) SynapseLayers() int { return len(net.synapses) }

func (net *Network) lastIndex() int { return len(net.layerCounts) - 1 }

func (net *Network) Activator() Activator { return net.activator }

// SetActivator swaps the nonlinearity. Parameters are left as they are.
func (net *Network) SetActivator(a Activator) error {
	if a == nil {
		return fmt.Errorf("activator must not be nil")
	}
	net.activator = a
	return nil
}

// Weights returns a copy of synapse layer l's weight matrix.
func (net *Network) Weights(l int) *mat.Dense { return cloneDense(net.synapses[l].Weights) }

// Biases returns a copy of synapse layer l's bias vector.
func (net *Network) Biases(l int) *mat.VecDense { return cloneVec(net.synapses[l].Biases) }

// Clone deep-copies topology, parameters, activator and optimizer settings.
// Momentum is not carried over.
func (net *Network) Clone() *Network {
	synapses := make([]Synapse, len(net.synapses))
	for i, s := range net.synapses {
		synapses[i] = s.clone()
	}
	counts := net.LayerCounts()
	return &Network{
		name:        net.name,
		layerCounts: counts,
		synapses:    synapses,
		activator:   net.activator,
		opt:         newOptimizer(net.opt.config, counts),
	}
}

// Extract copies layerCount consecutive synapse layers starting at fromLayer into
// a new network whose input is neuron layer fromLayer.
func (net *Network) Extract(fromLayer, layerCount int) (*Network, error) {
	if fromLayer < 0 || fromLayer >= len(net.synapses) {
		return nil, &ConstructionError{Field: "fromLayer", Value: fromLayer,
			Reason: fmt.Sprintf("must be in [0, %d)", len(net.synapses))}
	}
	if layerCount < 1 || fromLayer+layerCount > len(net.synapses) {
		return nil, &ConstructionError{Field: "layerCount", Value: layerCount,
			Reason: fmt.Sprintf("must be in [1, %d]", len(net.synapses)-fromLayer)}
	}
	synapses := make([]Synapse, layerCount)
	for i := range synapses {
		synapses[i] = net.synapses[fromLayer+i].clone()
	}
	counts := append([]int(nil), net.layerCounts[fromLayer:fromLayer+layerCount+1]...)
	return &Network{
		name:        net.name,
		layerCounts: counts,
		synapses:    synapses,
		activator:   shiftActivator(net.activator, fromLayer),
		opt:         newOptimizer(net.opt.config, counts),
	}, nil
}

// shiftActivator renumbers per-layer choices so layer fromLayer+i becomes layer i.
func shiftActivator(a Activator, offset int) Activator {
	pl, ok := a.(PerLayer)
	if !ok || offset == 0 {
		return a
	}
	shifted := PerLayer{Default: pl.Default, Layers: make(map[int]Activator, len(pl.Layers))}
	for l, act := range pl.Layers {
		if l-offset >= 1 {
			shifted.Layers[l-offset] = act
		}
	}
	return shifted
}

// String summarises the topology, e.g. "logistic[1 4 8 1]".
func (net *Network) String() string {
	return fmt.Sprintf("%s%v", net.activator, net.layerCounts)
}
