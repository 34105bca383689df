package m

import (
	"gonum.org/v1/gonum/mat"
)

// Gradients holds one gradient per parameter array, ordered shallowest synapse
// layer first, together with the loss they were derived from.
type Gradients struct {
	Weights []*mat.Dense
	Biases  []*mat.VecDense
	Loss    float64
}

// NewGradients returns a zeroed gradient frame for the given layer widths.
func NewGradients(layerCounts []int) *Gradients {
	g := &Gradients{
		Weights: make([]*mat.Dense, len(layerCounts)-1),
		Biases:  make([]*mat.VecDense, len(layerCounts)-1),
	}
	for l := range g.Weights {
		g.Weights[l] = mat.NewDense(layerCounts[l+1], layerCounts[l], nil)
		g.Biases[l] = mat.NewVecDense(layerCounts[l+1], nil)
	}
	return g
}

// Add accumulates o into g. Loss is summed as well.
func (g *Gradients) Add(o *Gradients) {
	for l := range g.Weights {
		g.Weights[l].Add(g.Weights[l], o.Weights[l])
		g.Biases[l].AddVec(g.Biases[l], o.Biases[l])
	}
	g.Loss += o.Loss
}

// Scale multiplies every gradient and the loss by f.
func (g *Gradients) Scale(f float64) {
	for l := range g.Weights {
		g.Weights[l].Scale(f, g.Weights[l])
		g.Biases[l].ScaleVec(f, g.Biases[l])
	}
	g.Loss *= f
}

// checkShape verifies g matches the network's current topology.
func (net *Network) checkShape(g *Gradients) error {
	if len(g.Weights) != len(net.synapses) {
		return &ShapeError{What: "weight gradient layers", Want: len(net.synapses), Got: len(g.Weights)}
	}
	if len(g.Biases) != len(net.synapses) {
		return &ShapeError{What: "bias gradient layers", Want: len(net.synapses), Got: len(g.Biases)}
	}
	for l, s := range net.synapses {
		if !sameDims(g.Weights[l], s.Weights) {
			r, c := s.Weights.Dims()
			gr, gc := g.Weights[l].Dims()
			return &ShapeError{What: "weight gradient elements", Want: r * c, Got: gr * gc}
		}
		if g.Biases[l].Len() != s.Biases.Len() {
			return &ShapeError{What: "bias gradient elements", Want: s.Biases.Len(), Got: g.Biases[l].Len()}
		}
	}
	return nil
}

// ComputeGradients runs a training-mode forward pass and backpropagates the sum
// of squared errors against target. The network is not modified.
func (net *Network) ComputeGradients(input, target []float64) (*Gradients, error) {
	if len(input) != net.InputNum() {
		return nil, &ShapeError{What: "input", Want: net.InputNum(), Got: len(input)}
	}
	if len(target) != net.OutputNum() {
		return nil, &ShapeError{What: "target", Want: net.OutputNum(), Got: len(target)}
	}
	trace := net.forward(mat.NewVecDense(len(input), append([]float64(nil), input...)), true)
	return net.backpropagate(trace, mat.NewVecDense(len(target), append([]float64(nil), target...))), nil
}

func (net *Network) backpropagate(t *Trace, target *mat.VecDense) *Gradients {
	last := net.lastIndex()
	g := &Gradients{
		Weights: make([]*mat.Dense, len(net.synapses)),
		Biases:  make([]*mat.VecDense, len(net.synapses)),
	}

	diff := mat.NewVecDense(target.Len(), nil)
	diff.SubVec(t.Active[last], target)
	g.Loss = mat.Dot(diff, diff)

	// delta is dLoss/dz for neuron layer i, starting at the output.
	delta := mat.NewVecDense(diff.Len(), nil)
	delta.ScaleVec(2, diff)
	delta.MulElemVec(delta, t.Derived[last])

	for i := last; i >= 1; i-- {
		g.Weights[i-1] = outer(delta, t.Active[i-1])
		g.Biases[i-1] = cloneVec(delta)
		if i > 1 {
			delta = backProduct(net.synapses[i-1].Weights, delta, t.Derived[i-1])
		}
	}
	return g
}
