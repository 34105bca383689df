package m

import "gonum.org/v1/gonum/mat"

// Trace holds one forward pass. Raw[i] is z_i, Active[i] is a_i and, in
// training mode, Derived[i] is the activator derivative at z_i. Index 0 is the
// input layer; Raw[0] and Active[0] are the input itself and Derived[0] is unused.
type Trace struct {
	Raw     []*mat.VecDense
	Active  []*mat.VecDense
	Derived []*mat.VecDense
}

// Output is the activated output layer a_L.
func (t *Trace) Output() *mat.VecDense {
	return t.Active[len(t.Active)-1]
}

// Evaluate runs the network on input and returns the output layer.
func (net *Network) Evaluate(input []float64) ([]float64, error) {
	if len(input) != net.InputNum() {
		return nil, &ShapeError{What: "input", Want: net.InputNum(), Got: len(input)}
	}
	trace := net.forward(mat.NewVecDense(len(input), append([]float64(nil), input...)), false)
	return toSlice(trace.Output()), nil
}

// Forward is Evaluate in training mode: every intermediate is returned.
func (net *Network) Forward(input []float64) (*Trace, error) {
	if len(input) != net.InputNum() {
		return nil, &ShapeError{What: "input", Want: net.InputNum(), Got: len(input)}
	}
	return net.forward(mat.NewVecDense(len(input), append([]float64(nil), input...)), true), nil
}

func (net *Network) forward(input *mat.VecDense, training bool) *Trace {
	n := len(net.layerCounts)
	t := &Trace{
		Raw:    make([]*mat.VecDense, n),
		Active: make([]*mat.VecDense, n),
	}
	if training {
		t.Derived = make([]*mat.VecDense, n)
	}
	t.Raw[0] = input
	t.Active[0] = input
	for i := 1; i < n; i++ {
		s := net.synapses[i-1]
		t.Raw[i] = product(s.Weights, t.Active[i-1], s.Biases)
		t.Active[i] = net.activator.Activate(i, t.Raw[i])
		if training {
			t.Derived[i] = net.activator.Derive(i, t.Raw[i])
		}
	}
	return t
}
