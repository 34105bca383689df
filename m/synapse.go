package m

import "gonum.org/v1/gonum/mat"

// Synapse is the weight matrix and bias vector connecting neuron layer l to l+1.
// Weights is (out, in), Biases has out entries. The same shape is reused for
// momentum buffers so topology edits can treat both alike.
type Synapse struct {
	Weights *mat.Dense
	Biases  *mat.VecDense
}

func newSynapse(out, in int, data, bias []float64) Synapse {
	return Synapse{
		Weights: mat.NewDense(out, in, data),
		Biases:  mat.NewVecDense(out, bias),
	}
}

func zeroSynapse(out, in int) Synapse {
	return newSynapse(out, in, nil, nil)
}

// Dims returns the number of output and input neurons.
func (s Synapse) Dims() (out, in int) {
	return s.Weights.Dims()
}

func (s Synapse) clone() Synapse {
	return Synapse{Weights: cloneDense(s.Weights), Biases: cloneVec(s.Biases)}
}

func (s Synapse) insertOutputs(at, n int) Synapse {
	return Synapse{Weights: insertRows(s.Weights, at, n), Biases: insertVec(s.Biases, at, n)}
}

func (s Synapse) insertInputs(at, n int) Synapse {
	return Synapse{Weights: insertCols(s.Weights, at, n), Biases: s.Biases}
}

func (s Synapse) deleteOutputs(at, n int) Synapse {
	return Synapse{Weights: deleteRows(s.Weights, at, n), Biases: deleteVec(s.Biases, at, n)}
}

func (s Synapse) deleteInputs(at, n int) Synapse {
	return Synapse{Weights: deleteCols(s.Weights, at, n), Biases: s.Biases}
}

func (s Synapse) stretchOutputs(group, factor int) Synapse {
	return Synapse{Weights: tileRows(s.Weights, group, factor), Biases: tileVec(s.Biases, group, factor)}
}

func (s Synapse) stretchInputs(group, factor int, scale float64) Synapse {
	return Synapse{Weights: tileCols(s.Weights, group, factor, scale), Biases: s.Biases}
}
