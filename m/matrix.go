package m

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// initDist draws fresh parameters, matching the standard normal used since the first revision.
var initDist = distuv.Normal{Mu: 0, Sigma: 1}

func randomArray(size int) []float64 {
	data := make([]float64, size)
	for i := range data {
		data[i] = initDist.Rand()
	}
	return data
}

func toSlice(v mat.Vector) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

func cloneDense(d *mat.Dense) *mat.Dense {
	return mat.DenseCopyOf(d)
}

func cloneVec(v *mat.VecDense) *mat.VecDense {
	return mat.VecDenseCopyOf(v)
}

// product returns W·a + b as a new vector.
func product(w mat.Matrix, a, b mat.Vector) *mat.VecDense {
	r, _ := w.Dims()
	o := mat.NewVecDense(r, nil)
	o.MulVec(w, a)
	o.AddVec(o, b)
	return o
}

// backProduct returns (Wᵗ·delta) ⊙ d as a new vector.
func backProduct(w mat.Matrix, delta, d mat.Vector) *mat.VecDense {
	_, c := w.Dims()
	o := mat.NewVecDense(c, nil)
	o.MulVec(w.T(), delta)
	o.MulElemVec(o, d)
	return o
}

// outer returns x·yᵗ.
func outer(x, y mat.Vector) *mat.Dense {
	o := mat.NewDense(x.Len(), y.Len(), nil)
	o.Outer(1, x, y)
	return o
}

func sameDims(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
