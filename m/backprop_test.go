package m

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// flatten lists every weight then every bias, shallowest layer first.
func flatten(ws []*mat.Dense, bs []*mat.VecDense) []float64 {
	var out []float64
	for l := range ws {
		r, _ := ws[l].Dims()
		for i := 0; i < r; i++ {
			out = append(out, ws[l].RawRowView(i)...)
		}
		out = append(out, toSlice(bs[l])...)
	}
	return out
}

// withParams rebuilds net's topology around a flat parameter vector.
func withParams(t *testing.T, net *Network, p []float64) *Network {
	counts := net.LayerCounts()
	ws := make([]*mat.Dense, len(counts)-1)
	bs := make([]*mat.VecDense, len(counts)-1)
	k := 0
	for l := range ws {
		r, c := counts[l+1], counts[l]
		ws[l] = mat.NewDense(r, c, append([]float64(nil), p[k:k+r*c]...))
		k += r * c
		bs[l] = mat.NewVecDense(r, append([]float64(nil), p[k:k+r]...))
		k += r
	}
	out, err := NewFromSynapses(counts, ws, bs, net.Activator())
	require.NoError(t, err)
	return out
}

func sse(out, target []float64) float64 {
	var s float64
	for i := range out {
		d := out[i] - target[i]
		s += d * d
	}
	return s
}

func TestGradientsMatchFiniteDifferences(t *testing.T) {
	topologies := [][]int{
		{3, 4, 2},
		{2, 5, 3, 4, 2},
	}
	for name, act := range ActivatorLookup {
		for _, counts := range topologies {
			t.Run(fmt.Sprintf("%s%v", name, counts), func(t *testing.T) {
				net := randomNet(t, act, counts...)
				input := randomArray(counts[0])
				target := randomArray(counts[len(counts)-1])

				g, err := net.ComputeGradients(input, target)
				require.NoError(t, err)

				var ws []*mat.Dense
				var bs []*mat.VecDense
				for l := 0; l < net.SynapseLayers(); l++ {
					ws = append(ws, net.Weights(l))
					bs = append(bs, net.Biases(l))
				}
				params := flatten(ws, bs)
				loss := func(p []float64) float64 {
					out, err := withParams(t, net, p).Evaluate(input)
					require.NoError(t, err)
					return sse(out, target)
				}
				want := fd.Gradient(nil, loss, params, &fd.Settings{Formula: fd.Central})
				got := flatten(g.Weights, g.Biases)

				require.Len(t, got, len(want))
				for i := range want {
					assert.InDelta(t, want[i], got[i], 1e-5*(1+abs(want[i])), "param %d", i)
				}
				assert.InDelta(t, loss(params), g.Loss, 1e-12)
			})
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestGradientsGolden(t *testing.T) {
	net := goldenNet(t)
	g, err := net.ComputeGradients([]float64{0.5}, []float64{1})
	require.NoError(t, err)

	out := 0.5767884814272548
	assert.InDelta(t, (out-1)*(out-1), g.Loss, 1e-12)

	// Output bias gradient is 2(a-t)·a(1-a).
	assert.InDelta(t, 2*(out-1)*out*(1-out), g.Biases[1].AtVec(0), 1e-12)
	r, c := g.Weights[0].Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
}

func TestComputeGradientsDoesNotMutate(t *testing.T) {
	net := goldenNet(t)
	before := net.Clone()
	_, err := net.ComputeGradients([]float64{0.5}, []float64{1})
	require.NoError(t, err)
	for l := 0; l < net.SynapseLayers(); l++ {
		assert.True(t, mat.Equal(before.Weights(l), net.Weights(l)))
		assert.True(t, mat.Equal(before.Biases(l), net.Biases(l)))
	}
}

func TestComputeGradientsShapeErrors(t *testing.T) {
	net := goldenNet(t)
	_, err := net.ComputeGradients([]float64{1, 2}, []float64{1})
	assert.True(t, errors.Is(err, ErrShape))
	_, err = net.ComputeGradients([]float64{1}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrShape))
}

func TestGradientsAddScale(t *testing.T) {
	a := NewGradients([]int{2, 1})
	a.Weights[0].Set(0, 1, 4)
	a.Biases[0].SetVec(0, 2)
	a.Loss = 1

	sum := NewGradients([]int{2, 1})
	sum.Add(a)
	sum.Add(a)
	sum.Scale(0.5)

	assert.Equal(t, 4.0, sum.Weights[0].At(0, 1))
	assert.Equal(t, 2.0, sum.Biases[0].AtVec(0))
	assert.Equal(t, 1.0, sum.Loss)
}
