package m

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func requireShapesConsistent(t *testing.T, net *Network) {
	t.Helper()
	counts := net.LayerCounts()
	require.Equal(t, len(counts)-1, net.SynapseLayers())
	for l, v := range net.Momentum() {
		r, c := net.Weights(l).Dims()
		require.Equal(t, counts[l+1], r, "weights rows %d", l)
		require.Equal(t, counts[l], c, "weights cols %d", l)
		require.Equal(t, counts[l+1], net.Biases(l).Len(), "biases %d", l)
		vr, vc := v.Weights.Dims()
		require.Equal(t, r, vr, "momentum rows %d", l)
		require.Equal(t, c, vc, "momentum cols %d", l)
		require.Equal(t, r, v.Biases.Len(), "momentum biases %d", l)
	}
}

// trainOnce leaves non-zero momentum behind.
func trainOnce(t *testing.T, net *Network) {
	t.Helper()
	in := make([]float64, net.InputNum())
	target := make([]float64, net.OutputNum())
	for i := range in {
		in[i] = 0.1 * float64(i+1)
	}
	g, err := net.ComputeGradients(in, target)
	require.NoError(t, err)
	require.NoError(t, net.ApplyGradients(g))
}

func TestExpandPreservesOutput(t *testing.T) {
	net := randomNet(t, Tanh{}, 3, 4, 5, 2)
	in := []float64{0.2, -0.4, 0.9}
	before, err := net.Evaluate(in)
	require.NoError(t, err)

	for _, layer := range []int{1, 2} {
		require.NoError(t, net.ExpandLayer(layer, 3))
		requireShapesConsistent(t, net)
		after, err := net.Evaluate(in)
		require.NoError(t, err)
		assert.InDeltaSlice(t, before, after, 1e-12)
	}
	assert.Equal(t, []int{3, 7, 8, 2}, net.LayerCounts())

	// new neurons sit at the start and are inert
	w := net.Weights(0)
	assert.Equal(t, []float64{0, 0, 0}, mat.Row(nil, 0, w))
	assert.Equal(t, 0.0, net.Biases(0).AtVec(2))
}

func TestExpandInputAndOutputLayers(t *testing.T) {
	net := randomNet(t, Logistic{}, 2, 3, 1)
	before, _ := net.Evaluate([]float64{0.5, 0.25})

	require.NoError(t, net.ExpandLayer(0, 1))
	requireShapesConsistent(t, net)
	assert.Equal(t, 3, net.InputNum())
	after, err := net.Evaluate([]float64{42, 0.5, 0.25})
	require.NoError(t, err)
	assert.InDeltaSlice(t, before, after, 1e-12)

	require.NoError(t, net.ExpandLayer(2, 2))
	requireShapesConsistent(t, net)
	assert.Equal(t, 3, net.OutputNum())
}

func TestShrinkUndoesExpand(t *testing.T) {
	net := randomNet(t, Sech{}, 2, 4, 3)
	trainOnce(t, net)
	orig := net.Clone()
	origMomentum := net.Momentum()

	require.NoError(t, net.ExpandLayer(1, 2))
	require.NoError(t, net.ShrinkLayer(1, 2))
	requireShapesConsistent(t, net)

	assert.Equal(t, orig.LayerCounts(), net.LayerCounts())
	for l := 0; l < net.SynapseLayers(); l++ {
		assert.True(t, mat.Equal(orig.Weights(l), net.Weights(l)))
		assert.True(t, mat.Equal(orig.Biases(l), net.Biases(l)))
		assert.True(t, mat.Equal(origMomentum[l].Weights, net.Momentum()[l].Weights))
	}
}

func TestShrinkRemovesFirstNeurons(t *testing.T) {
	net := goldenNet(t)
	require.NoError(t, net.ShrinkLayer(1, 1))
	assert.Equal(t, []int{1, 1, 1}, net.LayerCounts())
	assert.Equal(t, -0.6, net.Weights(0).At(0, 0))
	assert.Equal(t, 0.2, net.Biases(0).AtVec(0))
	assert.Equal(t, -0.3, net.Weights(1).At(0, 0))
}

func TestShrinkErrors(t *testing.T) {
	net := goldenNet(t)
	err := net.ShrinkLayer(1, 2)
	assert.True(t, errors.Is(err, ErrConstruction))
	assert.Equal(t, []int{1, 2, 1}, net.LayerCounts())

	assert.NoError(t, net.ShrinkLayer(1, 0))
	assert.Equal(t, []int{1, 2, 1}, net.LayerCounts())
}

func TestLayerOutOfRange(t *testing.T) {
	net := goldenNet(t)
	assert.True(t, errors.Is(net.ExpandLayer(3, 1), ErrConstruction))
	assert.True(t, errors.Is(net.ShrinkLayer(-1, 1), ErrConstruction))
	assert.True(t, errors.Is(net.StretchLayer(5, 2, 1), ErrConstruction))
}

func TestStretchPreservesOutput(t *testing.T) {
	for name, act := range ActivatorLookup {
		t.Run(name, func(t *testing.T) {
			net := randomNet(t, act, 3, 4, 2)
			trainOnce(t, net)
			in := []float64{0.3, 0.1, -0.5}
			before, err := net.Evaluate(in)
			require.NoError(t, err)

			require.NoError(t, net.StretchLayer(1, 3, 2))
			requireShapesConsistent(t, net)
			assert.Equal(t, []int{3, 12, 2}, net.LayerCounts())

			after, err := net.Evaluate(in)
			require.NoError(t, err)
			assert.InDeltaSlice(t, before, after, 1e-12)
		})
	}
}

func TestStretchLayout(t *testing.T) {
	net := goldenNet(t)
	require.NoError(t, net.StretchLayer(1, 2, 1))
	assert.Equal(t, []int{1, 4, 1}, net.LayerCounts())
	assert.Equal(t, []float64{0.4, 0.4, -0.6, -0.6}, mat.Col(nil, 0, net.Weights(0)))
	assert.Equal(t, []float64{0.1, 0.1, 0.2, 0.2}, toSlice(net.Biases(0)))
	assert.Equal(t, []float64{0.35, 0.35, -0.15, -0.15}, mat.Row(nil, 0, net.Weights(1)))
}

func TestStretchNoOps(t *testing.T) {
	net := randomNet(t, nil, 2, 3, 1)
	require.NoError(t, net.StretchLayer(1, 2, 2)) // 3 % 2 != 0
	require.NoError(t, net.StretchLayer(1, 1, 1))
	require.NoError(t, net.StretchLayer(1, 2, 0))
	assert.Equal(t, []int{2, 3, 1}, net.LayerCounts())
}

func TestMutationKeepsTraining(t *testing.T) {
	net := randomNet(t, Logistic{}, 2, 3, 1)
	trainOnce(t, net)
	require.NoError(t, net.ExpandLayer(1, 2))
	trainOnce(t, net)
	require.NoError(t, net.StretchLayer(1, 2, 5))
	trainOnce(t, net)
	require.NoError(t, net.ShrinkLayer(1, 4))
	trainOnce(t, net)
	requireShapesConsistent(t, net)
	assert.Equal(t, []int{2, 6, 1}, net.LayerCounts())
}
