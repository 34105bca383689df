package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"brainlib/m"
	"gonum.org/v1/gonum/mat"
)

// WeightsVersion tags JSON exports.
const WeightsVersion = "1.0"

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights is a JSON view of a network, for tools that do not read .brain files.
type ModelWeights struct {
	Version     string        `json:"version"`
	Name        string        `json:"name,omitempty"`
	Activator   string        `json:"activator,omitempty"`
	LayerCounts []int         `json:"layerCounts"`
	Layers      []LayerWeight `json:"layers"`
}

// LayerWeight contains weights and bias for a layer
type LayerWeight struct {
	Weight *WeightData `json:"weight"`
	Bias   *WeightData `json:"bias"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// DenseToWeightData flattens a matrix row-major.
func DenseToWeightData(name string, d *mat.Dense) *WeightData {
	r, c := d.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, d.RawRowView(i)...)
	}
	return &WeightData{Name: name, Shape: []int{r, c}, Data: data}
}

// VecToWeightData copies a vector.
func VecToWeightData(name string, v *mat.VecDense) *WeightData {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return &WeightData{Name: name, Shape: []int{v.Len()}, Data: data}
}

// WeightDataToDense rebuilds a matrix, checking the declared shape.
func WeightDataToDense(wd *WeightData) (*mat.Dense, error) {
	if wd == nil || len(wd.Shape) != 2 || wd.Shape[0] < 1 || wd.Shape[1] < 1 {
		return nil, fmt.Errorf("weight data: want a 2-d shape")
	}
	if len(wd.Data) != wd.Shape[0]*wd.Shape[1] {
		return nil, fmt.Errorf("weight data %s: shape %v holds %d values, got %d",
			wd.Name, wd.Shape, wd.Shape[0]*wd.Shape[1], len(wd.Data))
	}
	return mat.NewDense(wd.Shape[0], wd.Shape[1], append([]float64(nil), wd.Data...)), nil
}

// WeightDataToVec rebuilds a vector, checking the declared shape.
func WeightDataToVec(wd *WeightData) (*mat.VecDense, error) {
	if wd == nil || len(wd.Shape) != 1 || wd.Shape[0] < 1 {
		return nil, fmt.Errorf("weight data: want a 1-d shape")
	}
	if len(wd.Data) != wd.Shape[0] {
		return nil, fmt.Errorf("weight data %s: shape %v, got %d values", wd.Name, wd.Shape, len(wd.Data))
	}
	return mat.NewVecDense(wd.Shape[0], append([]float64(nil), wd.Data...)), nil
}

// ExportWeights captures every synapse layer of net.
func ExportWeights(net *m.Network) *ModelWeights {
	mw := &ModelWeights{
		Version:     WeightsVersion,
		Name:        net.Name(),
		Activator:   net.Activator().String(),
		LayerCounts: net.LayerCounts(),
		Layers:      make([]LayerWeight, net.SynapseLayers()),
	}
	for l := range mw.Layers {
		mw.Layers[l] = LayerWeight{
			Weight: DenseToWeightData(fmt.Sprintf("layer%d_weight", l), net.Weights(l)),
			Bias:   VecToWeightData(fmt.Sprintf("layer%d_bias", l), net.Biases(l)),
		}
	}
	return mw
}

// ImportWeights builds a network from an export. An empty activator name selects
// the network default; an unrecognised one is an error.
func ImportWeights(mw *ModelWeights) (*m.Network, error) {
	if mw.Version != WeightsVersion {
		return nil, fmt.Errorf("unsupported weights version %q", mw.Version)
	}
	weights := make([]*mat.Dense, len(mw.Layers))
	biases := make([]*mat.VecDense, len(mw.Layers))
	for l, lw := range mw.Layers {
		w, err := WeightDataToDense(lw.Weight)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		b, err := WeightDataToVec(lw.Bias)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		weights[l], biases[l] = w, b
	}
	var act m.Activator
	if mw.Activator != "" {
		a, err := m.ParseActivator(mw.Activator)
		if err != nil {
			return nil, err
		}
		act = a
	}
	net, err := m.NewFromSynapses(mw.LayerCounts, weights, biases, act)
	if err != nil {
		return nil, err
	}
	net.SetName(mw.Name)
	return net, nil
}
