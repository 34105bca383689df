package utils

import (
	"path/filepath"
	"testing"

	"brainlib/m"
	"gonum.org/v1/gonum/mat"
)

func TestDenseToWeightData(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{0, 0.5, 1, 1.5, 2, 2.5})

	wd := DenseToWeightData("test_weight", d)

	if wd.Name != "test_weight" {
		t.Errorf("Name = %s, want test_weight", wd.Name)
	}
	if len(wd.Shape) != 2 || wd.Shape[0] != 2 || wd.Shape[1] != 3 {
		t.Errorf("Shape = %v, want [2, 3]", wd.Shape)
	}
	if len(wd.Data) != 6 {
		t.Fatalf("Data length = %d, want 6", len(wd.Data))
	}
	for i, v := range wd.Data {
		expected := float64(i) * 0.5
		if v != expected {
			t.Errorf("Data[%d] = %f, want %f", i, v, expected)
		}
	}
}

func TestWeightDataToDense(t *testing.T) {
	wd := &WeightData{
		Name:  "test",
		Shape: []int{3, 4},
		Data:  make([]float64, 12),
	}
	for i := range wd.Data {
		wd.Data[i] = float64(i)
	}

	d, err := WeightDataToDense(wd)
	if err != nil {
		t.Fatalf("WeightDataToDense failed: %v", err)
	}
	r, c := d.Dims()
	if r != 3 || c != 4 {
		t.Errorf("Dims = %dx%d, want 3x4", r, c)
	}
	if got := d.At(2, 1); got != 9 {
		t.Errorf("At(2,1) = %f, want 9", got)
	}

	wd.Data = wd.Data[:11]
	if _, err := WeightDataToDense(wd); err == nil {
		t.Error("expected error for short data")
	}
}

func TestExportImportWeights(t *testing.T) {
	net, err := m.NewNetwork(m.Config{
		Name:               "roundtrip",
		InputNum:           3,
		HiddenLayerNeurons: []int{4},
		OutputNum:          2,
		Activator:          m.Tanh{},
	})
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}

	weightsFile := filepath.Join(t.TempDir(), "test_weights.json")
	if err := SaveWeights(weightsFile, ExportWeights(net)); err != nil {
		t.Fatalf("SaveWeights failed: %v", err)
	}
	loaded, err := LoadWeights(weightsFile)
	if err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}
	if loaded.Version != WeightsVersion {
		t.Errorf("Version = %s, want %s", loaded.Version, WeightsVersion)
	}
	if len(loaded.Layers) != 2 {
		t.Fatalf("Layers = %d, want 2", len(loaded.Layers))
	}

	back, err := ImportWeights(loaded)
	if err != nil {
		t.Fatalf("ImportWeights failed: %v", err)
	}
	if back.Name() != "roundtrip" {
		t.Errorf("Name = %s, want roundtrip", back.Name())
	}
	if back.Activator().String() != "tanh" {
		t.Errorf("Activator = %s, want tanh", back.Activator())
	}
	for l := 0; l < net.SynapseLayers(); l++ {
		if !mat.Equal(net.Weights(l), back.Weights(l)) {
			t.Errorf("layer %d weights differ", l)
		}
		if !mat.Equal(net.Biases(l), back.Biases(l)) {
			t.Errorf("layer %d biases differ", l)
		}
	}
}

func TestImportWeightsRejectsVersion(t *testing.T) {
	if _, err := ImportWeights(&ModelWeights{Version: "0.1"}); err == nil {
		t.Fatal("expected version error")
	}
}

func TestExportImportPerLayerActivator(t *testing.T) {
	act := m.PerLayer{Default: m.Logistic{}, Layers: map[int]m.Activator{2: m.Raw{}}}
	net, err := m.NewNetwork(m.Config{
		InputNum:           1,
		HiddenLayerNeurons: []int{3},
		OutputNum:          1,
		Activator:          act,
	})
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}

	imported, err := ImportWeights(ExportWeights(net))
	if err != nil {
		t.Fatalf("ImportWeights failed: %v", err)
	}
	if got, want := imported.Activator().String(), act.String(); got != want {
		t.Errorf("Activator = %s, want %s", got, want)
	}
	want, _ := net.Evaluate([]float64{0.3})
	got, _ := imported.Evaluate([]float64{0.3})
	if got[0] != want[0] {
		t.Errorf("Evaluate = %v, want %v", got, want)
	}
}

func TestImportWeightsRejectsUnknownActivator(t *testing.T) {
	net, err := m.NewNetwork(m.Config{InputNum: 1, HiddenLayerNeurons: []int{2}, OutputNum: 1})
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	mw := ExportWeights(net)
	mw.Activator = "relu"
	if _, err := ImportWeights(mw); err == nil {
		t.Error("expected error for unknown activator")
	}
}
