package m

import "math"

// Input squashing helpers. Each returns a new slice.

func NormalizeRaw(values []float64) []float64 {
	return append([]float64(nil), values...)
}

// NormalizeLogistic maps every value into (0, 1).
func NormalizeLogistic(values []float64) []float64 {
	return normalizeWith(logistic, values)
}

// NormalizeSech maps every value into (0, 1] with a peak at zero.
func NormalizeSech(values []float64) []float64 {
	return normalizeWith(sech, values)
}

// NormalizeTanh maps every value into (-1, 1).
func NormalizeTanh(values []float64) []float64 {
	return normalizeWith(math.Tanh, values)
}

func normalizeWith(fn func(float64) float64, values []float64) []float64 {
	out := make([]float64, len(values))
	for i, x := range values {
		out[i] = fn(x)
	}
	return out
}

// Normalizer returns the squashing helper matching an activator name. For a
// per-layer name the first hidden layer's activator decides.
func Normalizer(name string) (func([]float64) []float64, error) {
	act, err := ParseActivator(name)
	if err != nil {
		return nil, err
	}
	if pl, ok := act.(PerLayer); ok {
		act = pl.pick(1)
	}
	switch act.(type) {
	case Logistic:
		return NormalizeLogistic, nil
	case Sech:
		return NormalizeSech, nil
	case Tanh:
		return NormalizeTanh, nil
	}
	return NormalizeRaw, nil
}
