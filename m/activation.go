package m

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Activator is the elementwise nonlinearity applied to every neuron layer after the input.
// layer is the neuron layer index (1..L) the values belong to.
type Activator interface {
	Activate(layer int, z mat.Vector) *mat.VecDense
	Derive(layer int, z mat.Vector) *mat.VecDense
	fmt.Stringer
}

var ActivatorLookup = map[string]Activator{
	"raw":      Raw{},
	"logistic": Logistic{},
	"sech":     Sech{},
	"tanh":     Tanh{},
}

// ParseActivator resolves an activator by name. "sigmoid" is accepted for logistic.
// A per-layer choice is written as the default followed by layer:name pairs, the
// form PerLayer.String produces, e.g. "logistic,2:raw".
func ParseActivator(name string) (Activator, error) {
	parts := strings.Split(name, ",")
	def, err := lookupActivator(parts[0])
	if err != nil {
		return nil, err
	}
	if len(parts) == 1 {
		return def, nil
	}
	p := PerLayer{Default: def, Layers: make(map[int]Activator, len(parts)-1)}
	for _, part := range parts[1:] {
		idx, n, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("activator %q: want layer:name, got %q", name, part)
		}
		layer, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || layer < 1 {
			return nil, fmt.Errorf("activator %q: bad layer %q", name, idx)
		}
		a, err := lookupActivator(n)
		if err != nil {
			return nil, err
		}
		p.Layers[layer] = a
	}
	return p, nil
}

func lookupActivator(name string) (Activator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "sigmoid" {
		name = "logistic"
	}
	act, ok := ActivatorLookup[name]
	if !ok {
		names := make([]string, 0, len(ActivatorLookup))
		for n := range ActivatorLookup {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown activator %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return act, nil
}

func mapVec(fn func(float64) float64, z mat.Vector) *mat.VecDense {
	n := z.Len()
	o := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		o.SetVec(i, fn(z.AtVec(i)))
	}
	return o
}

// Raw is the identity. Its derivative is always 1.
type Raw struct{}

func (Raw) Activate(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(func(x float64) float64 { return x }, z)
}

func (Raw) Derive(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(func(float64) float64 { return 1 }, z)
}

func (Raw) String() string { return "raw" }

// Logistic squeezes (-inf, inf) into (0, 1).
type Logistic struct{}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func (Logistic) Activate(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(logistic, z)
}

func (Logistic) Derive(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(func(x float64) float64 {
		s := logistic(x)
		return s * (1 - s)
	}, z)
}

func (Logistic) String() string { return "logistic" }

// Sech is the bell shaped hyperbolic secant, sech(0) = 1.
type Sech struct{}

func sech(x float64) float64 {
	return 1 / math.Cosh(x)
}

func (Sech) Activate(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(sech, z)
}

func (Sech) Derive(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(func(x float64) float64 { return -sech(x) * math.Tanh(x) }, z)
}

func (Sech) String() string { return "sech" }

type Tanh struct{}

func (Tanh) Activate(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(math.Tanh, z)
}

func (Tanh) Derive(_ int, z mat.Vector) *mat.VecDense {
	return mapVec(func(x float64) float64 {
		s := sech(x)
		return s * s
	}, z)
}

func (Tanh) String() string { return "tanh" }

// PerLayer picks an activator per neuron layer, falling back to Default, or to
// Logistic when Default is nil.
// A common use is a Raw output layer on top of Logistic hidden layers.
type PerLayer struct {
	Default Activator
	Layers  map[int]Activator
}

func (p PerLayer) pick(layer int) Activator {
	if a, ok := p.Layers[layer]; ok {
		return a
	}
	return p.fallback()
}

func (p PerLayer) fallback() Activator {
	if p.Default == nil {
		return Logistic{}
	}
	return p.Default
}

func (p PerLayer) Activate(layer int, z mat.Vector) *mat.VecDense {
	return p.pick(layer).Activate(layer, z)
}

func (p PerLayer) Derive(layer int, z mat.Vector) *mat.VecDense {
	return p.pick(layer).Derive(layer, z)
}

func (p PerLayer) String() string {
	if len(p.Layers) == 0 {
		return p.fallback().String()
	}
	idx := make([]int, 0, len(p.Layers))
	for l := range p.Layers {
		idx = append(idx, l)
	}
	sort.Ints(idx)
	parts := []string{p.fallback().String()}
	for _, l := range idx {
		parts = append(parts, fmt.Sprintf("%d:%s", l, p.Layers[l]))
	}
	return strings.Join(parts, ",")
}
