package m

import "fmt"

// Topology edits act on neuron layer `layer` in [0, L]: the synapse feeding it
// (layer-1) has its rows edited and the synapse it feeds (layer) its columns.
// Momentum buffers receive the same surgery. New matrices are built first and
// swapped in together, so no partially resized state is ever visible.

func (net *Network) checkLayer(layer int) error {
	if layer < 0 || layer > net.lastIndex() {
		return &ConstructionError{Field: "layer", Value: layer,
			Reason: fmt.Sprintf("must be in [0, %d]", net.lastIndex())}
	}
	return nil
}

func (net *Network) reshape(layer, width int, inbound, outbound func(Synapse) Synapse) {
	edit := func(ss []Synapse) []Synapse {
		out := make([]Synapse, len(ss))
		copy(out, ss)
		if layer > 0 {
			out[layer-1] = inbound(ss[layer-1])
		}
		if layer < len(ss) {
			out[layer] = outbound(ss[layer])
		}
		return out
	}
	synapses := edit(net.synapses)
	velocity := edit(net.opt.velocity)

	net.synapses = synapses
	net.opt.velocity = velocity
	net.layerCounts[layer] = width
}

// ExpandLayer inserts delta inert neurons at the start of the layer. Their
// inbound weights, biases and outbound weights are zero, so outputs for
// existing connections are unchanged.
func (net *Network) ExpandLayer(layer, delta int) error {
	if err := net.checkLayer(layer); err != nil {
		return err
	}
	if delta < 1 {
		return nil
	}
	net.reshape(layer, net.layerCounts[layer]+delta,
		func(s Synapse) Synapse { return s.insertOutputs(0, delta) },
		func(s Synapse) Synapse { return s.insertInputs(0, delta) })
	return nil
}

// ShrinkLayer removes the first delta neurons of the layer with their rows and
// columns. It undoes ExpandLayer(layer, delta).
func (net *Network) ShrinkLayer(layer, delta int) error {
	if err := net.checkLayer(layer); err != nil {
		return err
	}
	if delta < 1 {
		return nil
	}
	if delta >= net.layerCounts[layer] {
		return &ConstructionError{Field: "delta", Value: delta,
			Reason: fmt.Sprintf("layer %d has %d neurons, at least one must remain", layer, net.layerCounts[layer])}
	}
	net.reshape(layer, net.layerCounts[layer]-delta,
		func(s Synapse) Synapse { return s.deleteOutputs(0, delta) },
		func(s Synapse) Synapse { return s.deleteInputs(0, delta) })
	return nil
}

// StretchLayer replicates every group of groupWidth neurons factor times.
// Copies share inbound weights and biases; outbound weights are split evenly
// between the copies, so the network computes the same function afterwards.
// It is a no-op when factor < 2 or groupWidth does not divide the layer width.
func (net *Network) StretchLayer(layer, factor, groupWidth int) error {
	if err := net.checkLayer(layer); err != nil {
		return err
	}
	if factor < 2 || groupWidth < 1 || net.layerCounts[layer]%groupWidth != 0 {
		return nil
	}
	scale := 1 / float64(factor)
	net.reshape(layer, net.layerCounts[layer]*factor,
		func(s Synapse) Synapse { return s.stretchOutputs(groupWidth, factor) },
		func(s Synapse) Synapse { return s.stretchInputs(groupWidth, factor, scale) })
	return nil
}
