// cost.go - Kostenschaetzung fuer Ops
// Kosten in Millisekunden: flops/PeakFLOPS + bytes/Bandwidth.
// Ergebnisse werden ueber ml.CostCache zwischen Sitzungen geteilt.

package ref

import (
	"github.com/cnf/structhash"
	"gonum.org/v1/gonum/floats"

	"github.com/jakobhartmann/tensat/ml"
)

const (
	defaultPeakFLOPS = 1e12
	defaultBandwidth = 1e11

	bytesPerElement = 4
)

// costKey beschreibt eine Op unabhaengig von ihrer Position im Graphen
type costKey struct {
	Type   int
	Params ml.OpParams
	Shapes [][]int
}

// measure liefert die Kosten einer neuen Op, bevorzugt aus dem Cache
func (b *Backend) measure(o *op) float64 {
	if o.typ == ml.OpInput || o.typ == ml.OpWeight {
		return 0
	}

	k := costKey{Type: int(o.typ), Params: o.params}
	for _, in := range o.inputs {
		k.Shapes = append(k.Shapes, in.shape)
	}

	key, err := structhash.Hash(k, 1)
	if err != nil || b.params.CostCache == nil {
		return b.estimate(o)
	}

	if cost, ok := b.params.CostCache.Get(key); ok {
		return cost
	}

	cost := b.estimate(o)
	b.params.CostCache.Put(key, cost)
	return cost
}

func (b *Backend) estimate(o *op) float64 {
	sizes := make([]float64, 0, len(o.inputs)+len(o.outputs))
	for _, in := range o.inputs {
		sizes = append(sizes, numel(in.shape))
	}
	for _, out := range o.outputs {
		sizes = append(sizes, numel(out.shape))
	}

	bytes := floats.Sum(sizes) * bytesPerElement
	return 1e3 * (flops(o)/b.params.PeakFLOPS + bytes/b.params.Bandwidth)
}

func flops(o *op) float64 {
	out := numel(o.outputs[0].shape)
	switch o.typ {
	case ml.OpEwAdd, ml.OpEwMul, ml.OpRelu, ml.OpTanh, ml.OpSigmoid:
		return out
	case ml.OpMatmul:
		a := o.inputs[0].shape
		return 2 * out * float64(a[len(a)-1])
	case ml.OpConv2D:
		w := o.inputs[1].shape
		return 2 * out * float64(w[0]*w[1]*w[2])
	case ml.OpPool2DAvg, ml.OpPool2DMax:
		return out * float64(o.params.KernelH*o.params.KernelW)
	default:
		return 0
	}
}

func numel(shape []int) float64 {
	dims := make([]float64, len(shape))
	for i, d := range shape {
		dims[i] = float64(d)
	}
	return floats.Prod(dims)
}
