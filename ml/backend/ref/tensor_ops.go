// tensor_ops.go - Graph-Konstruktoren fuer Eingaben und Struktur-Ops
// Enthält: NewInput, NewWeight, Element, Matmul, Concat, GetOrCreateSplit,
// MergeGConv, Enlarge

package ref

import (
	"github.com/pkg/errors"

	"github.com/jakobhartmann/tensat/ml"
)

// NewInput legt eine Eingabe an. Jeder Aufruf erzeugt eine neue Op.
func (b *Backend) NewInput(dims *ml.Buffer[int]) ml.Tensor {
	b.use()
	shape := dims.Take()
	checkDims(shape)

	return b.newOp(ml.OpInput, ml.OpParams{}, nil, [][]int{shape}).outputs[0]
}

// NewWeight legt ein Gewicht an und uebernimmt Dimensionen und Werte.
func (b *Backend) NewWeight(dims *ml.Buffer[int], data *ml.Buffer[float32]) ml.Tensor {
	b.use()
	shape := dims.Take()
	values := data.Take()
	checkDims(shape)
	if n := numel(shape); int(n) != len(values) {
		panic(errors.Wrapf(ml.ErrShape, "weight %v needs %d values, got %d", shape, int(n), len(values)))
	}

	o := b.newOp(ml.OpWeight, ml.OpParams{}, nil, [][]int{shape})
	b.weights[o.id] = newWeight(b.params.WeightDType, shape, values)
	return o.outputs[0]
}

// Element erzeugt eine element-weise Op (OpEwAdd oder OpEwMul)
func (b *Backend) Element(typ ml.OpType, x, y ml.Tensor) ml.Tensor {
	b.use()
	if typ != ml.OpEwAdd && typ != ml.OpEwMul {
		panic(errors.Errorf("ref: %s is not an element-wise op", typ))
	}

	tx, ty := b.tensorOf(x), b.tensorOf(y)
	shape := broadcastShape(tx.shape, ty.shape)
	return b.getOrCreate(typ, ml.OpParams{}, []*tensor{tx, ty}, [][]int{shape}, true).outputs[0]
}

// Matmul multipliziert die letzten zwei Dimensionen
func (b *Backend) Matmul(x, y ml.Tensor, act ml.ActiMode) ml.Tensor {
	b.use()
	tx, ty := b.tensorOf(x), b.tensorOf(y)
	shape := matmulShape(tx.shape, ty.shape)
	params := ml.OpParams{Activation: act}
	return b.getOrCreate(ml.OpMatmul, params, []*tensor{tx, ty}, [][]int{shape}, true).outputs[0]
}

// Concat verbindet Eingaben entlang axis
func (b *Backend) Concat(axis int, inputs []ml.Tensor) ml.Tensor {
	b.use()
	ts := make([]*tensor, len(inputs))
	shapes := make([][]int, len(inputs))
	for i, in := range inputs {
		ts[i] = b.tensorOf(in)
		shapes[i] = ts[i].shape
	}

	shape := concatShape(axis, shapes)
	params := ml.OpParams{Axis: axis, Count: len(inputs)}
	return b.getOrCreate(ml.OpConcat, params, ts, [][]int{shape}, true).outputs[0]
}

// GetOrCreateSplit teilt input gleichmaessig in n Teile. Die Eingangskante
// wird nicht registriert.
func (b *Backend) GetOrCreateSplit(input ml.Tensor, axis, n int) ml.Op {
	b.use()
	t := b.tensorOf(input)
	shapes, ok := splitShapes(t.shape, axis, n)
	if !ok {
		b.logger.Debug("rejecting split", "shape", t.shape, "axis", axis, "n", n)
		return ml.InvalidOp
	}

	params := ml.OpParams{Axis: axis, Count: n}
	return b.getOrCreate(ml.OpSplit, params, []*tensor{t}, shapes, false)
}

// MergeGConv fasst count Gruppen einer gruppierten Faltung zusammen
func (b *Backend) MergeGConv(weight ml.Tensor, count int) ml.Tensor {
	b.use()
	t := b.tensorOf(weight)
	shape := mergeGConvShape(t.shape, count)
	return b.getOrCreate(ml.OpMergeGConv, ml.OpParams{Count: count}, []*tensor{t}, [][]int{shape}, true).outputs[0]
}

// Enlarge vergroessert den Kernel von x auf den von ref
func (b *Backend) Enlarge(x, ref ml.Tensor) ml.Tensor {
	b.use()
	tx, tr := b.tensorOf(x), b.tensorOf(ref)
	shape := enlargeShape(tx.shape, tr.shape)
	return b.getOrCreate(ml.OpEnlarge, ml.OpParams{}, []*tensor{tx, tr}, [][]int{shape}, true).outputs[0]
}
