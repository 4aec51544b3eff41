// tensor.go - Op- und Tensor-Strukturen des Referenz-Backends
// Enthält: op/tensor structs, LogValue, getOrCreate (Deduplizierung)

package ref

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cnf/structhash"
	"github.com/gomlx/exceptions"

	"github.com/jakobhartmann/tensat/logutil"
	"github.com/jakobhartmann/tensat/ml"
)

// op ist ein Knoten im Graphen
type op struct {
	b       *Backend
	id      int
	typ     ml.OpType
	params  ml.OpParams
	inputs  []*tensor
	outputs []*tensor
	cost    float64
}

func (o *op) ID() int { return o.id }
func (o *op) Type() ml.OpType { return o.typ }
func (o *op) Params() ml.OpParams { return o.params }
func (o *op) Cost() float64 { return o.cost }
func (o *op) Valid() bool { return true }

func (o *op) Outputs() []ml.Tensor {
	ts := make([]ml.Tensor, len(o.outputs))
	for i, t := range o.outputs {
		ts[i] = t
	}
	return ts
}

func (o *op) Output(i int) ml.Tensor {
	return o.outputs[i]
}

func (o *op) String() string {
	return fmt.Sprintf("%s#%d", o.typ, o.id)
}

// LogValue gibt die Op als slog-Wert zurück
func (o *op) LogValue() slog.Value {
	shapes := make([][]int, len(o.outputs))
	for i, t := range o.outputs {
		shapes[i] = t.shape
	}
	return slog.GroupValue(
		slog.Int("id", o.id),
		slog.String("type", o.typ.String()),
		slog.Any("outputs", shapes),
		slog.Float64("cost", o.cost),
	)
}

// tensor ist ein Ausgabe-Deskriptor einer Op
type tensor struct {
	op    *op
	idx   int
	shape []int
}

func (t *tensor) Dim(n int) int { return t.shape[n] }
func (t *tensor) Rank() int { return len(t.shape) }
func (t *tensor) Shape() []int { return slices.Clone(t.shape) }
func (t *tensor) Op() ml.Op { return t.op }
func (t *tensor) Index() int { return t.idx }
func (t *tensor) String() string { return fmt.Sprintf("%s:%d%v", t.op, t.idx, t.shape) }

// inputKey identifiziert einen Operanden ueber seine Op und den Ausgabe-Index
type inputKey struct {
	Op  int
	Idx int
}

// opKey ist der strukturelle Schluessel fuer die Deduplizierung
type opKey struct {
	Type   int
	Params ml.OpParams
	Inputs []inputKey
}

func (b *Backend) key(typ ml.OpType, params ml.OpParams, inputs []*tensor) string {
	k := opKey{Type: int(typ), Params: params}
	for _, in := range inputs {
		k.Inputs = append(k.Inputs, inputKey{Op: in.op.id, Idx: in.idx})
	}

	h, err := structhash.Hash(k, 1)
	if err != nil {
		exceptions.Panicf("ref: hashing op key: %v", err)
	}
	return h
}

// getOrCreate gibt eine identische, bereits erzeugte Op zurueck oder legt
// eine neue mit den gegebenen Ausgabe-Shapes an. Mit edges werden die
// Eingangskanten registriert.
func (b *Backend) getOrCreate(typ ml.OpType, params ml.OpParams, inputs []*tensor, shapes [][]int, edges bool) *op {
	key := b.key(typ, params, inputs)
	if o, ok := b.cache[key]; ok {
		b.logger.Log(context.TODO(), logutil.LevelTrace, "reusing op", "op", o)
		return o
	}

	o := b.newOp(typ, params, inputs, shapes)
	b.cache[key] = o
	if edges {
		for i, in := range inputs {
			b.AddEdge(in.op, o, in.idx, i)
		}
	}
	return o
}

// newOp legt eine Op ohne Deduplizierung an und misst ihre Kosten
func (b *Backend) newOp(typ ml.OpType, params ml.OpParams, inputs []*tensor, shapes [][]int) *op {
	o := &op{
		b:      b,
		id:     len(b.ops),
		typ:    typ,
		params: params,
		inputs: inputs,
	}
	for i, shape := range shapes {
		o.outputs = append(o.outputs, &tensor{op: o, idx: i, shape: shape})
	}
	o.cost = b.measure(o)
	b.ops = append(b.ops, o)

	b.logger.Log(context.TODO(), logutil.LevelTrace, "new op", "op", o)
	return o
}
