// make.go - Metadaten fuer neu eingefuegte Knoten
// Enthält: Make, Operanden-Pruefung, Uebersetzung je Knotenart
package analysis

import (
	"context"
	"time"

	"github.com/jakobhartmann/tensat/egraph"
	"github.com/jakobhartmann/tensat/logutil"
	"github.com/jakobhartmann/tensat/ml"
	"github.com/jakobhartmann/tensat/model"
)

type maker func(a *TensorAnalysis, n model.Node, args []Metadata) Metadata

// makers translates every implemented node kind. Kinds missing here are part
// of the vocabulary only.
var makers = map[model.Op]maker{
	model.OpNum:     func(_ *TensorAnalysis, n model.Node, _ []Metadata) Metadata { return ScalarData(n.Num) },
	model.OpVar:     func(_ *TensorAnalysis, n model.Node, _ []Metadata) Metadata { return NameData(n.Sym) },
	model.OpInput:   (*TensorAnalysis).makeInput,
	model.OpWeight:  (*TensorAnalysis).makeWeight,
	model.OpEwadd:   (*TensorAnalysis).makeElement,
	model.OpEwmul:   (*TensorAnalysis).makeElement,
	model.OpMatmul:  (*TensorAnalysis).makeMatmul,
	model.OpConv2d:  (*TensorAnalysis).makeConv2d,
	model.OpRelu:    (*TensorAnalysis).makeActivation,
	model.OpTanh:    (*TensorAnalysis).makeActivation,
	model.OpSigmoid: (*TensorAnalysis).makeActivation,
	model.OpPoolavg: (*TensorAnalysis).makePool,
	model.OpPoolmax: (*TensorAnalysis).makePool,
	model.OpConcat:  (*TensorAnalysis).makeConcat,
	model.OpSplit:   (*TensorAnalysis).makeSplit,
	model.OpSplit0:  (*TensorAnalysis).makeSplitOutput,
	model.OpSplit1:  (*TensorAnalysis).makeSplitOutput,
	model.OpMerge:   (*TensorAnalysis).makeMerge,
	model.OpEnlarge: (*TensorAnalysis).makeEnlarge,
}

// Implemented reports whether Make can translate op.
func Implemented(op model.Op) bool {
	_, ok := makers[op]
	return ok
}

// Make computes the metadata of n from the metadata of its operand classes.
// Tensor kinds add the corresponding op to the backend graph. Make panics
// on grammar violations, malformed names, backend rejections and
// unimplemented kinds.
func (a *TensorAnalysis) Make(classes egraph.Classes[Metadata], n model.Node) Metadata {
	op := n.Op.String()
	makeTotal.WithLabelValues(op).Inc()
	start := time.Now()
	defer func() {
		makeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	sig := n.Op.Signature()
	args := make([]Metadata, len(sig.Operands))
	for i, operand := range sig.Operands {
		args[i] = classes.Data(n.Args[i])
		if args[i].Kind() != operand.Kind {
			fatalf(ErrGrammar, "%s operand %s: want %s, got %s", n.Op, operand.Name, operand.Kind, args[i].Kind())
		}
	}

	f, ok := makers[n.Op]
	if !ok {
		a.logger.Error("no metadata translation for node kind", "op", n.Op)
		fatalf(ErrUnimplemented, "%s", n.Op)
	}

	m := f(a, n, args)
	a.logger.Log(context.TODO(), logutil.LevelTrace, "make", "node", n, "metadata", m)
	return m
}

func (a *TensorAnalysis) newTensor(build func(b ml.Backend) ml.Tensor) Handle {
	var t ml.Tensor
	a.session.with(func(b ml.Backend) { t = build(b) })
	return a.session.wrap(t)
}

func padding(n model.Node, m Metadata) ml.PaddingMode {
	p, err := ml.PaddingModeFromInt(m.Scalar())
	if err != nil {
		fatalf(ErrGrammar, "%s: %v", n.Op, err)
	}
	return p
}

func activation(n model.Node, m Metadata) ml.ActiMode {
	act, err := ml.ActiModeFromInt(m.Scalar())
	if err != nil {
		fatalf(ErrGrammar, "%s: %v", n.Op, err)
	}
	return act
}

func moved[T any](buf *ml.Buffer[T], what string) {
	if !buf.Moved() {
		fatalf(ErrBackendRejected, "backend did not take the %s buffer", what)
	}
}

func (a *TensorAnalysis) makeInput(_ model.Node, args []Metadata) Metadata {
	dims := ml.NewBuffer(parseName(args[0].Name()))
	h := a.newTensor(func(b ml.Backend) ml.Tensor { return b.NewInput(dims) })
	moved(dims, "dimension")
	return TensorData(h)
}

func (a *TensorAnalysis) makeWeight(_ model.Node, args []Metadata) Metadata {
	name := args[0].Name()
	shape := parseName(name)

	values := make([]float32, numel(name, shape))
	for i := range values {
		values[i] = a.rng.Float32()
	}

	dims, data := ml.NewBuffer(shape), ml.NewBuffer(values)
	h := a.newTensor(func(b ml.Backend) ml.Tensor { return b.NewWeight(dims, data) })
	moved(dims, "dimension")
	moved(data, "weight")
	return TensorData(h)
}

func (a *TensorAnalysis) makeElement(n model.Node, args []Metadata) Metadata {
	typ := ml.OpEwAdd
	if n.Op == model.OpEwmul {
		typ = ml.OpEwMul
	}

	lhs, rhs := a.session.unwrap(args[0].Tensor()), a.session.unwrap(args[1].Tensor())
	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor { return b.Element(typ, lhs, rhs) }))
}

func (a *TensorAnalysis) makeMatmul(n model.Node, args []Metadata) Metadata {
	act := activation(n, args[0])
	lhs, rhs := a.session.unwrap(args[1].Tensor()), a.session.unwrap(args[2].Tensor())
	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor { return b.Matmul(lhs, rhs, act) }))
}

func (a *TensorAnalysis) makeConv2d(n model.Node, args []Metadata) Metadata {
	strideH, strideW := args[0].Scalar(), args[1].Scalar()
	pad, act := padding(n, args[2]), activation(n, args[3])
	input, weight := a.session.unwrap(args[4].Tensor()), a.session.unwrap(args[5].Tensor())
	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor {
		return b.Conv2D(input, weight, strideH, strideW, pad, act)
	}))
}

// makeActivation builds relu, tanh and sigmoid in place.
func (a *TensorAnalysis) makeActivation(n model.Node, args []Metadata) Metadata {
	t := a.session.unwrap(args[0].Tensor())
	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor {
		switch n.Op {
		case model.OpRelu:
			return b.Relu(t, true)
		case model.OpTanh:
			return b.Tanh(t, true)
		default:
			return b.Sigmoid(t, true)
		}
	}))
}

func (a *TensorAnalysis) makePool(n model.Node, args []Metadata) Metadata {
	input := a.session.unwrap(args[0].Tensor())
	kernelH, kernelW := args[1].Scalar(), args[2].Scalar()
	strideH, strideW := args[3].Scalar(), args[4].Scalar()
	pad, act := padding(n, args[5]), activation(n, args[6])

	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor {
		if n.Op == model.OpPoolavg {
			return b.Pool2DAvg(input, kernelH, kernelW, strideH, strideW, pad, act)
		}
		return b.Pool2DMax(input, kernelH, kernelW, strideH, strideW, pad, act)
	}))
}

// makeConcat joins exactly two tensors. The rank operand only types the term.
func (a *TensorAnalysis) makeConcat(_ model.Node, args []Metadata) Metadata {
	axis := args[0].Scalar()
	inputs := []ml.Tensor{a.session.unwrap(args[2].Tensor()), a.session.unwrap(args[3].Tensor())}
	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor { return b.Concat(axis, inputs) }))
}

func (a *TensorAnalysis) makeSplit(_ model.Node, args []Metadata) Metadata {
	axis := args[0].Scalar()
	input := a.session.unwrap(args[1].Tensor())

	var split ml.Op
	a.session.with(func(b ml.Backend) {
		split = b.GetOrCreateSplit(input, axis, 2)
		if !split.Valid() {
			fatalf(ErrBackendRejected, "split %v along axis %d", input.Shape(), axis)
		}
		b.AddEdge(input.Op(), split, input.Index(), 0)
	})

	return TensorPairData(a.session.wrap(split.Output(0)), a.session.wrap(split.Output(1)))
}

func (a *TensorAnalysis) makeSplitOutput(n model.Node, args []Metadata) Metadata {
	first, second := args[0].Pair()
	a.session.unwrap(first)
	a.session.unwrap(second)
	if n.Op == model.OpSplit0 {
		return TensorData(first)
	}
	return TensorData(second)
}

func (a *TensorAnalysis) makeMerge(_ model.Node, args []Metadata) Metadata {
	weight := a.session.unwrap(args[0].Tensor())
	count := args[1].Scalar()
	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor { return b.MergeGConv(weight, count) }))
}

func (a *TensorAnalysis) makeEnlarge(_ model.Node, args []Metadata) Metadata {
	t, ref := a.session.unwrap(args[0].Tensor()), a.session.unwrap(args[1].Tensor())
	return TensorData(a.newTensor(func(b ml.Backend) ml.Tensor { return b.Enlarge(t, ref) }))
}
