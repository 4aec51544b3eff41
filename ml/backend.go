// backend.go - Backend-Interface und Registrierung fuer Tensor-Graphen
// Dieses Modul definiert das Backend-Interface, dessen Konstruktoren neue Ops
// im Backend-Graphen anlegen, sowie die Backend-Factory-Funktionen.
package ml

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrShape is wrapped by backend panics caused by incompatible operand shapes.
var ErrShape = errors.New("incompatible shapes")

// Backend builds and measures a tensor graph. Every constructor adds an op (or
// returns an existing identical one) and returns its output descriptor.
// Implementations are not safe for concurrent use.
type Backend interface {
	// Close frees the graph. Tensors and ops obtained from the backend must
	// not be used afterwards.
	Close()

	// NewInput takes ownership of dims.
	NewInput(dims *Buffer[int]) Tensor
	// NewWeight takes ownership of dims and data.
	NewWeight(dims *Buffer[int], data *Buffer[float32]) Tensor

	Element(op OpType, a, b Tensor) Tensor
	Matmul(a, b Tensor, act ActiMode) Tensor
	Conv2D(input, weight Tensor, strideH, strideW int, pad PaddingMode, act ActiMode) Tensor

	Relu(t Tensor, inPlace bool) Tensor
	Tanh(t Tensor, inPlace bool) Tensor
	Sigmoid(t Tensor, inPlace bool) Tensor

	Pool2DAvg(input Tensor, kernelH, kernelW, strideH, strideW int, pad PaddingMode, act ActiMode) Tensor
	Pool2DMax(input Tensor, kernelH, kernelW, strideH, strideW int, pad PaddingMode, act ActiMode) Tensor

	Concat(axis int, inputs []Tensor) Tensor
	MergeGConv(weight Tensor, count int) Tensor
	Enlarge(t, ref Tensor) Tensor

	// GetOrCreateSplit splits input into n outputs along axis. It does not
	// register the input edge; callers use AddEdge. Returns InvalidOp if the
	// split is not possible.
	GetOrCreateSplit(input Tensor, axis, n int) Op
	AddEdge(src, dst Op, srcIdx, dstIdx int)

	// Ops lists the ops of the graph in creation order
	Ops() []Op
	// InEdges lists the edges ending at op
	InEdges(op Op) []Edge
	// TotalCost sums the cost of all ops in the graph
	TotalCost() float64
}

// CostCache stores op costs across sessions.
type CostCache interface {
	Get(key string) (float64, bool)
	Put(key string, cost float64)
}

// BackendParams controls how a backend builds and measures graphs
type BackendParams struct {
	// WeightDType is the storage type for weight values
	WeightDType DType

	// CostCache, if set, is consulted before estimating an op's cost
	CostCache CostCache

	// PeakFLOPS and Bandwidth (bytes/s) parameterize cost estimates. Zero
	// selects backend defaults.
	PeakFLOPS float64
	Bandwidth float64

	Logger *slog.Logger
}

var backends = make(map[string]func(BackendParams) (Backend, error))

// RegisterBackend registers a backend factory function.
func RegisterBackend(name string, f func(BackendParams) (Backend, error)) {
	if _, ok := backends[name]; ok {
		panic("backend: backend already registered")
	}

	backends[name] = f
}

// NewBackend creates a new graph instance of the named backend.
func NewBackend(name string, params BackendParams) (Backend, error) {
	if backend, ok := backends[name]; ok {
		return backend(params)
	}

	return nil, fmt.Errorf("unsupported backend %q", name)
}
