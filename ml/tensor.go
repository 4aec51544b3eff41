// tensor.go - Tensor- und Op-Handles des Backends
// Dieses Modul definiert die Schnittstellen, ueber die der Kern auf
// backend-eigene Tensoren und Ops verweist, ohne sie zu dereferenzieren.
package ml

import "fmt"

// Tensor is an output descriptor of a backend op. It is owned by the backend
// that produced it and only valid while that backend is open.
type Tensor interface {
	Dim(n int) int
	Rank() int
	Shape() []int

	// Op returns the op producing this tensor.
	Op() Op
	// Index is the output slot of this tensor on its op.
	Index() int
}

// Op is a node in the backend graph.
type Op interface {
	ID() int
	Type() OpType
	Params() OpParams

	Outputs() []Tensor
	Output(i int) Tensor

	// Cost is the measured or estimated runtime of the op.
	Cost() float64

	// Valid reports whether the op was created successfully. Constructors
	// that can fail return InvalidOp instead of an error.
	Valid() bool
}

// OpParams holds the non-tensor arguments an op was created with. Fields that
// do not apply to an op type are zero.
type OpParams struct {
	KernelH, KernelW int
	StrideH, StrideW int
	Padding          PaddingMode
	Activation       ActiMode
	Axis             int
	Count            int
	InPlace          bool
}

// Edge connects output SrcIdx of Src to input DstIdx of Dst.
type Edge struct {
	Src, Dst       Op
	SrcIdx, DstIdx int
}

func (e Edge) String() string {
	return fmt.Sprintf("%s#%d:%d -> %s#%d:%d", e.Src.Type(), e.Src.ID(), e.SrcIdx, e.Dst.Type(), e.Dst.ID(), e.DstIdx)
}

type invalidOp struct{}

func (invalidOp) ID() int { return -1 }
func (invalidOp) Type() OpType { return OpInvalid }
func (invalidOp) Params() OpParams { return OpParams{} }
func (invalidOp) Outputs() []Tensor { return nil }
func (invalidOp) Output(int) Tensor { return nil }
func (invalidOp) Cost() float64 { return 0 }
func (invalidOp) Valid() bool { return false }
func (invalidOp) String() string { return "invalid op" }

// InvalidOp is returned by constructors that reject their arguments.
var InvalidOp Op = invalidOp{}
