// node.go - Node: ein Operator mit Klassen-Referenzen
// Enthält: Node struct, New, typisierte Konstruktoren, Children/MapChildren
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakobhartmann/tensat/egraph"
)

// Node is one operator application. Num and Sym hold the payload of the leaf
// kinds; Args holds the operand classes of all other kinds. Node is a
// comparable value and is hash-consed as is.
type Node struct {
	Op   Op
	Args [MaxArity]egraph.ID
	Num  int
	Sym  string
}

// New builds a node of op. It panics if the number of operands does not match
// the arity of op or op is a leaf kind.
func New(op Op, args ...egraph.ID) Node {
	if op == OpInvalid || op.IsLeaf() {
		panic(fmt.Sprintf("model: %s cannot be built from operands", op))
	}
	if len(args) != op.Arity() {
		panic(fmt.Sprintf("model: %s takes %d operands, got %d", op, op.Arity(), len(args)))
	}

	n := Node{Op: op}
	copy(n.Args[:], args)
	return n
}

// Num is an integer literal.
func Num(v int) Node {
	return Node{Op: OpNum, Num: v}
}

// Var is a symbol, e.g. "x@1_4_32_32".
func Var(s string) Node {
	return Node{Op: OpVar, Sym: s}
}

func Input(name egraph.ID) Node { return New(OpInput, name) }
func Weight(name egraph.ID) Node { return New(OpWeight, name) }
func Ewadd(a, b egraph.ID) Node { return New(OpEwadd, a, b) }
func Ewmul(a, b egraph.ID) Node { return New(OpEwmul, a, b) }
func Smul(a, b egraph.ID) Node { return New(OpSmul, a, b) }
func Transpose(t egraph.ID) Node { return New(OpTranspose, t) }
func Relu(t egraph.ID) Node { return New(OpRelu, t) }
func Tanh(t egraph.ID) Node { return New(OpTanh, t) }
func Sigmoid(t egraph.ID) Node { return New(OpSigmoid, t) }
func Enlarge(t, ref egraph.ID) Node { return New(OpEnlarge, t, ref) }
func Split(axis, t egraph.ID) Node { return New(OpSplit, axis, t) }
func Split0(split egraph.ID) Node { return New(OpSplit0, split) }
func Split1(split egraph.ID) Node { return New(OpSplit1, split) }
func Merge(w, count egraph.ID) Node { return New(OpMerge, w, count) }
func Cpool(kh, kw egraph.ID) Node { return New(OpCpool, kh, kw) }
func Iconv(kh, kw egraph.ID) Node { return New(OpIconv, kh, kw) }
func Imatmul() Node { return New(OpImatmul) }
func Iewmul() Node { return New(OpIewmul) }
func Matmul(act, a, b egraph.ID) Node { return New(OpMatmul, act, a, b) }

// Conv2d convolves input with weight.
func Conv2d(strideH, strideW, padding, activation, input, weight egraph.ID) Node {
	return New(OpConv2d, strideH, strideW, padding, activation, input, weight)
}

// Poolavg is average pooling over input.
func Poolavg(input, kernelH, kernelW, strideH, strideW, padding, activation egraph.ID) Node {
	return New(OpPoolavg, input, kernelH, kernelW, strideH, strideW, padding, activation)
}

// Poolmax is max pooling over input.
func Poolmax(input, kernelH, kernelW, strideH, strideW, padding, activation egraph.ID) Node {
	return New(OpPoolmax, input, kernelH, kernelW, strideH, strideW, padding, activation)
}

// Concat joins lhs and rhs along axis. rank is only used for typing.
func Concat(axis, rank, lhs, rhs egraph.ID) Node {
	return New(OpConcat, axis, rank, lhs, rhs)
}

// Children returns the operand classes of n.
func (n Node) Children() []egraph.ID {
	return n.Args[:n.Op.Arity()]
}

// MapChildren returns a copy of n with every operand replaced by f(operand).
func (n Node) MapChildren(f func(egraph.ID) egraph.ID) Node {
	for i := range n.Op.Arity() {
		n.Args[i] = f(n.Args[i])
	}
	return n
}

// Operand returns the operand class at position i together with its name
// and expected kind.
func (n Node) Operand(i int) (egraph.ID, Operand) {
	return n.Args[i], n.Op.Signature().Operands[i]
}

func (n Node) String() string {
	switch n.Op {
	case OpNum:
		return strconv.Itoa(n.Num)
	case OpVar:
		return n.Sym
	}

	if n.Op.Arity() == 0 {
		return n.Op.String()
	}

	var sb strings.Builder
	sb.WriteString("(" + n.Op.String())
	for _, c := range n.Children() {
		sb.WriteString(" " + c.String())
	}
	sb.WriteString(")")
	return sb.String()
}
