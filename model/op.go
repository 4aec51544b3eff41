// Package model - Termsprache fuer Tensor-Graphen
//
// Dieses Paket definiert das geschlossene Alphabet, ueber das Regeln und
// die Klassen-Analyse per Pattern-Matching arbeiten:
// - Kind: Art der Metadaten einer Klasse (Name, Scalar, Tensor, TensorPair)
// - Op: Operator-Arten mit fester Signatur (Operanden-Arten + Ergebnis-Art)
// - Node: ein Operator mit Klassen-Referenzen als Argumenten
// - Expr: flacher Ausdruck, Parse und statische Pruefung
package model

import (
	"fmt"
	"strings"
)

// Kind is the kind of metadata a class carries. Expected operand kinds are
// part of the grammar.
type Kind uint8

const (
	KindName Kind = iota
	KindScalar
	KindTensor
	KindTensorPair
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "Name"
	case KindScalar:
		return "Scalar"
	case KindTensor:
		return "Tensor"
	case KindTensorPair:
		return "TensorPair"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MaxArity is the largest number of operands of any op.
const MaxArity = 7

// Op identifies a node kind.
type Op uint8

const (
	OpInvalid Op = iota
	OpNum
	OpVar
	OpInput
	OpWeight
	OpEwadd
	OpEwmul
	OpSmul
	OpTranspose
	OpMatmul
	OpConv2d
	OpEnlarge
	OpRelu
	OpTanh
	OpSigmoid
	OpPoolavg
	OpPoolmax
	OpConcat
	OpSplit0
	OpSplit1
	OpSplit
	OpCpool
	OpIconv
	OpImatmul
	OpIewmul
	OpMerge

	numOps
)

// Operand is a named argument position of an op.
type Operand struct {
	Name string
	Kind Kind
}

// Signature is the fixed operand list and result kind of an op.
type Signature struct {
	Operands []Operand
	Result   Kind
}

func (s Signature) String() string {
	parts := make([]string, len(s.Operands))
	for i, o := range s.Operands {
		parts[i] = o.Name + ":" + o.Kind.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + s.Result.String()
}

type opInfo struct {
	token string
	sig   Signature
}

func name(n string) Operand { return Operand{n, KindName} }
func scalar(n string) Operand { return Operand{n, KindScalar} }
func tensor(n string) Operand { return Operand{n, KindTensor} }

func sig(result Kind, operands ...Operand) Signature {
	return Signature{Operands: operands, Result: result}
}

var ops = [numOps]opInfo{
	OpInvalid:   {"<invalid>", sig(KindName)},
	OpNum:       {"<num>", sig(KindScalar)},
	OpVar:       {"<var>", sig(KindName)},
	OpInput:     {"input", sig(KindTensor, name("name"))},
	OpWeight:    {"weight", sig(KindTensor, name("name"))},
	OpEwadd:     {"ewadd", sig(KindTensor, tensor("lhs"), tensor("rhs"))},
	OpEwmul:     {"ewmul", sig(KindTensor, tensor("lhs"), tensor("rhs"))},
	OpSmul:      {"smul", sig(KindTensor, tensor("lhs"), tensor("rhs"))},
	OpTranspose: {"transpose", sig(KindTensor, tensor("input"))},
	OpMatmul:    {"matmul", sig(KindTensor, scalar("activation"), tensor("lhs"), tensor("rhs"))},
	OpConv2d: {"conv2d", sig(KindTensor,
		scalar("strideH"), scalar("strideW"), scalar("padding"), scalar("activation"),
		tensor("input"), tensor("weight"))},
	OpEnlarge: {"enlarge", sig(KindTensor, tensor("target"), tensor("reference"))},
	OpRelu:    {"relu", sig(KindTensor, tensor("input"))},
	OpTanh:    {"tanh", sig(KindTensor, tensor("input"))},
	OpSigmoid: {"sigmoid", sig(KindTensor, tensor("input"))},
	OpPoolavg: {"poolavg", sig(KindTensor,
		tensor("input"), scalar("kernelH"), scalar("kernelW"),
		scalar("strideH"), scalar("strideW"), scalar("padding"), scalar("activation"))},
	OpPoolmax: {"poolmax", sig(KindTensor,
		tensor("input"), scalar("kernelH"), scalar("kernelW"),
		scalar("strideH"), scalar("strideW"), scalar("padding"), scalar("activation"))},
	OpConcat:  {"concat", sig(KindTensor, scalar("axis"), scalar("rank"), tensor("lhs"), tensor("rhs"))},
	OpSplit0:  {"split_0", sig(KindTensor, Operand{"split", KindTensorPair})},
	OpSplit1:  {"split_1", sig(KindTensor, Operand{"split", KindTensorPair})},
	OpSplit:   {"split", sig(KindTensorPair, scalar("axis"), tensor("input"))},
	OpCpool:   {"Cpool", sig(KindTensor, scalar("kernelH"), scalar("kernelW"))},
	OpIconv:   {"Iconv", sig(KindTensor, scalar("kernelH"), scalar("kernelW"))},
	OpImatmul: {"Imatmul", sig(KindTensor)},
	OpIewmul:  {"Iewmul", sig(KindTensor)},
	OpMerge:   {"merge", sig(KindTensor, tensor("weight"), scalar("count"))},
}

var opsByToken = func() map[string]Op {
	m := make(map[string]Op, numOps)
	for op := OpInput; op < numOps; op++ {
		m[ops[op].token] = op
	}
	return m
}()

func (op Op) info() opInfo {
	if op >= numOps {
		panic(fmt.Sprintf("model: unknown op %d", uint8(op)))
	}
	return ops[op]
}

// String returns the grammar token of op.
func (op Op) String() string {
	if op >= numOps {
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
	return ops[op].token
}

// Arity is the number of operands of op.
func (op Op) Arity() int {
	return len(op.info().sig.Operands)
}

// Signature returns the operand kinds and result kind of op.
func (op Op) Signature() Signature {
	return op.info().sig
}

// IsLeaf reports whether op carries a payload instead of operands.
func (op Op) IsLeaf() bool {
	return op == OpNum || op == OpVar
}

// LookupOp finds an operator by its grammar token. Leaf kinds have no token.
func LookupOp(token string) (Op, bool) {
	op, ok := opsByToken[token]
	return op, ok
}

// Ops lists all valid ops, leaves included.
func Ops() []Op {
	all := make([]Op, 0, numOps-1)
	for op := OpNum; op < numOps; op++ {
		all = append(all, op)
	}
	return all
}
