// expr.go - Flache Ausdruecke (RecExpr)
// Enthält: Expr, Add, Root, String, Check
package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/jakobhartmann/tensat/egraph"
)

// ErrIllTyped is returned by Check when an operand has the wrong kind.
var ErrIllTyped = errors.New("ill-typed term")

// Expr is a term in post order: the operands of a node always reference
// earlier positions and the last node is the root.
type Expr []Node

// Add appends n and returns its position.
func (e *Expr) Add(n Node) egraph.ID {
	*e = append(*e, n)
	return egraph.ID(len(*e) - 1)
}

// Root returns the position of the last node.
func (e Expr) Root() egraph.ID {
	if len(e) == 0 {
		panic("model: empty expression")
	}
	return egraph.ID(len(e) - 1)
}

// Kind returns the result kind of the node at position id.
func (e Expr) Kind(id egraph.ID) Kind {
	return e[id].Op.Signature().Result
}

// Check verifies that every operand references an earlier node of the kind
// its position expects.
func (e Expr) Check() error {
	if len(e) == 0 {
		return errors.Wrap(ErrIllTyped, "empty expression")
	}

	for i, n := range e {
		if n.Op == OpInvalid {
			return errors.Wrapf(ErrIllTyped, "node %d: invalid op", i)
		}
		for j := range n.Op.Arity() {
			c, operand := n.Operand(j)
			if int(c) >= i {
				return errors.Wrapf(ErrIllTyped, "node %d: %s operand %s references %s", i, n.Op, operand.Name, c)
			}
			if got := e.Kind(c); got != operand.Kind {
				return errors.Wrapf(ErrIllTyped, "%s operand %s wants %s, got %s %s",
					n.Op, operand.Name, operand.Kind, got, e.format(c))
			}
		}
	}
	return nil
}

// String prints the root as an S-expression.
func (e Expr) String() string {
	if len(e) == 0 {
		return "()"
	}
	return e.format(e.Root())
}

func (e Expr) format(id egraph.ID) string {
	n := e[id]
	if n.Op.IsLeaf() || n.Op.Arity() == 0 {
		return n.String()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "(%s", n.Op)
	for _, c := range n.Children() {
		sb.WriteString(" " + e.format(c))
	}
	sb.WriteString(")")
	return sb.String()
}
