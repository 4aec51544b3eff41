// egraph_test.go - Tests fuer Hashcons, Union und Kongruenz
package egraph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// term ist eine kleine Testsprache: Konstanten und zweistellige Operatoren
type term struct {
	op    string
	arity int
	args  [2]ID
	val   int
}

func (t term) Children() []ID {
	return t.args[:t.arity]
}

func (t term) MapChildren(f func(ID) ID) term {
	for i := range t.arity {
		t.args[i] = f(t.args[i])
	}
	return t
}

func num(v int) term { return term{op: "num", val: v} }
func sym(s string) term { return term{op: s} }
func app(op string, a ID) term { return term{op: op, arity: 1, args: [2]ID{a}} }
func bin(op string, a, b ID) term { return term{op: op, arity: 2, args: [2]ID{a, b}} }

// minConst merkt sich die kleinste bekannte Konstante einer Klasse (-1: keine).
// "bad" erzeugt -2, das Merge ablehnt.
type minConst struct {
	makes   int
	merges  int
	modifys int
}

func (a *minConst) Make(classes Classes[int], n term) int {
	a.makes++
	switch n.op {
	case "boom":
		panic("boom")
	case "bad":
		return -2
	case "num":
		return n.val
	case "+":
		x, y := classes.Data(n.args[0]), classes.Data(n.args[1])
		if x >= 0 && y >= 0 {
			return x + y
		}
	}
	return -1
}

func (a *minConst) Merge(to *int, from int) bool {
	a.merges++
	if from == -2 || *to == -2 {
		panic("conflict")
	}
	if from >= 0 && (*to < 0 || from < *to) {
		*to = from
		return true
	}
	return false
}

func (a *minConst) Modify(*EGraph[term, int], ID) {
	a.modifys++
}

type EGraphSuite struct {
	suite.Suite
	a  *minConst
	eg *EGraph[term, int]
}

func (s *EGraphSuite) SetupTest() {
	s.a = &minConst{}
	s.eg = New[term, int](s.a)
}

func (s *EGraphSuite) TestAddHashconses() {
	require := require.New(s.T())

	x := s.eg.Add(sym("x"))
	f1 := s.eg.Add(app("f", x))
	f2 := s.eg.Add(app("f", x))

	require.Equal(f1, f2, "gleicher Knoten, gleiche Klasse")
	require.Equal(2, s.eg.NumClasses())
	require.Equal(2, s.a.makes, "Make nur einmal pro neuem Knoten")

	id, ok := s.eg.Lookup(app("f", x))
	require.True(ok)
	require.Equal(f1, id)

	_, ok = s.eg.Lookup(app("g", x))
	require.False(ok)
}

func (s *EGraphSuite) TestAddExpr() {
	require := require.New(s.T())

	// (+ 1 2) als flacher Ausdruck
	root := s.eg.AddExpr([]term{num(1), num(2), bin("+", 0, 1)})
	require.Equal(3, s.eg.Data(root))
	require.Equal(3, s.eg.NumClasses())

	require.Panics(func() { s.eg.AddExpr([]term{app("f", 0)}) }, "Vorwaertsreferenz")
	require.Panics(func() { s.eg.AddExpr(nil) })
}

func (s *EGraphSuite) TestFailedMakeLeavesGraphUnchanged() {
	require := require.New(s.T())

	x := s.eg.Add(sym("x"))
	require.Panics(func() { s.eg.Add(app("boom", x)) })
	require.Equal(1, s.eg.NumClasses())
	require.Equal(1, s.eg.NumNodes())

	_, ok := s.eg.Lookup(app("boom", x))
	require.False(ok)
	require.Equal(x+1, s.eg.Add(sym("y")), "keine ID verbraucht")
}

func (s *EGraphSuite) TestUnionKeepsOlderRoot() {
	require := require.New(s.T())

	a := s.eg.Add(sym("a"))
	b := s.eg.Add(sym("b"))

	require.True(s.eg.Union(b, a))
	require.False(s.eg.Union(a, b), "bereits vereinigt")
	require.Equal(a, s.eg.Find(b))
	require.Equal(1, s.eg.NumClasses())
	require.Len(s.eg.Class(b).Nodes, 2)
}

func (s *EGraphSuite) TestFailedMergeLeavesClassesApart() {
	require := require.New(s.T())

	a := s.eg.Add(sym("a"))
	bad := s.eg.Add(sym("bad"))

	require.Panics(func() { s.eg.Union(a, bad) })
	require.NotEqual(s.eg.Find(a), s.eg.Find(bad))
	require.Equal(2, s.eg.NumClasses())
	require.Len(s.eg.Class(a).Nodes, 1)
	require.Equal(-1, s.eg.Data(a))
	require.Equal(-2, s.eg.Data(bad))
}

func (s *EGraphSuite) TestRebuildRestoresCongruence() {
	require := require.New(s.T())

	x := s.eg.Add(sym("x"))
	y := s.eg.Add(sym("y"))
	fx := s.eg.Add(app("f", x))
	fy := s.eg.Add(app("f", y))
	ffx := s.eg.Add(app("f", fx))
	ffy := s.eg.Add(app("f", fy))
	require.NotEqual(s.eg.Find(fx), s.eg.Find(fy))

	s.eg.Union(x, y)
	merged := s.eg.Rebuild()

	require.Equal(2, merged, "f(x)=f(y) und f(f(x))=f(f(y))")
	require.Equal(s.eg.Find(fx), s.eg.Find(fy))
	require.Equal(s.eg.Find(ffx), s.eg.Find(ffy))
	require.Equal(3, s.eg.NumClasses())
	require.Len(s.eg.Class(fx).Nodes, 1, "Knoten nach Kanonisierung dedupliziert")
}

func (s *EGraphSuite) TestAnalysisPropagates() {
	require := require.New(s.T())

	x := s.eg.Add(sym("x"))
	one := s.eg.Add(num(1))
	sum := s.eg.Add(bin("+", x, one))
	require.Equal(-1, s.eg.Data(sum))

	// x = 2 macht (+ x 1) zu 3
	two := s.eg.Add(num(2))
	s.eg.Union(x, two)
	s.eg.Rebuild()

	require.Equal(2, s.eg.Data(x))
	require.Equal(3, s.eg.Data(sum))
}

func (s *EGraphSuite) TestClassesInCreationOrder() {
	require := require.New(s.T())

	ids := []ID{s.eg.Add(sym("c")), s.eg.Add(sym("a")), s.eg.Add(sym("b"))}
	s.eg.Union(ids[2], ids[1])
	s.eg.Rebuild()

	var got []ID
	for _, c := range s.eg.Classes() {
		got = append(got, c.ID)
	}
	require.Equal([]ID{ids[0], ids[1]}, got)
}

func TestEGraphSuite(t *testing.T) {
	suite.Run(t, new(EGraphSuite))
}
