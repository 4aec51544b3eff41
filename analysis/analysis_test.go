package analysis

import (
	"io"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jakobhartmann/tensat/egraph"
	"github.com/jakobhartmann/tensat/logutil"
	"github.com/jakobhartmann/tensat/ml"
	"github.com/jakobhartmann/tensat/ml/backend/ref"
	"github.com/jakobhartmann/tensat/model"
)

type graph = egraph.EGraph[model.Node, Metadata]

// classes stellt Metadaten fuer direkte Make-Aufrufe bereit
type classes map[egraph.ID]Metadata

func (c classes) Data(id egraph.ID) Metadata { return c[id] }

func setup(t *testing.T, modify ...func(*Config)) (*TensorAnalysis, *graph) {
	t.Helper()

	cfg := Config{
		Backend:     "ref",
		Seed:        1,
		WeightDType: ml.DTypeF32,
		StrictMerge: true,
		Logger:      logutil.NewLogger(io.Discard, logutil.LevelTrace),
	}
	for _, fn := range modify {
		fn(&cfg)
	}

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, egraph.New[model.Node, Metadata](a)
}

func catch(fn func()) error {
	return exceptions.TryCatch[error](fn)
}

func add(t *testing.T, eg *graph, src string) egraph.ID {
	t.Helper()
	return eg.AddExpr(model.MustParse(src))
}

func shape(t *testing.T, eg *graph, id egraph.ID) []int {
	t.Helper()
	return eg.Data(id).Tensor().Shape()
}

func TestConv2d(t *testing.T) {
	a, eg := setup(t)

	id := add(t, eg, "(conv2d 1 1 0 2 (input x@1_4_32_32) (weight w@3_3_4_8))")
	md := eg.Data(id)
	require.Equal(t, model.KindTensor, md.Kind())
	if diff := cmp.Diff([]int{1, 8, 32, 32}, md.Tensor().Shape()); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}

	op, idx := md.Tensor().Op()
	require.Equal(t, 0, idx)
	require.Equal(t, ml.OpConv2D, op.Type())
	require.Equal(t, ml.ActiRelu, op.Params().Activation)
	require.Equal(t, ml.PaddingSame, op.Params().Padding)
	require.Len(t, a.Session().InEdges(md.Tensor()), 2)
	require.Equal(t, 3, a.Session().NumOps())
	require.Positive(t, a.Session().TotalCost())
}

func TestTensorOps(t *testing.T) {
	cases := []struct {
		src  string
		want []int
	}{
		{"(input x@2_3)", []int{2, 3}},
		{"(ewadd (input a@2_3) (input b@1_3))", []int{2, 3}},
		{"(ewmul (input a@2_3) (input b@2_3))", []int{2, 3}},
		{"(matmul 0 (input a@2_3) (weight b@3_4))", []int{2, 4}},
		{"(relu (input x@4))", []int{4}},
		{"(tanh (input x@4))", []int{4}},
		{"(sigmoid (input x@4))", []int{4}},
		{"(conv2d 2 2 1 0 (input x@1_4_32_32) (weight w@2_2_4_8))", []int{1, 8, 16, 16}},
		{"(poolmax (input x@1_4_32_32) 2 2 2 2 1 0)", []int{1, 4, 16, 16}},
		{"(poolavg (input x@1_4_32_32) 3 3 1 1 0 0)", []int{1, 4, 32, 32}},
		{"(concat 1 2 (input a@2_3) (input b@2_5))", []int{2, 8}},
		{"(merge (weight w@3_3_4_8) 2)", []int{3, 3, 8, 8}},
		{"(enlarge (weight w@1_1_4_8) (weight v@3_3_4_8))", []int{3, 3, 4, 8}},
		{"(split_1 (split 0 (input x@4_6)))", []int{2, 6}},
	}

	for _, tt := range cases {
		t.Run(tt.src, func(t *testing.T) {
			_, eg := setup(t)
			if diff := cmp.Diff(tt.want, shape(t, eg, add(t, eg, tt.src))); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	a, eg := setup(t)

	split := add(t, eg, "(split 1 (input x@2_4))")
	md := eg.Data(split)
	require.Equal(t, model.KindTensorPair, md.Kind())

	first, second := md.Pair()
	require.Equal(t, []int{2, 2}, first.Shape())
	require.Equal(t, []int{2, 2}, second.Shape())

	require.True(t, eg.Data(eg.Add(model.Split0(split))).Tensor().Equal(first))
	require.True(t, eg.Data(eg.Add(model.Split1(split))).Tensor().Equal(second))

	edges := a.Session().InEdges(first)
	require.Len(t, edges, 1)
	require.Equal(t, ml.OpInput, edges[0].Src.Type())
	require.Equal(t, 0, edges[0].DstIdx)

	// Eine zweite Ableitung liefert dieselbe Split-Op ohne weitere Kante
	ops := a.Session().NumOps()
	axis, input := eg.Data(0), eg.Data(2)
	again := a.Make(classes{0: axis, 1: input}, model.Split(0, 1))
	x, y := again.Pair()
	require.True(t, x.Equal(first))
	require.True(t, y.Equal(second))
	require.Equal(t, ops, a.Session().NumOps())
	require.Len(t, a.Session().InEdges(first), 1)
}

func TestSplitRejected(t *testing.T) {
	for _, src := range []string{
		"(split 1 (input x@2_3))",
		"(split 2 (input x@2_4))",
	} {
		t.Run(src, func(t *testing.T) {
			_, eg := setup(t)
			err := catch(func() { add(t, eg, src) })
			require.ErrorIs(t, err, ErrBackendRejected)
		})
	}
}

func TestLeaves(t *testing.T) {
	a, eg := setup(t)

	num := eg.Data(eg.Add(model.Num(7)))
	require.Equal(t, model.KindScalar, num.Kind())
	require.Equal(t, 7, num.Scalar())

	// Ein Symbol ohne @ ist erst als Input-Name ungueltig
	sym := eg.Add(model.Var("plain"))
	require.Equal(t, "plain", eg.Data(sym).Name())
	require.Equal(t, 0, a.Session().NumOps())

	err := catch(func() { eg.Add(model.Input(sym)) })
	require.ErrorIs(t, err, ErrMalformedName)
}

func TestMalformedName(t *testing.T) {
	for _, name := range []string{"x", "x@", "x@0_2", "x@2_-1", "x@a", "x@2@3", "x@2__3"} {
		t.Run(name, func(t *testing.T) {
			for _, op := range []func(egraph.ID) model.Node{model.Input, model.Weight} {
				_, eg := setup(t)
				err := catch(func() { eg.Add(op(eg.Add(model.Var(name)))) })
				require.ErrorIs(t, err, ErrMalformedName)
			}
		})
	}

	require.Equal(t, []int{1, 4, 32, 32}, parseName("x@1_4_32_32"))
}

func TestGrammarViolation(t *testing.T) {
	cases := map[string]model.Expr{
		"scalar as tensor": {model.Num(3), model.Relu(0)},
		"tensor as scalar": {
			model.Var("x@2_2"), model.Input(0),
			model.Concat(1, 1, 1, 1),
		},
		"name as tensor pair": {model.Var("x@2_2"), model.Split0(0)},
		"invalid padding": {
			model.Num(1), model.Num(5), model.Num(0),
			model.Var("x@1_4_8_8"), model.Input(3),
			model.Var("w@3_3_4_8"), model.Weight(5),
			model.Conv2d(0, 0, 1, 2, 4, 6),
		},
		"invalid activation": {
			model.Num(9), model.Var("a@2_2"), model.Input(1),
			model.Matmul(0, 2, 2),
		},
	}

	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			_, eg := setup(t)
			err := catch(func() { eg.AddExpr(e) })
			require.ErrorIs(t, err, ErrGrammar)
		})
	}
}

// operand legt eine Klasse der gewuenschten Art an
func operand(eg *graph, kind model.Kind) egraph.ID {
	switch kind {
	case model.KindScalar:
		return eg.Add(model.Num(1))
	case model.KindName:
		return eg.Add(model.Var("x@2_2"))
	case model.KindTensor:
		return eg.AddExpr(model.MustParse("(input x@2_2)"))
	default:
		return eg.AddExpr(model.MustParse("(split 1 (input x@2_2))"))
	}
}

func TestDispatchIsExhaustive(t *testing.T) {
	var unimplemented []model.Op
	for _, op := range model.Ops() {
		if op.IsLeaf() {
			require.True(t, Implemented(op), op.String())
			continue
		}

		t.Run(op.String(), func(t *testing.T) {
			_, eg := setup(t)

			var args []egraph.ID
			for _, o := range op.Signature().Operands {
				args = append(args, operand(eg, o.Kind))
			}

			err := catch(func() { eg.Add(model.New(op, args...)) })
			if Implemented(op) {
				require.NotErrorIs(t, err, ErrUnimplemented)
			} else {
				require.ErrorIs(t, err, ErrUnimplemented)
				unimplemented = append(unimplemented, op)
			}
		})
	}

	require.Equal(t, []model.Op{
		model.OpSmul, model.OpTranspose, model.OpCpool, model.OpIconv, model.OpImatmul, model.OpIewmul,
	}, unimplemented)
}

func TestMergeKeepsFirst(t *testing.T) {
	_, eg := setup(t)

	x := add(t, eg, "(relu (input x@2_2))")
	y := add(t, eg, "(tanh (input x@2_2))")
	before := eg.Data(x).Tensor()

	require.True(t, eg.Union(y, x))
	eg.Rebuild()

	require.Equal(t, eg.Find(x), eg.Find(y))
	require.True(t, eg.Data(eg.Find(y)).Tensor().Equal(before))
}

func TestRederiveMerges(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"input", "(input x@1_4_32_32)"},
		{"weight", "(weight w@3_3_4_8)"},
		{"split", "(split 1 (input x@4_6))"},
		{"conv2d", "(conv2d 1 1 0 2 (input x@1_4_32_32) (weight w@3_3_4_8))"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			a, eg := setup(t)
			id := add(t, eg, tt.src)

			m1 := eg.Data(id)
			before := m1
			m2 := a.Make(eg, eg.Class(id).Nodes[0])

			require.False(t, a.Merge(&m1, m2))
			require.Equal(t, before, m1)
		})
	}
}

func TestMergeConflict(t *testing.T) {
	_, eg := setup(t)
	x := add(t, eg, "(input x@2_2)")
	y := add(t, eg, "(input y@2_3)")

	err := catch(func() { eg.Union(x, y) })
	require.ErrorIs(t, err, ErrMergeConflict)
	require.NotEqual(t, eg.Find(x), eg.Find(y))
	require.Equal(t, 4, eg.NumClasses())

	before := testutil.ToFloat64(mergeTotal.WithLabelValues("kept"))
	a, eg := setup(t, func(c *Config) { c.StrictMerge = false })
	x = add(t, eg, "(input x@2_2)")
	y = add(t, eg, "(input y@2_3)")
	require.True(t, eg.Union(x, y))
	require.Equal(t, []int{2, 2}, shape(t, eg, eg.Find(y)))
	require.Equal(t, before+1, testutil.ToFloat64(mergeTotal.WithLabelValues("kept")))

	m := ScalarData(1)
	require.False(t, a.Merge(&m, ScalarData(2)))
	require.Equal(t, 1, m.Scalar())
}

func TestInterchangeable(t *testing.T) {
	_, eg := setup(t)
	a := eg.Data(add(t, eg, "(input a@2_2)")).Tensor()
	b := eg.Data(add(t, eg, "(input b@2_2)")).Tensor()
	c := eg.Data(add(t, eg, "(input c@2_3)")).Tensor()

	cases := []struct {
		name string
		x, y Metadata
		want bool
	}{
		{"same name", NameData("n"), NameData("n"), true},
		{"other name", NameData("n"), NameData("m"), false},
		{"same scalar", ScalarData(2), ScalarData(2), true},
		{"other scalar", ScalarData(2), ScalarData(3), false},
		{"kinds differ", ScalarData(0), NameData(""), false},
		{"same shape", TensorData(a), TensorData(b), true},
		{"other shape", TensorData(a), TensorData(c), false},
		{"pair", TensorPairData(a, c), TensorPairData(b, c), true},
		{"pair swapped", TensorPairData(a, c), TensorPairData(c, a), false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Interchangeable(tt.x, tt.y))
			require.Equal(t, tt.want, Interchangeable(tt.y, tt.x))
		})
	}
}

func TestMetadataAccessors(t *testing.T) {
	var zero Metadata
	require.Equal(t, model.KindName, zero.Kind())
	require.Empty(t, zero.Name())

	require.ErrorIs(t, catch(func() { ScalarData(1).Tensor() }), ErrGrammar)
	require.ErrorIs(t, catch(func() { NameData("x").Scalar() }), ErrGrammar)
	require.ErrorIs(t, catch(func() { TensorData(Handle{}).Pair() }), ErrGrammar)
	require.Equal(t, `"x"`, NameData("x").String())
	require.Equal(t, "<invalid>", TensorData(Handle{}).String())
}

func TestForeignHandle(t *testing.T) {
	a, eg := setup(t)
	b, _ := setup(t)

	h := eg.Data(add(t, eg, "(input x@2_2)"))
	require.NotEqual(t, a.Session().ID(), b.Session().ID())

	err := catch(func() { b.Make(classes{0: h}, model.Relu(0)) })
	require.ErrorIs(t, err, ErrForeignHandle)
}

func TestSessionClosed(t *testing.T) {
	a, eg := setup(t)
	h := eg.Data(add(t, eg, "(input x@2_2)")).Tensor()
	name := eg.Add(model.Var("y@2"))

	require.NoError(t, a.Close())
	require.True(t, a.Session().Closed())
	a.Session().Close()

	require.ErrorIs(t, catch(func() { h.Shape() }), ErrSessionClosed)
	require.ErrorIs(t, catch(func() { eg.Add(model.Input(name)) }), ErrSessionClosed)
	require.ErrorIs(t, catch(func() { a.Session().NumOps() }), ErrSessionClosed)
	require.Equal(t, "<closed>", h.String())
}

func TestWeights(t *testing.T) {
	values := func(dtype ml.DType) ([]float32, ml.DType) {
		a, eg := setup(t, func(c *Config) { c.WeightDType = dtype })
		op, _ := eg.Data(add(t, eg, "(weight w@2_3_4)")).Tensor().Op()

		var vals []float32
		var got ml.DType
		a.session.with(func(b ml.Backend) {
			vals = b.(*ref.Backend).WeightValues(op)
			got = b.(*ref.Backend).WeightDType(op)
		})
		return vals, got
	}

	f32, dtype := values(ml.DTypeF32)
	require.Equal(t, ml.DTypeF32, dtype)
	require.Len(t, f32, 24)
	for _, v := range f32 {
		require.GreaterOrEqual(t, v, float32(0))
		require.Less(t, v, float32(1))
	}

	again, _ := values(ml.DTypeF32)
	require.Equal(t, f32, again, "same seed, same weights")

	f16, dtype := values(ml.DTypeF16)
	require.Equal(t, ml.DTypeF16, dtype)
	require.InDeltaSlice(t, f32, f16, 1e-3)
}

func TestMetrics(t *testing.T) {
	_, eg := setup(t)

	relu := makeTotal.WithLabelValues("relu")
	input := makeTotal.WithLabelValues("input")
	beforeRelu, beforeInput := testutil.ToFloat64(relu), testutil.ToFloat64(input)

	add(t, eg, "(relu (relu (input x@2)))")
	require.Equal(t, beforeRelu+2, testutil.ToFloat64(relu))
	require.Equal(t, beforeInput+1, testutil.ToFloat64(input))
}

func TestPersistentCostCache(t *testing.T) {
	dir := t.TempDir()

	cost := func() float64 {
		a, eg := setup(t, func(c *Config) { c.CostCacheDir = dir })
		add(t, eg, "(matmul 0 (input a@64_64) (weight b@64_64))")
		cost := a.Session().TotalCost()
		require.NoError(t, a.Close())
		return cost
	}

	first := cost()
	require.Positive(t, first)
	require.Equal(t, first, cost())
}
