// backend.go - Referenz-Backend: Struktur und Basis-Methoden
// Enthält: Backend struct, init(), New(), Close(), Graph-Abfragen
//
// Das Referenz-Backend ist eine reine Go-Implementierung des ml.Backend-
// Vertrags: Shape-Inferenz, Op-Deduplizierung, Kanten und Kostenschaetzung.
// Es fuehrt keine Kernels aus.

package ref

import (
	"log/slog"
	"slices"

	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/floats"

	"github.com/jakobhartmann/tensat/ml"
)

// Backend ist ein Tensor-Graph im Speicher
type Backend struct {
	params ml.BackendParams
	logger *slog.Logger

	// ops in Erzeugungsreihenfolge, Index == Op-ID
	ops []*op

	// cache mappt strukturelle Op-Schluessel auf bereits erzeugte Ops
	cache map[string]*op

	// inEdges mappt Op-IDs auf eingehende Kanten
	inEdges map[int][]ml.Edge

	// weights haelt die Werte der Weight-Ops
	weights map[int]*weight

	closed bool
}

func init() {
	ml.RegisterBackend("ref", New)
}

// New erstellt einen leeren Graphen
func New(params ml.BackendParams) (ml.Backend, error) {
	return newBackend(params), nil
}

func newBackend(params ml.BackendParams) *Backend {
	if params.PeakFLOPS <= 0 {
		params.PeakFLOPS = defaultPeakFLOPS
	}
	if params.Bandwidth <= 0 {
		params.Bandwidth = defaultBandwidth
	}
	if params.WeightDType == ml.DTypeOther {
		params.WeightDType = ml.DTypeF32
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Backend{
		params:  params,
		logger:  logger.With("backend", "ref"),
		cache:   make(map[string]*op),
		inEdges: make(map[int][]ml.Edge),
		weights: make(map[int]*weight),
	}
}

// Close gibt den Graphen frei
func (b *Backend) Close() {
	if b == nil || b.closed {
		return
	}

	b.logger.Debug("closing graph", "ops", len(b.ops), "cost", b.TotalCost())
	b.closed = true
	b.ops = nil
	b.cache = nil
	b.inEdges = nil
	b.weights = nil
}

// Ops gibt alle Ops in Erzeugungsreihenfolge zurueck
func (b *Backend) Ops() []ml.Op {
	b.use()
	ops := make([]ml.Op, len(b.ops))
	for i, o := range b.ops {
		ops[i] = o
	}
	return ops
}

// InEdges gibt die eingehenden Kanten einer Op zurueck
func (b *Backend) InEdges(o ml.Op) []ml.Edge {
	b.use()
	return slices.Clone(b.inEdges[b.opOf(o).id])
}

// TotalCost summiert die Kosten aller Ops
func (b *Backend) TotalCost() float64 {
	if b.closed {
		return 0
	}

	costs := make([]float64, len(b.ops))
	for i, o := range b.ops {
		costs[i] = o.cost
	}
	return floats.Sum(costs)
}

// AddEdge registriert eine Kante zwischen zwei Ops. Doppelte Kanten werden ignoriert.
func (b *Backend) AddEdge(src, dst ml.Op, srcIdx, dstIdx int) {
	b.use()
	s, d := b.opOf(src), b.opOf(dst)
	if srcIdx < 0 || srcIdx >= len(s.outputs) {
		exceptions.Panicf("ref: edge source index %d out of range for %s", srcIdx, s.typ)
	}

	e := ml.Edge{Src: s, Dst: d, SrcIdx: srcIdx, DstIdx: dstIdx}
	for _, have := range b.inEdges[d.id] {
		if have.Src == e.Src && have.SrcIdx == srcIdx && have.DstIdx == dstIdx {
			return
		}
	}
	b.inEdges[d.id] = append(b.inEdges[d.id], e)
}

// use bricht ab, wenn der Graph bereits geschlossen wurde
func (b *Backend) use() {
	if b.closed {
		exceptions.Panicf("ref: backend used after Close")
	}
}

// tensorOf prueft, dass t aus diesem Graphen stammt
func (b *Backend) tensorOf(t ml.Tensor) *tensor {
	tt, ok := t.(*tensor)
	if !ok || tt == nil {
		exceptions.Panicf("ref: foreign tensor %T", t)
	}
	if tt.op.b != b {
		exceptions.Panicf("ref: tensor of op %d belongs to another graph", tt.op.id)
	}
	return tt
}

// opOf prueft, dass o aus diesem Graphen stammt
func (b *Backend) opOf(o ml.Op) *op {
	oo, ok := o.(*op)
	if !ok || oo == nil {
		exceptions.Panicf("ref: foreign op %T", o)
	}
	if oo.b != b {
		exceptions.Panicf("ref: op %d belongs to another graph", oo.id)
	}
	return oo
}

var _ ml.Backend = (*Backend)(nil)
