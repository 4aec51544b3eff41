// Package egraph - Minimaler E-Graph als Wirt fuer eine Klassen-Analyse
//
// Dieses Modul enthaelt:
// - ID, Language, Analysis, Classes: Vertrag zwischen Graph und Analyse
// - EGraph: Hashcons, Union-Find, Klassen in Einfuegereihenfolge
// - Add, AddExpr, Lookup, Data, Class, Classes
//
// Union und Rebuild liegen in rebuild.go. Regeln und Suche gehoeren nicht
// hierher; der Graph stellt nur den Klassenspeicher bereit.
package egraph

import (
	"fmt"

	"github.com/emirpasic/gods/v2/queues/linkedlistqueue"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ID references an equivalence class.
type ID uint32

func (id ID) String() string {
	return fmt.Sprintf("#%d", uint32(id))
}

// Language is implemented by node types. Nodes must be comparable values so
// they can be hash-consed; MapChildren returns a copy with replaced children.
type Language[L any] interface {
	comparable
	Children() []ID
	MapChildren(f func(ID) ID) L
}

// Classes gives an analysis read access to computed class data.
type Classes[D any] interface {
	Data(id ID) D
}

// Analysis computes one datum per class.
type Analysis[L Language[L], D any] interface {
	// Make computes the datum of a class created for node n.
	Make(classes Classes[D], n L) D
	// Merge reconciles the data of two unioned classes into to and reports
	// whether to changed.
	Merge(to *D, from D) bool
	// Modify runs after a class is created or changed.
	Modify(eg *EGraph[L, D], id ID)
}

// Class is an equivalence class of nodes.
type Class[L Language[L], D any] struct {
	ID    ID
	Nodes []L
	Data  D

	parents []parent[L]
}

type parent[L any] struct {
	node L
	id   ID
}

// EGraph is a hash-consed e-graph. It is not safe for concurrent use.
type EGraph[L Language[L], D any] struct {
	analysis Analysis[L, D]

	unionFind unionFind
	memo      map[L]ID
	classes   *orderedmap.OrderedMap[ID, *Class[L, D]]

	// pending enthaelt Klassen, deren Eltern nach einer Union repariert werden muessen
	pending *linkedlistqueue.Queue[ID]
	// analysisPending enthaelt Eltern, deren Daten neu berechnet werden muessen
	analysisPending *linkedlistqueue.Queue[parent[L]]
}

// New creates an empty e-graph driven by analysis.
func New[L Language[L], D any](analysis Analysis[L, D]) *EGraph[L, D] {
	return &EGraph[L, D]{
		analysis:        analysis,
		memo:            make(map[L]ID),
		classes:         orderedmap.New[ID, *Class[L, D]](),
		pending:         linkedlistqueue.New[ID](),
		analysisPending: linkedlistqueue.New[parent[L]](),
	}
}

// Find returns the canonical ID of the class containing id.
func (eg *EGraph[L, D]) Find(id ID) ID {
	return eg.unionFind.find(id)
}

func (eg *EGraph[L, D]) canonicalize(n L) L {
	return n.MapChildren(eg.Find)
}

// Add inserts n and returns its class. If an equal node already exists, its
// class is returned and the analysis is not invoked.
func (eg *EGraph[L, D]) Add(n L) ID {
	n = eg.canonicalize(n)
	if id, ok := eg.memo[n]; ok {
		return eg.Find(id)
	}

	// Make sieht nur bereits existierende Klassen; schlaegt es fehl, bleibt
	// der Graph unveraendert
	data := eg.analysis.Make(eg, n)
	id := eg.unionFind.makeSet()
	class := &Class[L, D]{ID: id, Nodes: []L{n}, Data: data}

	for _, child := range n.Children() {
		c := eg.class(child)
		c.parents = append(c.parents, parent[L]{node: n, id: id})
	}

	eg.classes.Set(id, class)
	eg.memo[n] = id
	eg.analysis.Modify(eg, id)
	return id
}

// AddExpr inserts a flat expression whose node children are indices into
// expr itself and returns the class of the last node.
func (eg *EGraph[L, D]) AddExpr(expr []L) ID {
	if len(expr) == 0 {
		panic("egraph: empty expression")
	}

	ids := make([]ID, len(expr))
	for i, n := range expr {
		ids[i] = eg.Add(n.MapChildren(func(child ID) ID {
			if int(child) >= i {
				panic(fmt.Sprintf("egraph: node %d references later node %d", i, child))
			}
			return ids[child]
		}))
	}
	return ids[len(ids)-1]
}

// Lookup returns the class of n if it is already in the graph.
func (eg *EGraph[L, D]) Lookup(n L) (ID, bool) {
	id, ok := eg.memo[eg.canonicalize(n)]
	if !ok {
		return 0, false
	}
	return eg.Find(id), true
}

// Data returns the datum of the class containing id.
func (eg *EGraph[L, D]) Data(id ID) D {
	return eg.class(id).Data
}

// Class returns the class containing id.
func (eg *EGraph[L, D]) Class(id ID) *Class[L, D] {
	return eg.class(id)
}

func (eg *EGraph[L, D]) class(id ID) *Class[L, D] {
	c, ok := eg.classes.Get(eg.Find(id))
	if !ok {
		panic(fmt.Sprintf("egraph: unknown class %s", id))
	}
	return c
}

// Classes returns the canonical classes in creation order.
func (eg *EGraph[L, D]) Classes() []*Class[L, D] {
	classes := make([]*Class[L, D], 0, eg.classes.Len())
	for pair := eg.classes.Oldest(); pair != nil; pair = pair.Next() {
		classes = append(classes, pair.Value)
	}
	return classes
}

// NumClasses is the number of canonical classes.
func (eg *EGraph[L, D]) NumClasses() int {
	return eg.classes.Len()
}

// NumNodes is the number of distinct nodes.
func (eg *EGraph[L, D]) NumNodes() int {
	return len(eg.memo)
}
