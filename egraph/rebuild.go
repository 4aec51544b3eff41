// rebuild.go - Union und Wiederherstellung der Kongruenz
// Enthält: Union, Rebuild, repair, repairAnalysis
package egraph

import "slices"

// Union merges the classes of a and b and reports whether they were distinct.
// The older class stays canonical, so its datum is the one kept unless the
// analysis reports a change. Call Rebuild before the next Lookup.
func (eg *EGraph[L, D]) Union(a, b ID) bool {
	a, b = eg.Find(a), eg.Find(b)
	if a == b {
		return false
	}

	root, child := a, b
	if b < a {
		root, child = b, a
	}

	rc, cc := eg.class(root), eg.class(child)

	// Merge may panic; nothing is linked until it returns.
	data := rc.Data
	changed := eg.analysis.Merge(&data, cc.Data)

	eg.unionFind.union(root, child)
	rc.Data = data
	rc.Nodes = append(rc.Nodes, cc.Nodes...)
	rc.parents = append(rc.parents, cc.parents...)
	eg.classes.Delete(child)

	if changed {
		for _, p := range rc.parents {
			eg.analysisPending.Enqueue(p)
		}
	}

	eg.pending.Enqueue(root)
	eg.analysis.Modify(eg, root)
	return true
}

// Rebuild restores the congruence invariant after unions and returns the
// number of classes merged by congruence.
func (eg *EGraph[L, D]) Rebuild() int {
	before := eg.classes.Len()
	for !eg.pending.Empty() || !eg.analysisPending.Empty() {
		for !eg.pending.Empty() {
			id, _ := eg.pending.Dequeue()
			eg.repair(eg.Find(id))
		}

		for !eg.analysisPending.Empty() {
			p, _ := eg.analysisPending.Dequeue()
			eg.repairAnalysis(p)
		}
	}

	for pair := eg.classes.Oldest(); pair != nil; pair = pair.Next() {
		c := pair.Value
		for i, n := range c.Nodes {
			c.Nodes[i] = eg.canonicalize(n)
		}
		c.Nodes = dedup(c.Nodes)
	}

	return before - eg.classes.Len()
}

func (eg *EGraph[L, D]) repair(id ID) {
	c := eg.class(id)
	parents := c.parents
	c.parents = nil

	for _, p := range parents {
		delete(eg.memo, p.node)
	}

	seen := make(map[L]ID, len(parents))
	repaired := make([]parent[L], 0, len(parents))
	for _, p := range parents {
		n := eg.canonicalize(p.node)
		pid := eg.Find(p.id)
		if other, ok := eg.memo[n]; ok && eg.Find(other) != pid {
			eg.Union(other, pid)
			pid = eg.Find(pid)
		}
		if prev, ok := seen[n]; ok {
			if eg.Find(prev) != pid {
				eg.Union(prev, pid)
			}
			continue
		}

		eg.memo[n] = pid
		seen[n] = pid
		repaired = append(repaired, parent[L]{node: n, id: pid})
	}

	rc := eg.class(id)
	rc.parents = append(rc.parents, repaired...)
}

func (eg *EGraph[L, D]) repairAnalysis(p parent[L]) {
	id := eg.Find(p.id)
	c := eg.class(id)
	if eg.analysis.Merge(&c.Data, eg.analysis.Make(eg, eg.canonicalize(p.node))) {
		for _, pp := range c.parents {
			eg.analysisPending.Enqueue(pp)
		}
		eg.analysis.Modify(eg, id)
	}
}

func dedup[L comparable](nodes []L) []L {
	out := nodes[:0]
	for _, n := range nodes {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
