// unionfind.go - Union-Find mit Pfadhalbierung
package egraph

type unionFind struct {
	parents []ID
}

func (u *unionFind) makeSet() ID {
	id := ID(len(u.parents))
	u.parents = append(u.parents, id)
	return id
}

func (u *unionFind) find(id ID) ID {
	for u.parents[id] != id {
		u.parents[id] = u.parents[u.parents[id]]
		id = u.parents[id]
	}
	return id
}

// union haengt child unter root; beide muessen kanonisch sein
func (u *unionFind) union(root, child ID) {
	u.parents[child] = root
}
