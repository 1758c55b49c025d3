package scene

import (
	"github.com/zeusync/scenekit/internal/core/ecs"
	"github.com/zeusync/scenekit/internal/core/models"
)

// Node is one transform in the derived hierarchy.
type Node struct {
	Transform models.ComponentID
	Entity    models.EntityID
	Name      string
	Children  []*Node
}

// BuildTree returns the root transforms of the store with their descendants.
// Roots and children are ordered by transform id. Transforms caught in a
// cycle have no root and are left out.
func BuildTree(store *ecs.Store) []*Node {
	nodes := make(map[models.ComponentID]*Node)
	var order []models.ComponentID
	parents := make(map[models.ComponentID]models.ComponentID)

	for cid, t := range ecs.Components[models.Transform](store) {
		n := &Node{Transform: cid, Entity: t.Owner}
		if e, err := store.Entity(t.Owner); err == nil {
			n.Name = e.Name
		}
		nodes[cid] = n
		order = append(order, cid)
		parents[cid] = t.Parent
	}

	var roots []*Node
	for _, cid := range order {
		n := nodes[cid]
		parent, ok := nodes[parents[cid]]
		if parents[cid] == models.NoParent || !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}
