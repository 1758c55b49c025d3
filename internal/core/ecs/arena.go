package ecs

import "github.com/zeusync/scenekit/internal/core/models"

const pageSize = 64

// arena is a dense, append-only collection. Elements live in fixed-capacity
// pages so a pointer handed out stays valid as the arena grows.
type arena[T models.Component] struct {
	pages [][]T
	size  int
}

func (a *arena[T]) push(v T) (models.ComponentID, *T) {
	if a.size%pageSize == 0 {
		a.pages = append(a.pages, make([]T, 0, pageSize))
	}
	last := len(a.pages) - 1
	a.pages[last] = append(a.pages[last], v)
	id := models.ComponentID(a.size)
	a.size++
	return id, &a.pages[last][len(a.pages[last])-1]
}

func (a *arena[T]) at(id models.ComponentID) (*T, bool) {
	if id < 0 || int(id) >= a.size {
		return nil, false
	}
	return &a.pages[int(id)/pageSize][int(id)%pageSize], true
}

func (a *arena[T]) len() int {
	return a.size
}

// snapshot copies every element in creation order.
func (a *arena[T]) snapshot() []T {
	out := make([]T, 0, a.size)
	for _, p := range a.pages {
		out = append(out, p...)
	}
	return out
}
