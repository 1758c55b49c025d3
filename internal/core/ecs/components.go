package ecs

import (
	"iter"

	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/models"
)

// arenaFor returns T's arena, creating it on first use. Callers hold s.mu.
func arenaFor[T models.Component, P models.ComponentPtr[T]](s *Store) *arena[T] {
	k := models.KindOf[T, P]()
	if a, ok := s.arenas[k].(*arena[T]); ok {
		return a
	}
	a := &arena[T]{}
	s.arenas[k] = a
	return a
}

// CreateComponent attaches a default-valued T to entity id and returns it.
// The pointer stays valid for the store's lifetime. Attaching a second
// component of the same kind fails with ErrComponentExists.
func CreateComponent[T models.Component, P models.ComponentPtr[T]](s *Store, id models.EntityID) (*T, error) {
	k := models.KindOf[T, P]()

	s.mu.Lock()
	if int(id) >= len(s.entities) {
		s.mu.Unlock()
		return nil, eris.Wrapf(ErrEntityNotFound, "attach %s to entity %d", k, id)
	}
	if _, exists := s.owners[k][id]; exists {
		s.mu.Unlock()
		return nil, eris.Wrapf(ErrComponentExists, "attach %s to entity %d", k, id)
	}

	v := models.Default[T]()
	P(&v).SetOwner(id)
	cid, ptr := arenaFor[T, P](s).push(v)

	ref := models.ComponentRef{Kind: k, ID: cid}
	s.owners[k][id] = cid
	s.entities[id].Components = append(s.entities[id].Components, ref)
	hooks := s.onComponentAdded
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(id, ref)
	}
	return ptr, nil
}

// ComponentFromEntity returns entity id's component of kind T.
func ComponentFromEntity[T models.Component, P models.ComponentPtr[T]](s *Store, id models.EntityID) (*T, error) {
	cid, err := ComponentIDFromEntity[T, P](s, id)
	if err != nil {
		return nil, err
	}
	return ComponentByID[T, P](s, cid)
}

// ComponentIDFromEntity returns the component id of entity id's T.
func ComponentIDFromEntity[T models.Component, P models.ComponentPtr[T]](s *Store, id models.EntityID) (models.ComponentID, error) {
	k := models.KindOf[T, P]()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.entities) {
		return 0, eris.Wrapf(ErrEntityNotFound, "%s of entity %d", k, id)
	}
	cid, ok := s.owners[k][id]
	if !ok {
		return 0, eris.Wrapf(ErrComponentNotFound, "%s of entity %d", k, id)
	}
	return cid, nil
}

// ComponentByID indexes T's arena directly.
func ComponentByID[T models.Component, P models.ComponentPtr[T]](s *Store, cid models.ComponentID) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, _ := s.arenas[models.KindOf[T, P]()].(*arena[T])
	if a == nil {
		return nil, eris.Wrapf(ErrComponentOutOfRange, "%s %d of 0", models.KindOf[T, P](), cid)
	}
	ptr, ok := a.at(cid)
	if !ok {
		return nil, eris.Wrapf(ErrComponentOutOfRange, "%s %d of %d", models.KindOf[T, P](), cid, a.len())
	}
	return ptr, nil
}

// ComponentFromName resolves name with EntityByName and returns its T.
func ComponentFromName[T models.Component, P models.ComponentPtr[T]](s *Store, name string) (*T, error) {
	id, ok := s.EntityByName(name)
	if !ok {
		return nil, eris.Wrapf(ErrEntityNotFound, "entity %q", name)
	}
	return ComponentFromEntity[T, P](s, id)
}

// AllComponents copies T's arena in creation order.
func AllComponents[T models.Component, P models.ComponentPtr[T]](s *Store) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, _ := s.arenas[models.KindOf[T, P]()].(*arena[T])
	if a == nil {
		return nil
	}
	return a.snapshot()
}

// Components yields every T with its component id, in creation order. The
// yielded pointers may be written through.
func Components[T models.Component, P models.ComponentPtr[T]](s *Store) iter.Seq2[models.ComponentID, *T] {
	return func(yield func(models.ComponentID, *T) bool) {
		s.mu.RLock()
		a, _ := s.arenas[models.KindOf[T, P]()].(*arena[T])
		n := 0
		if a != nil {
			n = a.len()
		}
		s.mu.RUnlock()

		for i := 0; i < n; i++ {
			ptr, _ := a.at(models.ComponentID(i))
			if !yield(models.ComponentID(i), ptr) {
				return
			}
		}
	}
}
