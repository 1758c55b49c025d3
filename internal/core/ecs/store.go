// Package ecs is the entity/component store every decoder writes into and
// every consumer (rendering, physics queries, the editor) reads from.
//
// Components of each kind live in a dense arena; a component's index in its
// arena is its component id. Components are reachable by that id or through
// their owner entity. The store has a single writer: the goroutine running a
// scene load. Once published it may be read concurrently.
package ecs

import (
	"errors"
	"iter"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/models"
)

var (
	ErrEntityNotFound      = errors.New("entity not found")
	ErrComponentExists     = errors.New("entity already has a component of this kind")
	ErrComponentNotFound   = errors.New("component not found")
	ErrComponentOutOfRange = errors.New("component id out of range")
	ErrHierarchyCycle      = errors.New("transform hierarchy contains a cycle")
)

type Store struct {
	mu       sync.RWMutex
	entities []models.Entity
	// byName keeps the first entity created with each name.
	byName map[string]models.EntityID
	arenas [models.KindCount]any
	// owners maps entity id to component id, per kind.
	owners [models.KindCount]map[models.EntityID]models.ComponentID

	onEntityCreated  []func(models.Entity)
	onComponentAdded []func(models.EntityID, models.ComponentRef)
}

func NewStore() *Store {
	s := &Store{byName: make(map[string]models.EntityID)}
	for k := range s.owners {
		s.owners[k] = make(map[models.EntityID]models.ComponentID)
	}
	return s
}

// OnEntityCreated registers a callback run after every CreateEntity.
func (s *Store) OnEntityCreated(fn func(models.Entity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEntityCreated = append(s.onEntityCreated, fn)
}

// OnComponentAdded registers a callback run after every component attachment.
func (s *Store) OnComponentAdded(fn func(models.EntityID, models.ComponentRef)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComponentAdded = append(s.onComponentAdded, fn)
}

// CreateEntity allocates a new entity with a default Transform as its first
// component. It always succeeds; names need not be unique.
func (s *Store) CreateEntity(name string) models.EntityID {
	s.mu.Lock()
	id := models.EntityID(len(s.entities))
	s.entities = append(s.entities, models.Entity{ID: id, Name: name})
	if _, taken := s.byName[name]; !taken {
		s.byName[name] = id
	}
	created := s.entities[id]
	entityHooks := s.onEntityCreated
	s.mu.Unlock()

	for _, fn := range entityHooks {
		fn(created)
	}

	// cannot fail: the entity exists and has no transform yet
	_, _ = CreateComponent[models.Transform](s, id)
	return id
}

// Entity returns a copy of the entity record.
func (s *Store) Entity(id models.EntityID) (models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.entities) {
		return models.Entity{}, eris.Wrapf(ErrEntityNotFound, "entity %d", id)
	}
	e := s.entities[id]
	e.Components = append([]models.ComponentRef(nil), e.Components...)
	return e, nil
}

// EntityByName returns the first entity created with name.
func (s *Store) EntityByName(name string) (models.EntityID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	return id, ok
}

// Rename changes an entity's name, keeping the first-created-wins lookup rule.
func (s *Store) Rename(id models.EntityID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(id) >= len(s.entities) {
		return eris.Wrapf(ErrEntityNotFound, "entity %d", id)
	}
	old := s.entities[id].Name
	s.entities[id].Name = name

	if s.byName[old] == id {
		delete(s.byName, old)
		for i := range s.entities {
			if s.entities[i].Name == old {
				s.byName[old] = s.entities[i].ID
				break
			}
		}
	}
	if cur, taken := s.byName[name]; !taken || cur > id {
		s.byName[name] = id
	}
	return nil
}

func (s *Store) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Entities yields every entity in creation order.
func (s *Store) Entities() iter.Seq[models.Entity] {
	return func(yield func(models.Entity) bool) {
		s.mu.RLock()
		n := len(s.entities)
		s.mu.RUnlock()
		for i := 0; i < n; i++ {
			e, err := s.Entity(models.EntityID(i))
			if err != nil || !yield(e) {
				return
			}
		}
	}
}

// ComponentCount returns the size of kind k's arena.
func (s *Store) ComponentCount(k models.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.owners[k])
}
