package ecs

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenekit/internal/core/models"
)

func TestCreateEntityAllocatesFreshIDsWithTransform(t *testing.T) {
	s := NewStore()
	a := s.CreateEntity("a")
	b := s.CreateEntity("")
	assert.Equal(t, models.EntityID(0), a)
	assert.Equal(t, models.EntityID(1), b)
	assert.Equal(t, 2, s.EntityCount())

	e, err := s.Entity(b)
	require.NoError(t, err)
	assert.Equal(t, "", e.Name)
	assert.Equal(t, []models.Kind{models.KindTransform}, e.Kinds())

	tr, err := ComponentFromEntity[models.Transform](s, b)
	require.NoError(t, err)
	assert.Equal(t, b, tr.Owner)
	assert.Equal(t, models.NoParent, tr.Parent)
}

func TestCreateComponent(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity("lamp")

	light, err := CreateComponent[models.Light](s, e)
	require.NoError(t, err)
	light.Intensity = 3

	got, err := ComponentFromEntity[models.Light](s, e)
	require.NoError(t, err)
	assert.Same(t, light, got)
	assert.Equal(t, e, got.Owner)

	byID, err := ComponentByID[models.Light](s, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(3), byID.Intensity)

	entity, _ := s.Entity(e)
	assert.Equal(t, []models.Kind{models.KindTransform, models.KindLight}, entity.Kinds())
}

func TestCreateComponentErrors(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity("x")

	_, err := CreateComponent[models.Mesh](s, e)
	require.NoError(t, err)
	_, err = CreateComponent[models.Mesh](s, e)
	assert.True(t, errors.Is(err, ErrComponentExists))
	_, err = CreateComponent[models.Transform](s, e)
	assert.True(t, errors.Is(err, ErrComponentExists))

	_, err = CreateComponent[models.Mesh](s, 42)
	assert.True(t, errors.Is(err, ErrEntityNotFound))
}

func TestLookupErrors(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity("x")

	_, err := ComponentFromEntity[models.Collider](s, e)
	assert.True(t, errors.Is(err, ErrComponentNotFound))
	_, err = ComponentFromEntity[models.Collider](s, 9)
	assert.True(t, errors.Is(err, ErrEntityNotFound))
	_, err = ComponentByID[models.Collider](s, 0)
	assert.True(t, errors.Is(err, ErrComponentOutOfRange))
	_, err = ComponentByID[models.Transform](s, 1)
	assert.True(t, errors.Is(err, ErrComponentOutOfRange))
	_, err = ComponentByID[models.Transform](s, -1)
	assert.True(t, errors.Is(err, ErrComponentOutOfRange))
	_, err = s.Entity(5)
	assert.True(t, errors.Is(err, ErrEntityNotFound))
	_, err = ComponentFromName[models.Transform](s, "nobody")
	assert.True(t, errors.Is(err, ErrEntityNotFound))
}

func TestComponentIDIsDistinctFromEntityID(t *testing.T) {
	s := NewStore()
	first := s.CreateEntity("first")
	second := s.CreateEntity("second")

	_, err := CreateComponent[models.Elevator](s, second)
	require.NoError(t, err)

	cid, err := ComponentIDFromEntity[models.Elevator](s, second)
	require.NoError(t, err)
	assert.Equal(t, models.ComponentID(0), cid)
	assert.NotEqual(t, models.ComponentID(second), cid)

	_, err = ComponentFromEntity[models.Elevator](s, first)
	assert.True(t, errors.Is(err, ErrComponentNotFound))
}

func TestEntityByNameReturnsFirstMatch(t *testing.T) {
	s := NewStore()
	first := s.CreateEntity("dup")
	second := s.CreateEntity("dup")

	id, ok := s.EntityByName("dup")
	require.True(t, ok)
	assert.Equal(t, first, id)

	require.NoError(t, s.Rename(first, "other"))
	id, ok = s.EntityByName("dup")
	require.True(t, ok)
	assert.Equal(t, second, id)

	id, ok = s.EntityByName("other")
	require.True(t, ok)
	assert.Equal(t, first, id)

	// renaming back restores first-created precedence
	require.NoError(t, s.Rename(first, "dup"))
	id, _ = s.EntityByName("dup")
	assert.Equal(t, first, id)
	_, ok = s.EntityByName("other")
	assert.False(t, ok)

	assert.True(t, errors.Is(s.Rename(99, "x"), ErrEntityNotFound))
}

func TestPointersSurviveArenaGrowth(t *testing.T) {
	s := NewStore()
	e := s.CreateEntity("anchor")
	anchor, err := ComponentFromEntity[models.Transform](s, e)
	require.NoError(t, err)
	anchor.Translate(1, 2, 3)

	for i := 0; i < 5*pageSize; i++ {
		s.CreateEntity("filler")
	}

	again, err := ComponentFromEntity[models.Transform](s, e)
	require.NoError(t, err)
	assert.Same(t, anchor, again)
	assert.Equal(t, models.Vec3{1, 2, 3}, again.Position)
}

func TestAllComponentsInCreationOrder(t *testing.T) {
	s := NewStore()
	for _, name := range []string{"a", "b", "c"} {
		e := s.CreateEntity(name)
		r, err := CreateComponent[models.Rotator](s, e)
		require.NoError(t, err)
		r.Speed = float32(e)
	}

	all := AllComponents[models.Rotator](s)
	require.Len(t, all, 3)
	for i, r := range all {
		assert.Equal(t, models.EntityID(i), r.Owner)
		assert.Equal(t, float32(i), r.Speed)
	}
	assert.Nil(t, AllComponents[models.Camera](s))

	var ids []models.ComponentID
	for id, r := range Components[models.Rotator](s) {
		ids = append(ids, id)
		r.Speed *= 10
	}
	assert.Equal(t, []models.ComponentID{0, 1, 2}, ids)
	assert.Equal(t, float32(20), AllComponents[models.Rotator](s)[2].Speed)

	var names []string
	for e := range s.Entities() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, 3, s.ComponentCount(models.KindRotator))
}

func TestHooks(t *testing.T) {
	s := NewStore()
	var created []string
	var added []models.ComponentRef
	s.OnEntityCreated(func(e models.Entity) { created = append(created, e.Name) })
	s.OnComponentAdded(func(_ models.EntityID, ref models.ComponentRef) { added = append(added, ref) })

	e := s.CreateEntity("hooked")
	_, err := CreateComponent[models.Collider](s, e)
	require.NoError(t, err)

	assert.Equal(t, []string{"hooked"}, created)
	assert.Equal(t, []models.ComponentRef{
		{Kind: models.KindTransform, ID: 0},
		{Kind: models.KindCollider, ID: 0},
	}, added)
}

func TestConcurrentReadersOfPublishedStore(t *testing.T) {
	s := NewStore()
	for i := 0; i < 100; i++ {
		s.CreateEntity("e")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := models.EntityID(0); id < 100; id++ {
				_, err := ComponentFromEntity[models.Transform](s, id)
				assert.NoError(t, err)
			}
			assert.Len(t, AllComponents[models.Transform](s), 100)
		}()
	}
	wg.Wait()
}
