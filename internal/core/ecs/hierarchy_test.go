package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenekit/internal/core/models"
)

func transformOf(t *testing.T, s *Store, e models.EntityID) (models.ComponentID, *models.Transform) {
	t.Helper()
	cid, err := ComponentIDFromEntity[models.Transform](s, e)
	require.NoError(t, err)
	tr, err := ComponentByID[models.Transform](s, cid)
	require.NoError(t, err)
	return cid, tr
}

func TestSetParentAndChildren(t *testing.T) {
	s := NewStore()
	root, _ := transformOf(t, s, s.CreateEntity("root"))
	a, at := transformOf(t, s, s.CreateEntity("a"))
	b, _ := transformOf(t, s, s.CreateEntity("b"))

	require.NoError(t, s.SetParent(a, root))
	require.NoError(t, s.SetParent(b, root))
	assert.Equal(t, root, at.Parent)
	assert.Equal(t, []models.ComponentID{a, b}, s.Children(root))
	assert.Empty(t, s.Children(a))

	require.NoError(t, s.SetParent(a, models.NoParent))
	assert.False(t, at.HasParent())
}

func TestSetParentRefusesCycles(t *testing.T) {
	s := NewStore()
	a, _ := transformOf(t, s, s.CreateEntity("a"))
	b, _ := transformOf(t, s, s.CreateEntity("b"))
	c, _ := transformOf(t, s, s.CreateEntity("c"))

	require.NoError(t, s.SetParent(b, a))
	require.NoError(t, s.SetParent(c, b))

	assert.True(t, errors.Is(s.SetParent(a, c), ErrHierarchyCycle))
	assert.True(t, errors.Is(s.SetParent(a, a), ErrHierarchyCycle))
	assert.True(t, errors.Is(s.SetParent(a, 99), ErrComponentOutOfRange))
}

func TestWorldMatrix(t *testing.T) {
	s := NewStore()
	p, pt := transformOf(t, s, s.CreateEntity("parent"))
	c, ct := transformOf(t, s, s.CreateEntity("child"))
	pt.Translate(10, 0, 0)
	pt.Scale = models.Vec3{2, 2, 2}
	ct.Translate(0, 1, 0)
	require.NoError(t, s.SetParent(c, p))

	m, err := s.WorldMatrix(c)
	require.NoError(t, err)
	assert.Equal(t, models.Vec3{10, 2, 0}, m.Translation())

	// corrupt the graph directly; the walk must still terminate
	pt.Parent = c
	_, err = s.WorldMatrix(c)
	assert.True(t, errors.Is(err, ErrHierarchyCycle))
}
