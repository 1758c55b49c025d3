package ecs

import (
	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/models"
)

// SetParent links transform child below transform parent. Pass
// models.NoParent to detach. Links that would close a cycle are refused.
func (s *Store) SetParent(child, parent models.ComponentID) error {
	c, err := ComponentByID[models.Transform](s, child)
	if err != nil {
		return err
	}
	if parent == models.NoParent {
		c.Parent = models.NoParent
		return nil
	}
	if _, err := ComponentByID[models.Transform](s, parent); err != nil {
		return err
	}

	// walk up from parent; meeting child means child is already an ancestor
	seen := 0
	total := s.ComponentCount(models.KindTransform)
	for at := parent; at != models.NoParent; seen++ {
		if at == child {
			return eris.Wrapf(ErrHierarchyCycle, "transform %d below %d", child, parent)
		}
		if seen > total {
			return eris.Wrapf(ErrHierarchyCycle, "ancestors of transform %d", parent)
		}
		t, err := ComponentByID[models.Transform](s, at)
		if err != nil {
			return err
		}
		at = t.Parent
	}

	c.Parent = parent
	return nil
}

// Children derives the direct children of transform id by scanning every
// transform. Children are not stored on the transform itself.
func (s *Store) Children(id models.ComponentID) []models.ComponentID {
	var out []models.ComponentID
	for cid, t := range Components[models.Transform](s) {
		if t.Parent == id {
			out = append(out, cid)
		}
	}
	return out
}

// WorldMatrix composes the local matrices from the root down to transform id.
func (s *Store) WorldMatrix(id models.ComponentID) (models.Mat4, error) {
	total := s.ComponentCount(models.KindTransform)
	m := models.IdentityMat4
	var chain []models.Mat4
	for at := id; at != models.NoParent; {
		if len(chain) > total {
			return m, eris.Wrapf(ErrHierarchyCycle, "ancestors of transform %d", id)
		}
		t, err := ComponentByID[models.Transform](s, at)
		if err != nil {
			return m, err
		}
		chain = append(chain, t.LocalMatrix())
		at = t.Parent
	}
	for i := len(chain) - 1; i >= 0; i-- {
		m = m.Mul(chain[i])
	}
	return m, nil
}
