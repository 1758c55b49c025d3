package scene

import (
	"strings"

	"github.com/chewxy/math32"
	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/ecs"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
)

const deg2rad = math32.Pi / 180

func setVec(dst *models.Vec3, src vec3) {
	if src != nil {
		*dst = models.Vec3(*src)
	}
}

func setFloat(dst *float32, src *float32) {
	if src != nil {
		*dst = *src
	}
}

// applyTransform writes the present fields over the entity's existing
// transform, which may come from a prefab.
func (s *session) applyTransform(id models.EntityID, d *transformDescriptor) error {
	if d == nil {
		return nil
	}
	t, err := ecs.ComponentFromEntity[models.Transform](s.store, id)
	if err != nil {
		return err
	}
	setVec(&t.Position, d.Translate)
	if d.Rotate != nil {
		t.Rotation = models.QuatFromEulerDegrees(models.Vec3(*d.Rotate))
	}
	setVec(&t.Scale, d.Scale)
	return nil
}

func (s *session) applyRender(id models.EntityID, d *renderDescriptor) error {
	if d == nil {
		return nil
	}
	if d.Geometry == "" {
		return ErrMissingGeometry
	}
	geo, err := s.cache.Geometry(d.Geometry)
	if err != nil {
		return err
	}
	var mat models.MaterialID
	if d.Material != "" {
		mat, err = s.cache.Material(d.Material)
	} else {
		mat, err = s.cache.DefaultMaterialID()
	}
	if err != nil {
		return err
	}

	m, err := ecs.CreateComponent[models.Mesh](s.store, id)
	if err != nil {
		return err
	}
	m.Geometry = geo
	m.Material = mat
	return nil
}

func (s *session) applyCollider(id models.EntityID, d *colliderDescriptor) error {
	if d == nil {
		return nil
	}
	var typ models.ColliderType
	switch strings.ToLower(d.Type) {
	case "", "box":
		typ = models.ColliderBox
	case "ray":
		typ = models.ColliderRay
	default:
		return eris.Wrapf(ErrUnknownVariant, "collider type %q", d.Type)
	}

	c, err := ecs.CreateComponent[models.Collider](s.store, id)
	if err != nil {
		return err
	}
	c.Type = typ
	setVec(&c.Center, d.Center)
	setVec(&c.HalfWidth, d.HalfWidth)
	setVec(&c.Direction, d.Direction)
	setFloat(&c.MaxDistance, d.MaxDistance)
	return nil
}

func (s *session) applyLight(id models.EntityID, d *lightDescriptor) error {
	if d == nil {
		return nil
	}
	var typ models.LightType
	switch strings.ToLower(d.Type) {
	case "", "directional":
		typ = models.LightDirectional
	case "point":
		typ = models.LightPoint
	case "spot":
		typ = models.LightSpot
	default:
		return eris.Wrapf(ErrUnknownVariant, "light type %q", d.Type)
	}

	l, err := ecs.CreateComponent[models.Light](s.store, id)
	if err != nil {
		return err
	}
	l.Type = typ
	setVec(&l.Color, d.Color)
	setVec(&l.Direction, d.Direction)
	setFloat(&l.Intensity, d.Intensity)
	setFloat(&l.Linear, d.Linear)
	setFloat(&l.Quadratic, d.Quadratic)
	setFloat(&l.SpotInner, d.SpotInner)
	setFloat(&l.SpotOuter, d.SpotOuter)
	return nil
}

func (s *session) applyElevator(id models.EntityID, d *elevatorDescriptor) error {
	if d == nil {
		return nil
	}
	e, err := ecs.CreateComponent[models.Elevator](s.store, id)
	if err != nil {
		return err
	}
	setVec(&e.Direction, d.Direction)
	setFloat(&e.Speed, d.Speed)
	e.Automatic = d.Automatic
	return nil
}

func (s *session) applyRotator(id models.EntityID, d *rotatorDescriptor) error {
	if d == nil {
		return nil
	}
	r, err := ecs.CreateComponent[models.Rotator](s.store, id)
	if err != nil {
		return err
	}
	setVec(&r.Axis, d.Axis)
	setFloat(&r.Speed, d.Speed)
	return nil
}

func (s *session) applyCamera(id models.EntityID, d *cameraDescriptor) error {
	if d == nil {
		return nil
	}
	c, err := ecs.CreateComponent[models.Camera](s.store, id)
	if err != nil {
		return err
	}
	setVec(&c.Position, d.Position)
	setVec(&c.Forward, d.Forward)
	setVec(&c.Up, d.Up)
	if d.FOV != nil {
		c.FOV = *d.FOV * deg2rad
	}
	setFloat(&c.Near, d.Near)
	setFloat(&c.Far, d.Far)
	return nil
}

func (s *session) publish(eventType string, data any) {
	if s.bus == nil {
		return
	}
	event := bus.NewEvent(eventType, "scene", data)
	if err := s.bus.Publish(event); err != nil {
		s.log.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
	if err := s.bus.PublishToTopic(s.id.String(), event); err != nil {
		s.log.Warn("event handler failed", log.String("event", eventType), log.Error(err))
	}
}
