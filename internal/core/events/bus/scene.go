package bus

import (
	"github.com/google/uuid"

	"github.com/zeusync/scenekit/internal/core/models"
)

// Scene load event types. A loader publishes them to the default topic and to
// a topic named after the load session.
const (
	EntityCreated     = "scene.entity.created"
	ComponentAttached = "scene.component.attached"
	ParentLinked      = "scene.parent.linked"
	SceneLoaded       = "scene.loaded"
)

type EntityCreatedData struct {
	Session uuid.UUID
	Entity  models.EntityID
	Name    string
}

type ComponentAttachedData struct {
	Session   uuid.UUID
	Entity    models.EntityID
	Component models.ComponentRef
}

type ParentLinkedData struct {
	Session uuid.UUID
	Child   string
	Parent  string
	// Transform ids of the link.
	ChildTransform  models.ComponentID
	ParentTransform models.ComponentID
}

type SceneLoadedData struct {
	Session  uuid.UUID
	Path     string
	Entities int
	Errors   int
	Warnings int
}

// OfType is a filter matching events whose payload is a T.
func OfType[T any]() EventFilter {
	return func(event Event) bool {
		_, ok := event.Data().(T)
		return ok
	}
}
