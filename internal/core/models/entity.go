package models

// EntityID identifies an entity for the lifetime of a store. Ids are never reused.
type EntityID uint64

// ComponentID is the position of a component inside its kind's dense arena.
type ComponentID int

// NoParent marks a root transform.
const NoParent ComponentID = -1

// Kind enumerates the closed set of component variants.
type Kind uint8

const (
	KindTransform Kind = iota
	KindMesh
	KindCollider
	KindLight
	KindElevator
	KindRotator
	KindCamera

	kindCount
)

// KindCount is the number of component variants.
const KindCount = int(kindCount)

var kindNames = [...]string{
	KindTransform: "transform",
	KindMesh:      "mesh",
	KindCollider:  "collider",
	KindLight:     "light",
	KindElevator:  "elevator",
	KindRotator:   "rotator",
	KindCamera:    "camera",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ComponentRef points at one component owned by an entity.
type ComponentRef struct {
	Kind Kind
	ID   ComponentID
}

// Entity is a named identity owning an ordered list of components.
type Entity struct {
	ID         EntityID
	Name       string
	Components []ComponentRef
}

// Component returns the id of the first component of kind k.
func (e *Entity) Component(k Kind) (ComponentID, bool) {
	for _, ref := range e.Components {
		if ref.Kind == k {
			return ref.ID, true
		}
	}
	return 0, false
}

// HasComponent reports whether the entity owns a component of kind k.
func (e *Entity) HasComponent(k Kind) bool {
	_, ok := e.Component(k)
	return ok
}

// Kinds lists the kinds of the entity's components in attachment order.
func (e *Entity) Kinds() []Kind {
	out := make([]Kind, len(e.Components))
	for i, ref := range e.Components {
		out[i] = ref.Kind
	}
	return out
}
