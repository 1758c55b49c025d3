package models

// Component is the closed set of component variants a store can hold.
// Adding a variant means adding it here and to Kind.
type Component interface {
	Transform | Mesh | Collider | Light | Elevator | Rotator | Camera
}

// ComponentPtr is satisfied by a pointer to a variant. Stores use it to set
// the owner back-reference generically.
type ComponentPtr[T Component] interface {
	*T
	Kind() Kind
	OwnerID() EntityID
	SetOwner(EntityID)
}

// Owned carries the owner back-reference shared by every variant. It is a
// relation only; the store owns component lifetime.
type Owned struct {
	Owner EntityID
}

func (o *Owned) OwnerID() EntityID   { return o.Owner }
func (o *Owned) SetOwner(e EntityID) { o.Owner = e }

// Transform places an entity relative to its parent transform.
type Transform struct {
	Owned
	Position Vec3
	Rotation Quat
	Scale    Vec3
	// Parent is NoParent or the component id of another Transform.
	Parent ComponentID
}

func (Transform) Kind() Kind { return KindTransform }

// NewTransform returns the identity transform with no parent.
func NewTransform() Transform {
	return Transform{
		Rotation: IdentityQuat,
		Scale:    Vec3{1, 1, 1},
		Parent:   NoParent,
	}
}

func (t *Transform) Translate(x, y, z float32) {
	t.Position = t.Position.Add(Vec3{x, y, z})
}

// LocalMatrix is translate * rotate * scale relative to the parent.
func (t *Transform) LocalMatrix() Mat4 {
	return Compose(t.Position, t.Rotation, t.Scale)
}

// HasParent reports whether the transform is linked below another one.
func (t *Transform) HasParent() bool {
	return t.Parent != NoParent
}

// GeometryID and MaterialID are opaque handles into the graphics
// collaborator's asset caches.
type (
	GeometryID int
	MaterialID int
)

type Mesh struct {
	Owned
	Geometry GeometryID
	Material MaterialID
}

func (Mesh) Kind() Kind { return KindMesh }

type ColliderType uint8

const (
	ColliderBox ColliderType = iota
	ColliderRay
)

func (c ColliderType) String() string {
	if c == ColliderRay {
		return "ray"
	}
	return "box"
}

type Collider struct {
	Owned
	Type        ColliderType
	Center      Vec3
	HalfWidth   Vec3
	Direction   Vec3
	MaxDistance float32
}

func (Collider) Kind() Kind { return KindCollider }

type LightType uint8

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

func (l LightType) String() string {
	switch l {
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	default:
		return "directional"
	}
}

type Light struct {
	Owned
	Type      LightType
	Color     Vec3
	Direction Vec3
	Intensity float32
	Linear    float32
	Quadratic float32
	// Spot cone angles in degrees.
	SpotInner float32
	SpotOuter float32
}

func (Light) Kind() Kind { return KindLight }

// Elevator describes periodic platform motion. The motion itself is run by
// gameplay code; the store only holds the parameters.
type Elevator struct {
	Owned
	Direction Vec3
	Speed     float32
	Automatic bool
}

func (Elevator) Kind() Kind { return KindElevator }

type Rotator struct {
	Owned
	Axis  Vec3
	Speed float32
}

func (Rotator) Kind() Kind { return KindRotator }

type Camera struct {
	Owned
	Position Vec3
	Forward  Vec3
	Up       Vec3
	// FOV is the vertical field of view in radians.
	FOV  float32
	Near float32
	Far  float32
}

func (Camera) Kind() Kind { return KindCamera }

// NewCamera returns a camera looking down -Z with a 60 degree field of view.
func NewCamera() Camera {
	return Camera{
		Forward: Vec3{0, 0, -1},
		Up:      Vec3{0, 1, 0},
		FOV:     60 * deg2rad,
		Near:    0.1,
		Far:     10000,
	}
}

// Projection builds the camera's perspective matrix for the given aspect.
func (c *Camera) Projection(aspect float32) Mat4 {
	return Perspective(c.FOV, aspect, c.Near, c.Far)
}
