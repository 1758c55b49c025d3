package scene

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// document is a scene or prefab file. Entities stay raw so one malformed
// entity does not reject its siblings.
type document struct {
	Entities *[]json.RawMessage `json:"entities"`
}

type entityDescriptor struct {
	Name      string               `json:"name"`
	Prefab    string               `json:"prefab"`
	Parent    *string              `json:"parent"`
	Transform *transformDescriptor `json:"transform"`
	Render    *renderDescriptor    `json:"render"`
	Collider  *colliderDescriptor  `json:"collider"`
	Light     *lightDescriptor     `json:"light"`
	Elevator  *elevatorDescriptor  `json:"elevator"`
	Rotator   *rotatorDescriptor   `json:"rotator"`
	Camera    *cameraDescriptor    `json:"camera"`
}

type vec3 = *[3]float32

type transformDescriptor struct {
	Translate vec3 `json:"translate"`
	// Euler angles in degrees.
	Rotate vec3 `json:"rotate"`
	Scale  vec3 `json:"scale"`
}

type renderDescriptor struct {
	Geometry string `json:"geometry"`
	Material string `json:"material"`
}

type colliderDescriptor struct {
	Type        string   `json:"type"`
	Center      vec3     `json:"center"`
	HalfWidth   vec3     `json:"halfwidth"`
	Direction   vec3     `json:"direction"`
	MaxDistance *float32 `json:"max_distance"`
}

type lightDescriptor struct {
	Type      string   `json:"type"`
	Color     vec3     `json:"color"`
	Direction vec3     `json:"direction"`
	Intensity *float32 `json:"intensity"`
	Linear    *float32 `json:"linear_att"`
	Quadratic *float32 `json:"quadratic_att"`
	SpotInner *float32 `json:"spot_inner"`
	SpotOuter *float32 `json:"spot_outer"`
}

type elevatorDescriptor struct {
	Direction vec3     `json:"direction"`
	Speed     *float32 `json:"Velocitat"`
	Automatic bool     `json:"Automatic"`
}

type rotatorDescriptor struct {
	Axis  vec3     `json:"axis"`
	Speed *float32 `json:"speed"`
}

type cameraDescriptor struct {
	Position vec3 `json:"position"`
	Forward  vec3 `json:"forward"`
	Up       vec3 `json:"up"`
	// Vertical field of view in degrees.
	FOV  *float32 `json:"fov"`
	Near *float32 `json:"near"`
	Far  *float32 `json:"far"`
}

func decodeDocument(r io.Reader) ([]json.RawMessage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "read scene document")
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(ErrInvalidDocument, "%v", err)
	}
	if doc.Entities == nil {
		return nil, eris.Wrap(ErrInvalidDocument, "missing entities")
	}
	return *doc.Entities, nil
}

func decodeEntity(raw json.RawMessage) (*entityDescriptor, error) {
	var d entityDescriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, eris.Wrapf(ErrInvalidDocument, "entity: %v", err)
	}
	return &d, nil
}
