package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenekit/internal/core/assets/geometry"
	"github.com/zeusync/scenekit/internal/core/assets/library"
	"github.com/zeusync/scenekit/internal/core/ecs"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
)

type fixture struct {
	dir     string
	store   *ecs.Store
	gfx     *library.Memory
	cache   *library.Cache
	loader  *Loader
	decodes map[string]int
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		dir:     t.TempDir(),
		store:   ecs.NewStore(),
		gfx:     library.NewMemory(),
		decodes: make(map[string]int),
	}
	f.cache = library.NewCache(f.gfx, library.WithRoot(f.dir), library.WithDecoders(library.Decoders{
		Mesh: func(path string) (*geometry.Buffers, error) {
			f.decodes[filepath.Base(path)]++
			if strings.HasSuffix(path, ".fbx") {
				return nil, library.ErrUnsupportedAsset
			}
			return &geometry.Buffers{
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				Indices:   []uint32{0, 1, 2},
			}, nil
		},
	}))
	f.loader = NewLoader(f.store, f.cache, opts...)
	return f
}

func (f *fixture) write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (f *fixture) load(t *testing.T, body string) *Result {
	t.Helper()
	res, err := f.loader.LoadFile(context.Background(), f.write(t, "scene.json", body))
	require.NoError(t, err)
	return res
}

func transformID(t *testing.T, s *ecs.Store, name string) models.ComponentID {
	t.Helper()
	id, ok := s.EntityByName(name)
	require.True(t, ok, name)
	cid, err := ecs.ComponentIDFromEntity[models.Transform](s, id)
	require.NoError(t, err)
	return cid
}

func TestChildBeforeParentIsLinked(t *testing.T) {
	f := newFixture(t)
	res := f.load(t, `{"entities": [
		{"name": "filler"},
		{"name": "child", "parent": "parent", "transform": {"translate": [0, 1, 0]}},
		{"name": "parent", "transform": {"translate": [5, 0, 0]}}
	]}`)
	require.NoError(t, res.Err())
	assert.Len(t, res.Entities, 3)
	assert.Empty(t, res.Warnings)

	child, err := ecs.ComponentFromName[models.Transform](f.store, "child")
	require.NoError(t, err)
	assert.Equal(t, transformID(t, f.store, "parent"), child.Parent)

	world, err := f.store.WorldMatrix(transformID(t, f.store, "child"))
	require.NoError(t, err)
	assert.Equal(t, models.Vec3{5, 1, 0}, world.Translation())
}

func TestComponentsAreLoaded(t *testing.T) {
	f := newFixture(t)
	res := f.load(t, `{"entities": [{
		"name": "platform",
		"transform": {"translate": [1, 2, 3], "scale": [2, 2, 2]},
		"render": {"geometry": "box.obj"},
		"collider": {"type": "box", "center": [0, 1, 0], "halfwidth": [1, 1, 1]},
		"light": {"type": "spot", "color": [1, 0, 0], "intensity": 4, "spot_inner": 10, "spot_outer": 20},
		"elevator": {"direction": [0, 1, 0], "Velocitat": 2.5, "Automatic": true},
		"rotator": {"axis": [0, 1, 0], "speed": 90},
		"camera": {"position": [0, 0, 5], "fov": 90, "far": 100}
	}]}`)
	require.NoError(t, res.Err())
	id := res.Entities[0]

	tr, _ := ecs.ComponentFromEntity[models.Transform](f.store, id)
	assert.Equal(t, models.Vec3{1, 2, 3}, tr.Position)
	assert.Equal(t, models.Vec3{2, 2, 2}, tr.Scale)
	assert.Equal(t, models.IdentityQuat, tr.Rotation)

	mesh, err := ecs.ComponentFromEntity[models.Mesh](f.store, id)
	require.NoError(t, err)
	mat, ok := f.gfx.Material(mesh.Material)
	require.True(t, ok)
	assert.Equal(t, "default", mat.Name)

	col, _ := ecs.ComponentFromEntity[models.Collider](f.store, id)
	assert.Equal(t, models.ColliderBox, col.Type)
	assert.Equal(t, models.Vec3{0, 1, 0}, col.Center)

	light, _ := ecs.ComponentFromEntity[models.Light](f.store, id)
	assert.Equal(t, models.LightSpot, light.Type)
	assert.Equal(t, float32(4), light.Intensity)
	assert.Equal(t, float32(20), light.SpotOuter)

	el, _ := ecs.ComponentFromEntity[models.Elevator](f.store, id)
	assert.Equal(t, models.Vec3{0, 1, 0}, el.Direction)
	assert.Equal(t, float32(2.5), el.Speed)
	assert.True(t, el.Automatic)

	rot, _ := ecs.ComponentFromEntity[models.Rotator](f.store, id)
	assert.Equal(t, float32(90), rot.Speed)

	cam, _ := ecs.ComponentFromEntity[models.Camera](f.store, id)
	assert.Equal(t, models.Vec3{0, 0, 5}, cam.Position)
	assert.InDelta(t, 1.5707963, cam.FOV, 1e-6)
	assert.Equal(t, float32(100), cam.Far)
	assert.Equal(t, float32(0.1), cam.Near)

	e, _ := f.store.Entity(id)
	assert.Len(t, e.Components, int(models.KindCount))
}

func TestSharedGeometryDecodedOnce(t *testing.T) {
	f := newFixture(t)
	res := f.load(t, `{"entities": [
		{"name": "a", "render": {"geometry": "crate.obj"}},
		{"name": "b", "render": {"geometry": "./crate.obj"}}
	]}`)
	require.NoError(t, res.Err())
	assert.Equal(t, 1, f.decodes["crate.obj"])

	a, _ := ecs.ComponentFromName[models.Mesh](f.store, "a")
	b, _ := ecs.ComponentFromName[models.Mesh](f.store, "b")
	assert.Equal(t, a.Geometry, b.Geometry)
	assert.Equal(t, a.Material, b.Material)
}

func TestPrefabOverridesOnlyName(t *testing.T) {
	f := newFixture(t)
	f.write(t, "prefabs/lamp.json", `{"entities": [{
		"name": "lamp",
		"transform": {"translate": [1, 1, 1]},
		"light": {"type": "point", "intensity": 7}
	}]}`)
	res := f.load(t, `{"entities": [
		{"name": "hall_lamp", "prefab": "prefabs/lamp.json"},
		{"prefab": "prefabs/lamp.json"}
	]}`)
	require.NoError(t, res.Err())
	require.Len(t, res.Entities, 2)

	hall, err := f.store.Entity(res.Entities[0])
	require.NoError(t, err)
	assert.Equal(t, "hall_lamp", hall.Name)
	light, _ := ecs.ComponentFromEntity[models.Light](f.store, hall.ID)
	assert.Equal(t, models.LightPoint, light.Type)
	assert.Equal(t, float32(7), light.Intensity)
	tr, _ := ecs.ComponentFromEntity[models.Transform](f.store, hall.ID)
	assert.Equal(t, models.Vec3{1, 1, 1}, tr.Position)

	unnamed, _ := f.store.Entity(res.Entities[1])
	assert.Equal(t, "lamp", unnamed.Name)
	assert.Equal(t, 2, f.store.EntityCount())
}

func TestPrefabIncludingDescriptorAppliesOnTop(t *testing.T) {
	f := newFixture(t)
	f.write(t, "crate.json", `{"entities": [{"name": "crate", "rotator": {"speed": 1},
		"transform": {"translate": [1, 1, 1], "scale": [3, 3, 3]}}]}`)
	res := f.load(t, `{"entities": [
		{"name": "crate_a", "prefab": "crate.json", "transform": {"translate": [9, 0, 0]}, "rotator": {"speed": 2}}
	]}`)

	require.Len(t, res.Entities, 1)
	tr, _ := ecs.ComponentFromEntity[models.Transform](f.store, res.Entities[0])
	assert.Equal(t, models.Vec3{9, 0, 0}, tr.Position)
	assert.Equal(t, models.Vec3{3, 3, 3}, tr.Scale)

	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], ecs.ErrComponentExists))
	rot, _ := ecs.ComponentFromEntity[models.Rotator](f.store, res.Entities[0])
	assert.Equal(t, float32(1), rot.Speed)
}

func TestPrefabFailuresAreRecorded(t *testing.T) {
	f := newFixture(t)
	f.write(t, "loop.json", `{"entities": [{"prefab": "loop.json"}]}`)
	f.write(t, "empty.json", `{"entities": []}`)
	f.write(t, "broken.json", `{"entities": [`)

	res := f.load(t, `{"entities": [
		{"name": "missing", "prefab": "nope.json"},
		{"name": "loop", "prefab": "loop.json"},
		{"name": "empty", "prefab": "empty.json"},
		{"name": "broken", "prefab": "broken.json"},
		{"name": "survivor"}
	]}`)
	require.Len(t, res.Errors, 4)
	assert.True(t, errors.Is(res.Errors[0], ErrPrefab))
	assert.True(t, errors.Is(res.Errors[1], ErrPrefabDepth))
	assert.True(t, errors.Is(res.Errors[2], ErrPrefab))
	assert.True(t, errors.Is(res.Errors[3], ErrInvalidDocument))

	require.Len(t, res.Entities, 1)
	e, _ := f.store.Entity(res.Entities[0])
	assert.Equal(t, "survivor", e.Name)
}

func TestInvalidDocument(t *testing.T) {
	for name, body := range map[string]string{
		"malformed":        `{"entities": [`,
		"missing entities": `{"things": []}`,
		"wrong type":       `{"entities": 3}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.loader.LoadFile(context.Background(), f.write(t, "scene.json", body))
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
			assert.Zero(t, f.store.EntityCount())
		})
	}

	f := newFixture(t)
	_, err := f.loader.LoadFile(context.Background(), filepath.Join(f.dir, "absent.json"))
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestParentProblems(t *testing.T) {
	f := newFixture(t)
	res := f.load(t, `{"entities": [
		{"name": "orphan", "parent": "ghost"},
		{"name": "", "parent": "root"},
		{"name": "root"},
		{"name": "a", "parent": "b"},
		{"name": "b", "parent": "a"},
		{"name": "self", "parent": "self"}
	]}`)

	assert.Len(t, res.Entities, 6)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "empty name")

	var unresolved, cycles int
	for _, err := range res.Errors {
		switch {
		case errors.Is(err, ErrUnresolvedParent):
			unresolved++
		case errors.Is(err, ErrHierarchyCycle):
			cycles++
		}
	}
	assert.Equal(t, 1, unresolved)
	assert.Equal(t, 2, cycles)
	assert.Len(t, res.Errors, 3)

	// the empty-named child is still linked by name
	anon, _ := ecs.ComponentFromName[models.Transform](f.store, "")
	assert.Equal(t, transformID(t, f.store, "root"), anon.Parent)
	a, _ := ecs.ComponentFromName[models.Transform](f.store, "a")
	assert.Equal(t, transformID(t, f.store, "b"), a.Parent)
	b, _ := ecs.ComponentFromName[models.Transform](f.store, "b")
	assert.False(t, b.HasParent())
}

func TestLaterParentRecordWins(t *testing.T) {
	f := newFixture(t)
	res := f.load(t, `{"entities": [
		{"name": "first"},
		{"name": "second"},
		{"name": "twin", "parent": "first"},
		{"name": "twin", "parent": "second"}
	]}`)
	require.NoError(t, res.Err())

	// both records name the first "twin"; the later parent is applied
	twin, _ := ecs.ComponentFromName[models.Transform](f.store, "twin")
	assert.Equal(t, transformID(t, f.store, "second"), twin.Parent)
	last, _ := ecs.ComponentFromEntity[models.Transform](f.store, res.Entities[3])
	assert.False(t, last.HasParent())
}

func TestComponentFailuresKeepEntity(t *testing.T) {
	f := newFixture(t)
	res := f.load(t, `{"entities": [
		{"name": "a", "render": {"geometry": "model.fbx"}, "light": {"type": "area"}, "collider": {"type": "sphere"}},
		{"name": "b", "render": {}},
		{"name": "c", "render": {"geometry": "ok.obj", "material": "missing.json"}},
		{"name": "d", "transform": {"translate": "up"}}
	]}`)

	assert.Len(t, res.Entities, 3)
	require.Len(t, res.Errors, 6)
	assert.True(t, errors.Is(res.Errors[0], ErrUnsupportedAsset))
	assert.True(t, errors.Is(res.Errors[1], ErrUnknownVariant))
	assert.True(t, errors.Is(res.Errors[2], ErrUnknownVariant))
	assert.True(t, errors.Is(res.Errors[3], ErrMissingGeometry))
	assert.Error(t, res.Errors[4])
	assert.True(t, errors.Is(res.Errors[5], ErrInvalidDocument))
	assert.Error(t, res.Err())

	_, err := ecs.ComponentFromName[models.Mesh](f.store, "c")
	assert.True(t, errors.Is(err, ecs.ErrComponentNotFound))
}

func TestLoadFromReaderUsesBaseDir(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, WithBaseDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.json"), []byte(`{"entities": [{"name": "p", "rotator": {}}]}`), 0o644))

	res, err := f.loader.Load(context.Background(), strings.NewReader(`{"entities": [{"prefab": "p.json"}]}`))
	require.NoError(t, err)
	require.NoError(t, res.Err())
	_, err = ecs.ComponentFromName[models.Rotator](f.store, "p")
	assert.NoError(t, err)
}

func TestLoadRegistersDefaultShader(t *testing.T) {
	f := newFixture(t, WithDefaultShader(Shader{Name: "flat", Vertex: "flat.vert", Fragment: "flat.frag"}))
	f.load(t, `{"entities": []}`)
	f.load(t, `{"entities": []}`)

	id, err := f.cache.Shader("flat")
	require.NoError(t, err)
	shader, ok := f.gfx.Shader(id)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.dir, "flat.vert"), shader.Vertex)
	_, _, _, shaders := f.gfx.Counts()
	assert.Equal(t, 1, shaders)
	assert.Equal(t, "flat", f.cache.DefaultShader())

	mat, err := f.cache.DefaultMaterial()
	require.NoError(t, err)
	assert.Equal(t, id, mat.Shader)
}

func TestCancelledLoad(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := f.loader.LoadFile(ctx, f.write(t, "scene.json", `{"entities": [{"name": "a"}]}`))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Entities)
}

func TestEventsArePublished(t *testing.T) {
	b := bus.New()
	f := newFixture(t, WithEventBus(b))

	var created []string
	var attached []models.Kind
	var linked []bus.ParentLinkedData
	var loaded []bus.SceneLoadedData
	_, _ = b.Subscribe(bus.EntityCreated, func(e bus.Event) error {
		created = append(created, e.Data().(bus.EntityCreatedData).Name)
		return nil
	})
	_, _ = b.Subscribe(bus.ComponentAttached, func(e bus.Event) error {
		attached = append(attached, e.Data().(bus.ComponentAttachedData).Component.Kind)
		return nil
	})
	_, _ = b.Subscribe(bus.ParentLinked, func(e bus.Event) error {
		linked = append(linked, e.Data().(bus.ParentLinkedData))
		return nil
	})
	_, _ = b.Subscribe(bus.SceneLoaded, func(e bus.Event) error {
		loaded = append(loaded, e.Data().(bus.SceneLoadedData))
		return nil
	})

	res := f.load(t, `{"entities": [
		{"name": "kid", "parent": "mom", "rotator": {}},
		{"name": "mom"}
	]}`)
	require.NoError(t, res.Err())

	assert.Equal(t, []string{"kid", "mom"}, created)
	assert.Equal(t, []models.Kind{models.KindTransform, models.KindRotator, models.KindTransform}, attached)
	require.Len(t, linked, 1)
	assert.Equal(t, "mom", linked[0].Parent)
	require.Len(t, loaded, 1)
	assert.Equal(t, res.Session, loaded[0].Session)
	assert.Equal(t, 2, loaded[0].Entities)

	// entities created outside a load are not reported
	f.store.CreateEntity("manual")
	assert.Len(t, created, 2)
}

func TestBuildTree(t *testing.T) {
	f := newFixture(t)
	res := f.load(t, `{"entities": [
		{"name": "leaf", "parent": "branch"},
		{"name": "root"},
		{"name": "branch", "parent": "root"},
		{"name": "other"}
	]}`)
	require.NoError(t, res.Err())

	roots := BuildTree(f.store)
	require.Len(t, roots, 2)
	assert.Equal(t, "root", roots[0].Name)
	assert.Equal(t, "other", roots[1].Name)

	var visited []string
	roots[0].Walk(func(n *Node, depth int) bool {
		visited = append(visited, strings.Repeat("-", depth)+n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "-branch", "--leaf"}, visited)
}
