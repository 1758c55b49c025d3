// Package scene decodes JSON scene documents into an ecs.Store.
//
// A load walks the document's entities in order, creates each one (directly
// or through a prefab), attaches the components its descriptor names and
// records parent references by name. Only once every entity exists are the
// references linked, so a child may appear before its parent.
package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/assets/library"
	"github.com/zeusync/scenekit/internal/core/ecs"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
)

// MaxPrefabDepth bounds prefab inclusion chains.
const MaxPrefabDepth = 8

var (
	ErrInvalidDocument  = errors.New("invalid scene document")
	ErrPrefab           = errors.New("prefab cannot be loaded")
	ErrPrefabDepth      = errors.New("prefab inclusion too deep")
	ErrUnresolvedParent = errors.New("parent reference cannot be resolved")
	ErrHierarchyCycle   = ecs.ErrHierarchyCycle
	ErrUnsupportedAsset = library.ErrUnsupportedAsset
	ErrUnknownVariant   = errors.New("unknown component variant type")
	ErrMissingGeometry  = errors.New("render component has no geometry")
)

// Shader names a shader program and its source files.
type Shader struct {
	Name     string
	Vertex   string
	Fragment string
}

// DefaultShader is registered before every load.
var DefaultShader = Shader{
	Name:     library.DefaultShaderName,
	Vertex:   "data/shaders/phong.vert",
	Fragment: "data/shaders/phong.frag",
}

// Result describes one load. Entities lists every entity created for a
// top-level descriptor, in document order, including ones whose components
// partly failed.
type Result struct {
	Session  uuid.UUID
	Entities []models.EntityID
	Errors   []error
	Warnings []string
}

// Err joins every recorded error, or returns nil.
func (r *Result) Err() error {
	return errors.Join(r.Errors...)
}

type Option func(*Loader)

func WithLogger(l log.Log) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithEventBus publishes load progress to b.
func WithEventBus(b bus.EventBus) Option {
	return func(ld *Loader) { ld.bus = b }
}

// WithBaseDir sets the directory prefab paths are resolved against. By
// default LoadFile uses the scene file's directory and Load the working
// directory.
func WithBaseDir(dir string) Option {
	return func(ld *Loader) { ld.baseDir = dir }
}

func WithDefaultShader(s Shader) Option {
	return func(ld *Loader) { ld.shader = s }
}

// Loader decodes scene documents into a store, resolving assets through a
// library cache. It is not safe for concurrent loads.
type Loader struct {
	store   *ecs.Store
	cache   *library.Cache
	log     log.Log
	bus     bus.EventBus
	baseDir string
	shader  Shader

	// active is the session in progress, if any.
	active *session
}

func NewLoader(store *ecs.Store, cache *library.Cache, opts ...Option) *Loader {
	l := &Loader{
		store:  store,
		cache:  cache,
		log:    log.NewNop(),
		shader: DefaultShader,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.bus != nil {
		store.OnEntityCreated(func(e models.Entity) {
			if s := l.active; s != nil {
				s.publish(bus.EntityCreated, bus.EntityCreatedData{Session: s.id, Entity: e.ID, Name: e.Name})
			}
		})
		store.OnComponentAdded(func(id models.EntityID, ref models.ComponentRef) {
			if s := l.active; s != nil {
				s.publish(bus.ComponentAttached, bus.ComponentAttachedData{Session: s.id, Entity: id, Component: ref})
			}
		})
	}
	return l
}

// LoadFile opens path and loads it. An error is returned only when the
// document itself cannot be read or parsed; per-entity failures are in the
// Result.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrInvalidDocument, "open %s: %v", path, err)
	}
	defer f.Close()

	base := l.baseDir
	if base == "" {
		base = filepath.Dir(path)
	}
	raw, err := decodeDocument(f)
	if err != nil {
		return nil, eris.Wrapf(err, "scene %s", path)
	}
	return l.load(ctx, path, base, raw)
}

// Load reads a scene document from r.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Result, error) {
	raw, err := decodeDocument(r)
	if err != nil {
		return nil, err
	}
	base := l.baseDir
	if base == "" {
		base = "."
	}
	return l.load(ctx, "", base, raw)
}

type session struct {
	*Loader
	id      uuid.UUID
	base    string
	log     log.Log
	result  *Result
	parents *parentTable
}

func (l *Loader) load(ctx context.Context, path, base string, entities []json.RawMessage) (*Result, error) {
	s := &session{
		Loader:  l,
		id:      uuid.New(),
		base:    base,
		parents: newParentTable(),
	}
	s.result = &Result{Session: s.id}
	l.active = s
	defer func() { l.active = nil }()
	s.log = l.log.With(log.String("session", s.id.String()), log.String("path", path))
	s.log.Info("scene load started", log.Int("entities", len(entities)))

	if _, err := l.cache.RegisterDefaultShader(l.shader.Name, l.shader.Vertex, l.shader.Fragment); err != nil {
		s.fail(eris.Wrapf(err, "default shader %s", l.shader.Name))
	}

	for i, raw := range entities {
		if err := ctx.Err(); err != nil {
			return s.result, eris.Wrap(err, "scene load cancelled")
		}
		s.decodeTopLevel(i, raw)
	}
	s.link()

	s.log.Info("scene load finished",
		log.Int("created", len(s.result.Entities)),
		log.Int("errors", len(s.result.Errors)),
		log.Int("warnings", len(s.result.Warnings)),
	)
	s.publish(bus.SceneLoaded, bus.SceneLoadedData{
		Session:  s.id,
		Path:     path,
		Entities: len(s.result.Entities),
		Errors:   len(s.result.Errors),
		Warnings: len(s.result.Warnings),
	})
	return s.result, nil
}

func (s *session) decodeTopLevel(index int, raw json.RawMessage) {
	d, err := decodeEntity(raw)
	if err != nil {
		s.fail(eris.Wrapf(err, "entity %d", index))
		return
	}
	id, err := s.decodeEntity(d, 0)
	if err != nil {
		s.fail(eris.Wrapf(err, "entity %d (%q)", index, d.Name))
		return
	}
	s.result.Entities = append(s.result.Entities, id)

	if d.Parent != nil {
		e, _ := s.store.Entity(id)
		if e.Name == "" || *d.Parent == "" {
			s.warn("entity %d: parent link with empty name (child %q, parent %q)", index, e.Name, *d.Parent)
		}
		s.parents.record(e.Name, *d.Parent)
	}
}

// decodeEntity creates the entity for d and attaches its components. Only a
// failure to create the entity at all is returned; component failures are
// recorded and the entity is kept.
func (s *session) decodeEntity(d *entityDescriptor, depth int) (models.EntityID, error) {
	var id models.EntityID
	if d.Prefab != "" {
		var err error
		if id, err = s.decodePrefab(d.Prefab, depth); err != nil {
			return 0, err
		}
		if d.Name != "" {
			if err := s.store.Rename(id, d.Name); err != nil {
				return 0, err
			}
		}
	} else {
		id = s.store.CreateEntity(d.Name)
	}

	steps := []struct {
		kind  string
		apply func() error
	}{
		{"transform", func() error { return s.applyTransform(id, d.Transform) }},
		{"render", func() error { return s.applyRender(id, d.Render) }},
		{"collider", func() error { return s.applyCollider(id, d.Collider) }},
		{"light", func() error { return s.applyLight(id, d.Light) }},
		{"elevator", func() error { return s.applyElevator(id, d.Elevator) }},
		{"rotator", func() error { return s.applyRotator(id, d.Rotator) }},
		{"camera", func() error { return s.applyCamera(id, d.Camera) }},
	}
	for _, step := range steps {
		if err := step.apply(); err != nil {
			s.fail(eris.Wrapf(err, "entity %d (%q) %s", id, d.Name, step.kind))
		}
	}
	return id, nil
}

// decodePrefab decodes the first entity of the prefab document at path.
func (s *session) decodePrefab(path string, depth int) (models.EntityID, error) {
	if depth >= MaxPrefabDepth {
		return 0, eris.Wrapf(ErrPrefabDepth, "prefab %s at depth %d", path, depth)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.base, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(ErrPrefab, "open %s: %v", path, err)
	}
	defer f.Close()

	raw, err := decodeDocument(f)
	if err != nil {
		return 0, eris.Wrapf(err, "prefab %s", path)
	}
	if len(raw) == 0 {
		return 0, eris.Wrapf(ErrPrefab, "prefab %s has no entities", path)
	}
	if len(raw) > 1 {
		s.warn("prefab %s: only the first of %d entities is used", path, len(raw))
	}
	d, err := decodeEntity(raw[0])
	if err != nil {
		return 0, eris.Wrapf(err, "prefab %s", path)
	}
	s.log.Debug("prefab included", log.String("prefab", path), log.Int("depth", depth))
	return s.decodeEntity(d, depth+1)
}

func (s *session) fail(err error) {
	s.log.Warn("scene load step failed", log.Error(err))
	s.result.Errors = append(s.result.Errors, err)
}

func (s *session) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.log.Warn("scene load warning", log.String("warning", msg))
	s.result.Warnings = append(s.result.Warnings, msg)
}
