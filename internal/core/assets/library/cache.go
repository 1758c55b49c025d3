package library

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"

	"github.com/zeusync/scenekit/internal/core/assets/binmesh"
	"github.com/zeusync/scenekit/internal/core/assets/geometry"
	"github.com/zeusync/scenekit/internal/core/assets/objmesh"
	"github.com/zeusync/scenekit/internal/core/assets/tga"
	"github.com/zeusync/scenekit/internal/core/models"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/pkg/concurrent"
)

var (
	ErrUnsupportedAsset = errors.New("unsupported asset extension")
	ErrUnknownShader    = errors.New("shader not registered")
)

// ResourceKind names a per-kind cache.
type ResourceKind string

const (
	KindGeometry ResourceKind = "geometry"
	KindTexture  ResourceKind = "texture"
	KindMaterial ResourceKind = "material"
	KindShader   ResourceKind = "shader"
)

// Decoders are the functions the cache calls on a miss.
type Decoders struct {
	Mesh  func(path string) (*geometry.Buffers, error)
	Image func(path string) (*tga.Image, error)
}

// DefaultDecoders dispatches meshes on extension: .obj is text, .bin and
// .mesh are the chunked container. Images must be .tga. Decoder warnings go
// to l.
func DefaultDecoders(l log.Log) Decoders {
	return Decoders{
		Mesh: func(path string) (*geometry.Buffers, error) {
			switch strings.ToLower(filepath.Ext(path)) {
			case ".obj":
				return objmesh.DecodeFile(path, objmesh.WithLogger(l))
			case ".bin", ".mesh":
				return binmesh.DecodeFile(path)
			default:
				return nil, eris.Wrapf(ErrUnsupportedAsset, "mesh %s", path)
			}
		},
		Image: func(path string) (*tga.Image, error) {
			if strings.ToLower(filepath.Ext(path)) != ".tga" {
				return nil, eris.Wrapf(ErrUnsupportedAsset, "image %s", path)
			}
			return tga.DecodeFile(path)
		},
	}
}

// Stats counts decodes (misses) and reuses (hits) per resource kind.
type Stats struct {
	Decodes map[ResourceKind]int
	Hits    map[ResourceKind]int
}

type CacheOption func(*Cache)

func WithDecoders(d Decoders) CacheOption {
	return func(c *Cache) { c.decoders = d }
}

func WithLogger(l log.Log) CacheOption {
	return func(c *Cache) { c.log = l }
}

// WithRoot sets the directory relative asset paths are resolved against.
func WithRoot(dir string) CacheOption {
	return func(c *Cache) { c.root = dir }
}

// WithCaching(false) decodes on every request. Handles are still valid but
// repeated paths produce duplicate assets.
func WithCaching(enabled bool) CacheOption {
	return func(c *Cache) { c.enabled = enabled }
}

// Cache maps resolved paths to handles, one map per resource kind. It is the
// session-scoped state of a scene load: create one per session, or Reset it.
type Cache struct {
	gfx      Graphics
	decoders Decoders
	log      log.Log
	root     string
	enabled  bool

	defaultShader string

	mu      sync.Mutex
	handles map[ResourceKind]map[string]int
	stats   Stats
	group   singleflight.Group
}

func NewCache(gfx Graphics, opts ...CacheOption) *Cache {
	c := &Cache{
		gfx:     gfx,
		log:     log.NewNop(),
		root:    ".",
		enabled: true,

		defaultShader: DefaultShaderName,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoders.Mesh == nil && c.decoders.Image == nil {
		c.decoders = DefaultDecoders(c.log)
	}
	c.Reset()
	return c
}

// Graphics returns the collaborator handles are created in.
func (c *Cache) Graphics() Graphics {
	return c.gfx
}

// Resolve joins a relative path onto the cache root and cleans it. The
// result is the cache key.
func (c *Cache) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.root, path)
}

// Reset drops every cached handle and counter. Assets already created in the
// collaborator are not released.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles = map[ResourceKind]map[string]int{
		KindGeometry: {},
		KindTexture:  {},
		KindMaterial: {},
		KindShader:   {},
	}
	c.stats = Stats{
		Decodes: make(map[ResourceKind]int),
		Hits:    make(map[ResourceKind]int),
	}
}

// Stats returns a copy of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := Stats{
		Decodes: make(map[ResourceKind]int, len(c.stats.Decodes)),
		Hits:    make(map[ResourceKind]int, len(c.stats.Hits)),
	}
	for k, v := range c.stats.Decodes {
		out.Decodes[k] = v
	}
	for k, v := range c.stats.Hits {
		out.Hits[k] = v
	}
	return out
}

// Lookup returns the cached handle for key without loading.
func (c *Cache) Lookup(kind ResourceKind, key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[kind][key]
	return h, ok
}

// Geometry loads path or reuses its handle.
func (c *Cache) Geometry(path string) (models.GeometryID, error) {
	key := c.Resolve(path)
	h, err := c.loadOrReuse(KindGeometry, key, func() (int, error) {
		b, err := c.decoders.Mesh(key)
		if err != nil {
			return 0, err
		}
		id, err := c.gfx.CreateGeometry(key, b)
		return int(id), err
	})
	return models.GeometryID(h), err
}

// Preload decodes geometry paths with up to workers decodes in flight, so a
// following scene load only hits the cache. It stops at the first failure.
func (c *Cache) Preload(ctx context.Context, paths []string, workers int) error {
	return concurrent.ForEach(ctx, paths, workers, func(_ context.Context, path string) error {
		_, err := c.Geometry(path)
		return err
	})
}

// Texture loads path or reuses its handle.
func (c *Cache) Texture(path string) (TextureID, error) {
	return c.texture(c.Resolve(path))
}

// texture loads an already resolved key.
func (c *Cache) texture(key string) (TextureID, error) {
	h, err := c.loadOrReuse(KindTexture, key, func() (int, error) {
		img, err := c.decoders.Image(key)
		if err != nil {
			return 0, err
		}
		id, err := c.gfx.CreateTexture(key, img)
		return int(id), err
	})
	if err != nil {
		return NoTexture, err
	}
	return TextureID(h), nil
}

// RegisterShader creates a shader program once per name. Later calls with
// the same name return the first handle.
func (c *Cache) RegisterShader(name, vertexPath, fragmentPath string) (ShaderID, error) {
	h, err := c.loadOrReuse(KindShader, name, func() (int, error) {
		id, err := c.gfx.CreateShader(name, c.Resolve(vertexPath), c.Resolve(fragmentPath))
		return int(id), err
	})
	return ShaderID(h), err
}

// RegisterDefaultShader registers a shader and makes it the one materials
// without an explicit shader bind to.
func (c *Cache) RegisterDefaultShader(name, vertexPath, fragmentPath string) (ShaderID, error) {
	id, err := c.RegisterShader(name, vertexPath, fragmentPath)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.defaultShader = name
	c.mu.Unlock()
	return id, nil
}

// DefaultShader returns the name materials fall back to.
func (c *Cache) DefaultShader() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.defaultShader
}

// Shader returns a registered shader by name.
func (c *Cache) Shader(name string) (ShaderID, error) {
	h, ok := c.Lookup(KindShader, name)
	if !ok {
		return 0, eris.Wrapf(ErrUnknownShader, "shader %q", name)
	}
	return ShaderID(h), nil
}

func (c *Cache) loadOrReuse(kind ResourceKind, key string, load func() (int, error)) (int, error) {
	if h, ok := c.hit(kind, key); ok {
		return h, nil
	}

	v, err, _ := c.group.Do(string(kind)+":"+key, func() (any, error) {
		// a concurrent caller may have finished while we waited
		if h, ok := c.hit(kind, key); ok {
			return h, nil
		}
		h, err := load()
		if err != nil {
			c.log.Warn("resource load failed",
				log.String("kind", string(kind)),
				log.String("path", key),
				log.Error(err),
			)
			return 0, eris.Wrapf(err, "load %s %s", kind, key)
		}

		c.mu.Lock()
		c.stats.Decodes[kind]++
		if c.enabled {
			c.handles[kind][key] = h
		}
		c.mu.Unlock()

		c.log.Debug("resource loaded",
			log.String("kind", string(kind)),
			log.String("path", key),
			log.Int("handle", h),
		)
		return h, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (c *Cache) hit(kind ResourceKind, key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return 0, false
	}
	h, ok := c.handles[kind][key]
	if ok {
		c.stats.Hits[kind]++
	}
	return h, ok
}
