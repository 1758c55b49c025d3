// Package library resolves asset paths to opaque handles owned by the
// graphics collaborator, decoding each unique path at most once per session.
package library

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/assets/geometry"
	"github.com/zeusync/scenekit/internal/core/assets/tga"
	"github.com/zeusync/scenekit/internal/core/models"
)

type (
	TextureID int
	ShaderID  int
)

// NoTexture marks an unused texture slot.
const NoTexture TextureID = -1

// Material is what a material document resolves to.
type Material struct {
	Name       string
	Diffuse    models.Vec3
	Specular   models.Vec3
	Shininess  float32
	DiffuseMap TextureID
	NormalMap  TextureID
	Shader     ShaderID
}

// Graphics is the collaborator that owns uploaded assets. Implementations
// return a new handle per call; deduplication is the Cache's job.
type Graphics interface {
	CreateGeometry(path string, b *geometry.Buffers) (models.GeometryID, error)
	CreateTexture(path string, img *tga.Image) (TextureID, error)
	CreateMaterial(m Material) (models.MaterialID, error)
	CreateShader(name, vertexPath, fragmentPath string) (ShaderID, error)
}

// GeometryAsset is a geometry held by Memory.
type GeometryAsset struct {
	Path    string
	Buffers *geometry.Buffers
	// Digest is an xxhash of the position and index data.
	Digest uint64
}

type TextureAsset struct {
	Path   string
	Image  *tga.Image
	Digest uint64
}

type ShaderAsset struct {
	Name     string
	Vertex   string
	Fragment string
}

// Memory is an in-process Graphics that keeps every asset in slices indexed
// by handle. It stands in for a GPU backend in tools and tests.
type Memory struct {
	mu         sync.RWMutex
	geometries []GeometryAsset
	textures   []TextureAsset
	materials  []Material
	shaders    []ShaderAsset
}

var _ Graphics = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateGeometry(path string, b *geometry.Buffers) (models.GeometryID, error) {
	if b == nil {
		return 0, eris.New("nil geometry buffers")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geometries = append(m.geometries, GeometryAsset{Path: path, Buffers: b, Digest: geometryDigest(b)})
	return models.GeometryID(len(m.geometries) - 1), nil
}

func (m *Memory) CreateTexture(path string, img *tga.Image) (TextureID, error) {
	if img == nil {
		return NoTexture, eris.New("nil image")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures = append(m.textures, TextureAsset{Path: path, Image: img, Digest: xxhash.Sum64(img.Pixels)})
	return TextureID(len(m.textures) - 1), nil
}

func (m *Memory) CreateMaterial(mat Material) (models.MaterialID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials = append(m.materials, mat)
	return models.MaterialID(len(m.materials) - 1), nil
}

func (m *Memory) CreateShader(name, vertexPath, fragmentPath string) (ShaderID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shaders = append(m.shaders, ShaderAsset{Name: name, Vertex: vertexPath, Fragment: fragmentPath})
	return ShaderID(len(m.shaders) - 1), nil
}

func (m *Memory) Geometry(id models.GeometryID) (GeometryAsset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || int(id) >= len(m.geometries) {
		return GeometryAsset{}, false
	}
	return m.geometries[id], true
}

func (m *Memory) Texture(id TextureID) (TextureAsset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || int(id) >= len(m.textures) {
		return TextureAsset{}, false
	}
	return m.textures[id], true
}

func (m *Memory) Material(id models.MaterialID) (Material, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || int(id) >= len(m.materials) {
		return Material{}, false
	}
	return m.materials[id], true
}

func (m *Memory) Shader(id ShaderID) (ShaderAsset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || int(id) >= len(m.shaders) {
		return ShaderAsset{}, false
	}
	return m.shaders[id], true
}

// Counts reports how many assets of each kind were created.
func (m *Memory) Counts() (geometries, textures, materials, shaders int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.geometries), len(m.textures), len(m.materials), len(m.shaders)
}

// DuplicateGeometries groups geometry handles whose contents hash equal,
// which points at the same mesh stored under several paths.
func (m *Memory) DuplicateGeometries() map[uint64][]models.GeometryID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups := make(map[uint64][]models.GeometryID)
	for i, g := range m.geometries {
		groups[g.Digest] = append(groups[g.Digest], models.GeometryID(i))
	}
	for digest, ids := range groups {
		if len(ids) < 2 {
			delete(groups, digest)
		}
	}
	return groups
}

func geometryDigest(b *geometry.Buffers) uint64 {
	d := xxhash.New()
	var word [4]byte
	for _, f := range b.Positions {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(f))
		_, _ = d.Write(word[:])
	}
	for _, i := range b.Indices {
		binary.LittleEndian.PutUint32(word[:], i)
		_, _ = d.Write(word[:])
	}
	return d.Sum64()
}
