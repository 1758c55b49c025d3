package library

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/zeusync/scenekit/internal/core/models"
)

var ErrMaterialDocument = errors.New("invalid material document")

// DefaultShaderName is the shader materials fall back to until
// RegisterDefaultShader names another.
const DefaultShaderName = "phong"

// materialDocument is the on-disk form of a material.
type materialDocument struct {
	Name       string      `json:"name"`
	Diffuse    *[3]float32 `json:"diffuse"`
	Specular   *[3]float32 `json:"specular"`
	Shininess  *float32    `json:"shininess"`
	DiffuseMap string      `json:"diffuse_map"`
	NormalMap  string      `json:"normal_map"`
	Shader     string      `json:"shader"`
}

// DefaultMaterial is white, lightly specular and bound to the default shader,
// which must already be registered.
func (c *Cache) DefaultMaterial() (Material, error) {
	mat := baseMaterial()
	shader, err := c.Shader(c.DefaultShader())
	if err != nil {
		return Material{}, eris.Wrap(err, "default material")
	}
	mat.Shader = shader
	return mat, nil
}

func baseMaterial() Material {
	return Material{
		Name:       "default",
		Diffuse:    models.Vec3{1, 1, 1},
		Specular:   models.Vec3{0.5, 0.5, 0.5},
		Shininess:  32,
		DiffuseMap: NoTexture,
		NormalMap:  NoTexture,
	}
}

// DefaultMaterialID creates the default material once and reuses it.
func (c *Cache) DefaultMaterialID() (models.MaterialID, error) {
	h, err := c.loadOrReuse(KindMaterial, "<default>", func() (int, error) {
		mat, err := c.DefaultMaterial()
		if err != nil {
			return 0, err
		}
		id, err := c.gfx.CreateMaterial(mat)
		return int(id), err
	})
	return models.MaterialID(h), err
}

// Material loads the material document at path or reuses its handle.
// Texture paths inside the document are relative to the document.
func (c *Cache) Material(path string) (models.MaterialID, error) {
	key := c.Resolve(path)
	h, err := c.loadOrReuse(KindMaterial, key, func() (int, error) {
		mat, err := c.decodeMaterial(key)
		if err != nil {
			return 0, err
		}
		id, err := c.gfx.CreateMaterial(mat)
		return int(id), err
	})
	return models.MaterialID(h), err
}

func (c *Cache) decodeMaterial(path string) (Material, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Material{}, eris.Wrapf(err, "read material %s", path)
	}
	var doc materialDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Material{}, eris.Wrapf(ErrMaterialDocument, "%s: %v", path, err)
	}

	mat := baseMaterial()
	if doc.Name != "" {
		mat.Name = doc.Name
	} else {
		mat.Name = filepath.Base(path)
	}
	if doc.Diffuse != nil {
		mat.Diffuse = models.Vec3(*doc.Diffuse)
	}
	if doc.Specular != nil {
		mat.Specular = models.Vec3(*doc.Specular)
	}
	if doc.Shininess != nil {
		mat.Shininess = *doc.Shininess
	}

	dir := filepath.Dir(path)
	if doc.DiffuseMap != "" {
		if mat.DiffuseMap, err = c.texture(relativeTo(dir, doc.DiffuseMap)); err != nil {
			return Material{}, err
		}
	}
	if doc.NormalMap != "" {
		if mat.NormalMap, err = c.texture(relativeTo(dir, doc.NormalMap)); err != nil {
			return Material{}, err
		}
	}
	shader := doc.Shader
	if shader == "" {
		shader = c.DefaultShader()
	}
	if mat.Shader, err = c.Shader(shader); err != nil {
		return Material{}, eris.Wrapf(err, "material %s", path)
	}
	return mat, nil
}

// relativeTo resolves a path found inside a document against the document's
// directory. dir is already rooted, so the result is a cache key as is.
func relativeTo(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}
