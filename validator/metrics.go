package validator

import (
	"github.com/YashubuStudio/Vconf-webgl-glTF/geom"
	"github.com/YashubuStudio/Vconf-webgl-glTF/gltfutil"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// DefaultMaterial is the index recorded for primitives without a material.
const DefaultMaterial = -1

type MaterialInfo struct {
	Index   int // DefaultMaterial for the loader's shared default material
	Name    string
	Unlit   bool
	Texture int // base colour texture index, -1 when none
}

type TextureInfo struct {
	Index  uint32
	Width  int
	Height int
	// Known is false when the image could not be decoded.
	Known bool
}

// Metrics is everything the checks need, gathered in one scene traversal.
type Metrics struct {
	BadName    string // first name with a disallowed character
	HasBadName bool
	Bounds     *geom.Box3
	Triangles  int
	Animations int
	Materials  []MaterialInfo
	Textures   []TextureInfo
}

// Collect traverses the scene of m once.
func Collect(m *gltfutil.Model) (*Metrics, error) {
	doc := m.Doc
	mt := &Metrics{Bounds: geom.NewBox3(), Animations: len(doc.Animations)}
	seenMat := map[int]bool{}
	seenTex := map[uint32]bool{}
	meshBounds := map[uint32]*geom.Box3{}

	checkName := func(name string) {
		if !mt.HasBadName && !IsValidName(name) {
			mt.HasBadName = true
			mt.BadName = name
		}
	}

	err := gltfutil.Walk(doc, func(_ uint32, node *gltf.Node, world *geom.Matrix4) error {
		checkName(node.Name)
		if node.Mesh == nil || int(*node.Mesh) >= len(doc.Meshes) {
			return nil
		}
		mesh := doc.Meshes[*node.Mesh]
		checkName(mesh.Name)

		b, ok := meshBounds[*node.Mesh]
		if !ok {
			b = meshBox(doc, mesh)
			meshBounds[*node.Mesh] = b
		}
		mt.Bounds.Union(b.ApplyMatrix4(world))

		for _, p := range mesh.Primitives {
			mt.Triangles += triangles(doc, p)

			idx := DefaultMaterial
			var mat *gltf.Material
			if p.Material != nil && int(*p.Material) < len(doc.Materials) {
				idx = int(*p.Material)
				mat = doc.Materials[idx]
				checkName(mat.Name)
			}
			if seenMat[idx] {
				continue
			}
			seenMat[idx] = true
			info := MaterialInfo{Index: idx, Unlit: gltfutil.IsUnlit(mat), Texture: -1}
			if mat != nil {
				info.Name = mat.Name
				if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
					info.Texture = int(pbr.BaseColorTexture.Index)
				}
			}
			mt.Materials = append(mt.Materials, info)
			if info.Texture >= 0 && !seenTex[uint32(info.Texture)] {
				seenTex[uint32(info.Texture)] = true
				mt.Textures = append(mt.Textures, textureInfo(m, uint32(info.Texture)))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mt, nil
}

// triangles counts indices/3 for indexed primitives and vertices/3 otherwise.
func triangles(doc *gltf.Document, p *gltf.Primitive) int {
	if p.Indices != nil && int(*p.Indices) < len(doc.Accessors) {
		return int(doc.Accessors[*p.Indices].Count) / 3
	}
	if a, ok := p.Attributes["POSITION"]; ok && int(a) < len(doc.Accessors) {
		return int(doc.Accessors[a].Count) / 3
	}
	return 0
}

// meshBox is the local bounding box of every primitive of mesh.
func meshBox(doc *gltf.Document, mesh *gltf.Mesh) *geom.Box3 {
	box := geom.NewBox3()
	for _, p := range mesh.Primitives {
		a, ok := p.Attributes["POSITION"]
		if !ok || int(a) >= len(doc.Accessors) {
			continue
		}
		acr := doc.Accessors[a]
		if len(acr.Min) >= 3 && len(acr.Max) >= 3 {
			box.ExpandByPoint(geom.NewVector3FromSlice(acr.Min))
			box.ExpandByPoint(geom.NewVector3FromSlice(acr.Max))
			continue
		}
		pos, err := modeler.ReadPosition(doc, acr, [][3]float32{})
		if err != nil {
			logger.Warn("cannot read positions", zap.String("mesh", mesh.Name), zap.Error(err))
			continue
		}
		for _, v := range pos {
			box.ExpandByPoint(geom.NewVector3FromArray(v))
		}
	}
	return box
}

func textureInfo(m *gltfutil.Model, index uint32) TextureInfo {
	info := TextureInfo{Index: index}
	if int(index) >= len(m.Doc.Textures) || m.Doc.Textures[index].Source == nil {
		logger.Warn("texture has no image", zap.Uint32("texture", index))
		return info
	}
	w, h, err := m.ImageSize(*m.Doc.Textures[index].Source)
	if err != nil {
		logger.Warn("cannot decode texture", zap.Uint32("texture", index), zap.Error(err))
		return info
	}
	info.Width, info.Height, info.Known = w, h, true
	return info
}
