package preview

import (
	"github.com/YashubuStudio/Vconf-webgl-glTF/geom"
	"github.com/YashubuStudio/Vconf-webgl-glTF/gltfutil"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

type triangle struct {
	v      [3]geom.Vector3
	normal geom.Vector3
	color  [3]float32
	unlit  bool
}

// buildTriangles flattens every triangle primitive of the scene into world space.
func buildTriangles(doc *gltf.Document) ([]triangle, *geom.Box3, error) {
	var tris []triangle
	bounds := geom.NewBox3()
	err := gltfutil.Walk(doc, func(_ uint32, node *gltf.Node, world *geom.Matrix4) error {
		if node.Mesh == nil || int(*node.Mesh) >= len(doc.Meshes) {
			return nil
		}
		mesh := doc.Meshes[*node.Mesh]
		for i, p := range mesh.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				continue
			}
			pos, indices, err := readPrimitive(doc, p)
			if err != nil {
				logger.Warn("skip primitive", zap.String("mesh", mesh.Name), zap.Int("primitive", i), zap.Error(err))
				continue
			}
			col, unlit := materialColor(doc, p.Material)
			wpos := make([]geom.Vector3, len(pos))
			for j, v := range pos {
				wpos[j] = *world.ApplyTo(geom.NewVector3FromArray(v))
				bounds.ExpandByPoint(&wpos[j])
			}
			for j := 0; j+2 < len(indices); j += 3 {
				a, b, c := indices[j], indices[j+1], indices[j+2]
				if int(a) >= len(wpos) || int(b) >= len(wpos) || int(c) >= len(wpos) {
					continue
				}
				t := triangle{v: [3]geom.Vector3{wpos[a], wpos[b], wpos[c]}, color: col, unlit: unlit}
				t.normal = *t.v[1].Sub(&t.v[0]).Cross(t.v[2].Sub(&t.v[0])).Normalize()
				tris = append(tris, t)
			}
		}
		return nil
	})
	return tris, bounds, err
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive) ([][3]float32, []uint32, error) {
	a, ok := p.Attributes["POSITION"]
	if !ok || int(a) >= len(doc.Accessors) {
		return nil, nil, nil
	}
	pos, err := modeler.ReadPosition(doc, doc.Accessors[a], [][3]float32{})
	if err != nil {
		return nil, nil, err
	}
	if p.Indices == nil {
		indices := make([]uint32, len(pos))
		for i := range indices {
			indices[i] = uint32(i)
		}
		return pos, indices, nil
	}
	if int(*p.Indices) >= len(doc.Accessors) {
		return nil, nil, nil
	}
	indices, err := modeler.ReadIndices(doc, doc.Accessors[*p.Indices], []uint32{})
	return pos, indices, err
}

// materialColor returns the linear base colour. Primitives without a material get white lit shading.
func materialColor(doc *gltf.Document, index *uint32) ([3]float32, bool) {
	if index == nil || int(*index) >= len(doc.Materials) {
		return [3]float32{1, 1, 1}, false
	}
	mat := doc.Materials[*index]
	col := [3]float32{1, 1, 1}
	if mat.PBRMetallicRoughness != nil {
		c := mat.PBRMetallicRoughness.BaseColorFactorOrDefault()
		col = [3]float32{c[0], c[1], c[2]}
	}
	return col, gltfutil.IsUnlit(mat)
}
