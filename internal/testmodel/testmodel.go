// Package testmodel builds small glTF documents for tests.
package testmodel

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"net/url"

	"github.com/YashubuStudio/Vconf-webgl-glTF/gltfutil"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func New() *gltf.Document {
	return gltf.NewDocument()
}

var boxIndices = []uint16{
	0, 2, 1, 0, 3, 2, // -Z
	4, 5, 6, 4, 6, 7, // +Z
	0, 1, 5, 0, 5, 4, // -Y
	3, 7, 6, 3, 6, 2, // +Y
	0, 4, 7, 0, 7, 3, // -X
	1, 2, 6, 1, 6, 5, // +X
}

// AddBoxMesh adds a mesh of one box primitive centered at the origin and returns the mesh index.
func AddBoxMesh(doc *gltf.Document, name string, size [3]float32, material *uint32) uint32 {
	x, y, z := size[0]/2, size[1]/2, size[2]/2
	pos := modeler.WritePosition(doc, [][3]float32{
		{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
		{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
	})
	idx := modeler.WriteIndices(doc, boxIndices)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]uint32{"POSITION": pos},
			Material:   material,
		}},
	})
	syncBuffer(doc)
	return uint32(len(doc.Meshes) - 1)
}

// AddNode adds a root node showing mesh and returns the node index.
func AddNode(doc *gltf.Document, name string, mesh uint32) uint32 {
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(mesh)})
	n := uint32(len(doc.Nodes) - 1)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, n)
	return n
}

// AddBox adds a box mesh and a root node for it.
func AddBox(doc *gltf.Document, name string, size [3]float32, material *uint32) uint32 {
	return AddNode(doc, name, AddBoxMesh(doc, name, size, material))
}

func AddMaterial(doc *gltf.Document, name string, unlit bool, rgba [4]float32) uint32 {
	mat := &gltf.Material{
		Name: name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &rgba,
		},
	}
	if unlit {
		gltfutil.SetUnlit(doc, mat)
	}
	doc.Materials = append(doc.Materials, mat)
	return uint32(len(doc.Materials) - 1)
}

// AddTexture embeds a w x h PNG and sets it as the base colour texture of material.
func AddTexture(doc *gltf.Document, material uint32, w, h int) uint32 {
	img, err := modeler.WriteImage(doc, "tex.png", "image/png", bytes.NewReader(PNG(w, h, color.RGBA{255, 0, 0, 255})))
	if err != nil {
		panic(err)
	}
	syncBuffer(doc)
	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
	tex := uint32(len(doc.Textures) - 1)
	doc.Materials[material].PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: tex}
	return tex
}

func PNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func syncBuffer(doc *gltf.Document) {
	doc.Buffers[0].ByteLength = uint32(len(doc.Buffers[0].Data))
}

func EncodeGLB(doc *gltf.Document) ([]byte, error) {
	var buf bytes.Buffer
	e := gltf.NewEncoder(&buf)
	e.AsBinary = true
	if err := e.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// memFS collects the external buffers written by the encoder, keyed by unescaped URI.
type memFS map[string][]byte

func (m memFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func (m memFS) Create(name string) (io.WriteCloser, error) {
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}
	return &memFile{dst: m, name: name}, nil
}

type memFile struct {
	bytes.Buffer
	dst  memFS
	name string
}

func (f *memFile) Close() error {
	f.dst[f.name] = f.Bytes()
	return nil
}

// EncodeGLTF writes doc as JSON with its first buffer stored externally as binName.
// The returned map is keyed by the unescaped file name.
func EncodeGLTF(doc *gltf.Document, binName string) ([]byte, map[string][]byte, error) {
	doc.Buffers[0].URI = binName
	defer func() { doc.Buffers[0].URI = "" }()
	res := memFS{}
	var buf bytes.Buffer
	e := gltf.NewEncoderFS(&buf, res)
	e.AsBinary = false
	if err := e.Encode(doc); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), res, nil
}
