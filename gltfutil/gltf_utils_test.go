package gltfutil_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/YashubuStudio/Vconf-webgl-glTF/geom"
	"github.com/YashubuStudio/Vconf-webgl-glTF/gltfutil"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/testmodel"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func texturedDoc() *gltf.Document {
	doc := testmodel.New()
	mat := testmodel.AddMaterial(doc, "mat", true, [4]float32{1, 1, 1, 1})
	testmodel.AddTexture(doc, mat, 64, 32)
	testmodel.AddBox(doc, "box", [3]float32{1, 1, 1}, gltf.Index(mat))
	return doc
}

type zipEntry struct {
	name    string
	data    []byte
	nonUTF8 bool
}

func makeZip(t *testing.T, entries []zipEntry) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8})
		require.NoError(t, err)
		_, err = f.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLoadGLB(t *testing.T) {
	data, err := testmodel.EncodeGLB(texturedDoc())
	require.NoError(t, err)

	m, err := gltfutil.Load("model.glb", data)
	require.NoError(t, err)
	assert.Equal(t, gltfutil.KindGLB, m.Kind)
	assert.Equal(t, "glb", m.Kind.Ext())
	assert.Equal(t, data, m.Data)
	require.Len(t, m.Doc.Meshes, 1)
	assert.Equal(t, "box", m.Doc.Meshes[0].Name)

	w, h, err := m.ImageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
}

func TestLoadZipArchive(t *testing.T) {
	doc := texturedDoc()
	meshes := len(doc.Meshes)
	js, res, err := testmodel.EncodeGLTF(doc, "model.bin")
	require.NoError(t, err)

	data := makeZip(t, []zipEntry{
		{name: "submission/", data: nil},
		{name: "submission/model.gltf", data: js},
		{name: "submission/model.bin", data: res["model.bin"]},
	})

	m, err := gltfutil.Load("upload.zip", data)
	require.NoError(t, err)
	assert.Equal(t, gltfutil.KindZip, m.Kind)
	require.Len(t, m.Doc.Meshes, meshes)

	w, h, err := m.ImageSize(0)
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)
}

func TestLoadZipShiftJISNames(t *testing.T) {
	doc := testmodel.New()
	testmodel.AddBox(doc, "box", [3]float32{1, 1, 1}, nil)
	js, res, err := testmodel.EncodeGLTF(doc, "モデル.bin")
	require.NoError(t, err)

	sjis, err := japanese.ShiftJIS.NewEncoder().String("データ/モデル.bin")
	require.NoError(t, err)
	data := makeZip(t, []zipEntry{
		{name: "model.gltf", data: js},
		{name: sjis, data: res["モデル.bin"], nonUTF8: true},
	})

	// the buffer is found by file name even though it lives in another directory
	m, err := gltfutil.Load("upload.zip", data)
	require.NoError(t, err)
	assert.Len(t, m.Doc.Meshes, 1)
}

func TestLoadErrors(t *testing.T) {
	_, err := gltfutil.Load("notes.txt", []byte("hello"))
	var le *gltfutil.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "notes.txt", le.Name)
	assert.True(t, errors.Is(err, gltfutil.ErrUnsupportedFormat))

	data := makeZip(t, []zipEntry{{name: "readme.txt", data: []byte("x")}})
	_, err = gltfutil.Load("upload.zip", data)
	assert.True(t, errors.Is(err, gltfutil.ErrNoGLTFInArchive))

	// external buffer without any way to resolve it
	doc := testmodel.New()
	testmodel.AddBox(doc, "box", [3]float32{1, 1, 1}, nil)
	js, _, err := testmodel.EncodeGLTF(doc, "missing.bin")
	require.NoError(t, err)
	_, err = gltfutil.Load("model.gltf", js)
	assert.True(t, errors.As(err, &le))

	_, err = gltfutil.Load("broken.glb", []byte("glTF\x02\x00\x00\x00\xff\xff\xff\xff"))
	assert.True(t, errors.As(err, &le))
}

func TestLoadZipShortBuffer(t *testing.T) {
	doc := testmodel.New()
	testmodel.AddBox(doc, "box", [3]float32{1, 1, 1}, nil)
	js, res, err := testmodel.EncodeGLTF(doc, "model.bin")
	require.NoError(t, err)
	bin := res["model.bin"]

	data := makeZip(t, []zipEntry{
		{name: "model.gltf", data: js},
		{name: "model.bin", data: bin[:len(bin)/2]},
	})
	_, err = gltfutil.Load("upload.zip", data)
	var le *gltfutil.LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "short resource")
}

func TestLoadFileRelativeResources(t *testing.T) {
	doc := testmodel.New()
	testmodel.AddBox(doc, "box", [3]float32{1, 1, 1}, nil)
	js, res, err := testmodel.EncodeGLTF(doc, "model%20data.bin")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.gltf"), js, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model data.bin"), res["model data.bin"], 0644))

	m, err := gltfutil.LoadFile(filepath.Join(dir, "model.gltf"))
	require.NoError(t, err)
	assert.Equal(t, gltfutil.KindGLTF, m.Kind)
	assert.Equal(t, "model.gltf", m.Name)
}

func TestDetectKind(t *testing.T) {
	doc := testmodel.New()
	testmodel.AddBox(doc, "box", [3]float32{1, 1, 1}, nil)
	glb, err := testmodel.EncodeGLB(doc)
	require.NoError(t, err)
	assert.Equal(t, gltfutil.KindGLB, gltfutil.DetectKind("a.glb", glb))
	assert.Equal(t, gltfutil.KindGLB, gltfutil.DetectKind("renamed.bin", glb))
	assert.Equal(t, gltfutil.KindZip, gltfutil.DetectKind("a.glb", makeZip(t, []zipEntry{{name: "a.gltf", data: []byte("{}")}})))
	assert.Equal(t, gltfutil.KindGLTF, gltfutil.DetectKind("a.gltf", []byte("  {\"asset\":{}}")))
	assert.Equal(t, gltfutil.KindUnknown, gltfutil.DetectKind("a.gltf", []byte("plain text")))
	assert.Equal(t, gltfutil.KindUnknown, gltfutil.DetectKind("a.obj", []byte("{}")))
}

func TestWalkWorldMatrix(t *testing.T) {
	doc := testmodel.New()
	mesh := testmodel.AddBoxMesh(doc, "box", [3]float32{1, 1, 1}, nil)
	parent := testmodel.AddNode(doc, "parent", mesh)
	doc.Nodes[parent].Translation = [3]float32{1, 0, 0}
	doc.Nodes[parent].Scale = [3]float32{2, 2, 2}
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "child", Translation: [3]float32{0, 1, 0}})
	doc.Nodes[parent].Children = []uint32{1}

	var names []string
	worlds := map[string]*geom.Matrix4{}
	err := gltfutil.Walk(doc, func(_ uint32, node *gltf.Node, world *geom.Matrix4) error {
		names = append(names, node.Name)
		worlds[node.Name] = world
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"parent", "child"}, names)

	p := worlds["child"].ApplyTo(geom.NewVector3(0, 0, 0))
	assert.InDelta(t, 1, p.X, 1e-6)
	assert.InDelta(t, 2, p.Y, 1e-6)
	assert.InDelta(t, 0, p.Z, 1e-6)
}

func TestRootNodesWithoutScene(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{
		{Name: "a", Children: []uint32{1}},
		{Name: "b"},
		{Name: "c"},
	}}
	assert.Equal(t, []uint32{0, 2}, gltfutil.RootNodes(doc))
}

func TestUnlit(t *testing.T) {
	doc := testmodel.New()
	lit := testmodel.AddMaterial(doc, "lit", false, [4]float32{1, 1, 1, 1})
	unlit := testmodel.AddMaterial(doc, "unlit", true, [4]float32{1, 1, 1, 1})
	testmodel.AddBox(doc, "a", [3]float32{1, 1, 1}, gltf.Index(lit))
	testmodel.AddBox(doc, "b", [3]float32{1, 1, 1}, gltf.Index(unlit))

	data, err := testmodel.EncodeGLB(doc)
	require.NoError(t, err)
	m, err := gltfutil.Load("model.glb", data)
	require.NoError(t, err)

	assert.False(t, gltfutil.IsUnlit(m.Doc.Materials[lit]))
	assert.True(t, gltfutil.IsUnlit(m.Doc.Materials[unlit]))
	assert.False(t, gltfutil.IsUnlit(nil))
	assert.Contains(t, m.Doc.ExtensionsUsed, gltfutil.UnlitExtension)
}
