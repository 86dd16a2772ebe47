package gltfutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/qmuntal/gltf"
)

var (
	ErrUnsupportedFormat = errors.New("対応形式: .zip(.gltf/.bin/textures) または .glb/.gltf")
	ErrNoGLTFInArchive   = errors.New("ZIP 内に .gltf が見つかりません")
	ErrResourceNotFound  = errors.New("resource not found")
)

// LoadError reports a model that could not be read. No partial model is returned with it.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type Kind int

const (
	KindUnknown Kind = iota
	KindGLB
	KindGLTF
	KindZip
)

// Ext returns the extension the upload endpoint stores the model under.
func (k Kind) Ext() string {
	switch k {
	case KindGLB:
		return "glb"
	case KindGLTF:
		return "gltf"
	case KindZip:
		return "zip"
	}
	return ""
}

func (k Kind) String() string {
	if e := k.Ext(); e != "" {
		return e
	}
	return "unknown"
}

var glbType = filetype.NewType("glb", "model/gltf-binary")

func init() {
	filetype.AddMatcher(glbType, func(buf []byte) bool {
		return len(buf) >= 12 && string(buf[0:4]) == "glTF"
	})
}

// DetectKind decides how to read data. The content wins over the file extension
// so a renamed archive is still opened as an archive.
func DetectKind(name string, data []byte) Kind {
	if filetype.Is(data, "zip") {
		return KindZip
	}
	if filetype.Is(data, glbType.Extension) {
		return KindGLB
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".gltf" || ext == ".glb" {
		if t := bytes.TrimLeft(data, " \t\r\n\ufeff"); len(t) > 0 && t[0] == '{' {
			return KindGLTF
		}
	}
	return KindUnknown
}

// Model is a decoded submission together with the original file bytes.
type Model struct {
	Name string
	Kind Kind
	Data []byte
	Doc  *gltf.Document

	res    resources
	images map[uint32]*imageInfo
}

// NewModel wraps an in-memory document. External image URIs cannot be resolved.
func NewModel(doc *gltf.Document) *Model {
	return &Model{Kind: KindGLB, Doc: doc, res: noResources{}, images: map[uint32]*imageInfo{}}
}

// Load decodes a .glb, .gltf or .zip (a .gltf with its buffers and textures) from memory.
func Load(name string, data []byte) (*Model, error) {
	return load(name, data, noResources{})
}

// LoadFile reads path from disk. A .gltf resolves its buffers and images relative to its directory.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Name: filepath.Base(path), Err: err}
	}
	return load(filepath.Base(path), data, &dirResources{Dir: filepath.Dir(path)})
}

func load(name string, data []byte, res resources) (*Model, error) {
	m := &Model{Name: name, Kind: DetectKind(name, data), Data: data, res: res, images: map[uint32]*imageInfo{}}
	src := data
	switch m.Kind {
	case KindGLB, KindGLTF:
	case KindZip:
		z, entry, err := openZip(data)
		if err != nil {
			return nil, &LoadError{Name: name, Err: err}
		}
		if src, err = readEntry(z.files[entry]); err != nil {
			return nil, &LoadError{Name: name, Err: err}
		}
		m.res = z
	default:
		return nil, &LoadError{Name: name, Err: ErrUnsupportedFormat}
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(bytes.NewReader(src), m.res).Decode(doc); err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	for i, b := range doc.Buffers {
		if len(b.Data) < int(b.ByteLength) {
			return nil, &LoadError{Name: name, Err: fmt.Errorf("buffer %d: short resource (%d < %d bytes)", i, len(b.Data), b.ByteLength)}
		}
	}
	m.Doc = doc
	return m, nil
}
