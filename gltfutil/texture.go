package gltfutil

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/blezek/tga"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type imageInfo struct {
	width  int
	height int
	err    error
}

// ImageData returns the encoded bytes of doc.Images[index], wherever they are stored.
func (m *Model) ImageData(index uint32) ([]byte, error) {
	if int(index) >= len(m.Doc.Images) {
		return nil, fmt.Errorf("image %d: out of range", index)
	}
	img := m.Doc.Images[index]
	if img.BufferView != nil {
		if int(*img.BufferView) >= len(m.Doc.BufferViews) {
			return nil, fmt.Errorf("image %d: invalid buffer view", index)
		}
		bv := m.Doc.BufferViews[*img.BufferView]
		if int(bv.Buffer) >= len(m.Doc.Buffers) {
			return nil, fmt.Errorf("image %d: invalid buffer", index)
		}
		data := m.Doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if int(end) > len(data) {
			return nil, fmt.Errorf("image %d: buffer view out of range", index)
		}
		return data[bv.ByteOffset:end], nil
	}
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	if img.URI == "" {
		return nil, fmt.Errorf("image %d: no data", index)
	}
	return m.res.ReadFile(img.URI)
}

// ImageSize decodes only the header of an image where the format allows it.
// Results are cached per image.
func (m *Model) ImageSize(index uint32) (int, int, error) {
	if info, ok := m.images[index]; ok {
		return info.width, info.height, info.err
	}
	info := &imageInfo{}
	m.images[index] = info

	data, err := m.ImageData(index)
	if err != nil {
		info.err = err
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil && m.isTGA(index) {
		// retry
		var img image.Image
		if img, err = tga.Decode(bytes.NewReader(data)); err == nil {
			cfg.Width, cfg.Height = img.Bounds().Dx(), img.Bounds().Dy()
		}
	}
	if err != nil {
		info.err = fmt.Errorf("image %d: %w", index, err)
		return 0, 0, info.err
	}
	info.width, info.height = cfg.Width, cfg.Height
	return info.width, info.height, nil
}

func (m *Model) isTGA(index uint32) bool {
	img := m.Doc.Images[index]
	return strings.Contains(img.MimeType, "tga") ||
		strings.ToLower(filepath.Ext(img.URI)) == ".tga" ||
		strings.ToLower(filepath.Ext(img.Name)) == ".tga"
}
