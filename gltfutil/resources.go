package gltfutil

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// resources resolves buffer and image URIs that are not embedded in the document.
// The decoder asks for buffers with the URI still percent-escaped, so every
// implementation unescapes the name before looking it up.
type resources interface {
	fs.ReadFileFS
}

func unescapeURI(uri string) string {
	if u, err := url.PathUnescape(uri); err == nil {
		return u
	}
	return uri
}

// openResource serves Open for resources that only know how to read whole files.
func openResource(r resources, name string) (fs.File, error) {
	data, err := r.ReadFile(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &resourceFile{Reader: bytes.NewReader(data), name: path.Base(unescapeURI(name))}, nil
}

type resourceFile struct {
	*bytes.Reader
	name string
}

func (f *resourceFile) Stat() (fs.FileInfo, error) { return f, nil }
func (f *resourceFile) Close() error               { return nil }
func (f *resourceFile) Name() string               { return f.name }
func (f *resourceFile) Mode() fs.FileMode          { return 0444 }
func (f *resourceFile) ModTime() time.Time         { return time.Time{} }
func (f *resourceFile) IsDir() bool                { return false }
func (f *resourceFile) Sys() interface{}           { return nil }

type noResources struct{}

func (r noResources) Open(name string) (fs.File, error) {
	return openResource(r, name)
}

func (noResources) ReadFile(name string) ([]byte, error) {
	return nil, fmt.Errorf("%s: %w", unescapeURI(name), ErrResourceNotFound)
}

type dirResources struct {
	Dir string
}

func (d *dirResources) path(name string) string {
	p := path.Clean("/" + unescapeURI(name))
	return filepath.Join(d.Dir, filepath.FromSlash(p))
}

func (d *dirResources) Open(name string) (fs.File, error) {
	return os.Open(d.path(name))
}

func (d *dirResources) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", unescapeURI(name), ErrResourceNotFound)
	}
	return data, err
}

// zipResources serves the entries of an uploaded archive. Paths are resolved
// relative to the .gltf entry first, then by file name anywhere in the archive.
type zipResources struct {
	base  string
	files map[string]*zip.File
	names []string
}

func decodeShiftJIS(s string) string {
	b, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), []byte(s))
	if err != nil {
		return s
	}
	return string(b)
}

func entryName(f *zip.File) string {
	name := f.Name
	if f.NonUTF8 {
		name = decodeShiftJIS(name)
	}
	return strings.ReplaceAll(name, "\\", "/")
}

func openZip(data []byte) (*zipResources, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", err
	}
	z := &zipResources{files: map[string]*zip.File{}}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := entryName(f)
		z.files[name] = f
		z.names = append(z.names, name)
	}
	sort.Strings(z.names)

	entry := ""
	for _, ext := range []string{".gltf", ".glb"} {
		for _, name := range z.names {
			if strings.HasSuffix(strings.ToLower(name), ext) && !strings.HasPrefix(path.Base(name), ".") {
				entry = name
				break
			}
		}
		if entry != "" {
			break
		}
	}
	if entry == "" {
		return nil, "", ErrNoGLTFInArchive
	}
	z.base = path.Dir(entry)
	return z, entry, nil
}

func (z *zipResources) find(uri string) *zip.File {
	uri = unescapeURI(strings.SplitN(strings.SplitN(uri, "?", 2)[0], "#", 2)[0])
	uri = strings.ReplaceAll(uri, "\\", "/")
	if f, ok := z.files[uri]; ok {
		return f
	}
	if f, ok := z.files[path.Join(z.base, uri)]; ok {
		return f
	}
	base := path.Base(uri)
	for _, name := range z.names {
		if path.Base(name) == base {
			return z.files[name]
		}
	}
	return nil
}

func (z *zipResources) Open(name string) (fs.File, error) {
	return openResource(z, name)
}

func (z *zipResources) ReadFile(name string) ([]byte, error) {
	f := z.find(name)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", unescapeURI(name), ErrResourceNotFound)
	}
	return readEntry(f)
}

func readEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
