package gltfutil

// https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos/KHR_materials_unlit

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

const UnlitExtension = "KHR_materials_unlit"

type Unlit struct{}

func init() {
	gltf.RegisterExtension(UnlitExtension, unmarshalUnlit)
}

func unmarshalUnlit(data []byte) (interface{}, error) {
	var ext Unlit
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, err
	}
	return &ext, nil
}

// IsUnlit reports whether mat is rendered as a basic (unlit) material.
// A nil material is the loader's default PBR material.
func IsUnlit(mat *gltf.Material) bool {
	if mat == nil {
		return false
	}
	_, ok := mat.Extensions[UnlitExtension]
	return ok
}

// SetUnlit marks mat unlit and records the extension as used.
func SetUnlit(doc *gltf.Document, mat *gltf.Material) {
	if mat.Extensions == nil {
		mat.Extensions = gltf.Extensions{}
	}
	mat.Extensions[UnlitExtension] = &Unlit{}
	for _, ex := range doc.ExtensionsUsed {
		if ex == UnlitExtension {
			return
		}
	}
	doc.ExtensionsUsed = append(doc.ExtensionsUsed, UnlitExtension)
}
