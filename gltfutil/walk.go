package gltfutil

import (
	"github.com/YashubuStudio/Vconf-webgl-glTF/geom"
	"github.com/qmuntal/gltf"
)

// RootNodes returns the roots of the default scene, falling back to scene 0 and
// then to every node that is nobody's child.
func RootNodes(doc *gltf.Document) []uint32 {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			s = int(*doc.Scene)
		}
		return doc.Scenes[s].Nodes
	}
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(child) {
				child[c] = true
			}
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func LocalMatrix(node *gltf.Node) *geom.Matrix4 {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return geom.NewMatrix4FromSlice(m[:])
	}
	return geom.NewTRSMatrix4(
		geom.NewVector3FromArray(node.Translation),
		geom.NewQuaternionFromArray(node.RotationOrDefault()),
		geom.NewVector3FromArray(node.ScaleOrDefault()))
}

// Walk visits the scene graph depth first, parents before children, passing each
// node's world matrix. A node reached twice (malformed graph) is visited once.
func Walk(doc *gltf.Document, fn func(index uint32, node *gltf.Node, world *geom.Matrix4) error) error {
	visited := make([]bool, len(doc.Nodes))
	var visit func(index uint32, parent *geom.Matrix4) error
	visit = func(index uint32, parent *geom.Matrix4) error {
		if int(index) >= len(doc.Nodes) || visited[index] {
			return nil
		}
		visited[index] = true
		node := doc.Nodes[index]
		world := parent.Mul(LocalMatrix(node))
		if err := fn(index, node, world); err != nil {
			return err
		}
		for _, c := range node.Children {
			if err := visit(c, world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range RootNodes(doc) {
		if err := visit(root, geom.NewMatrix4()); err != nil {
			return err
		}
	}
	return nil
}
