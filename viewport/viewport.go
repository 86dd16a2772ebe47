// Package viewport defines how one drawable surface is split into the three
// preview views. The renderer and the capture step both read the layout from here.
package viewport

import (
	"fmt"
	"image"
	"math"
)

// Split ratios of the surface.
const (
	MainWidthRatio = 0.75
	SideSplitRatio = 0.5
)

type View int

const (
	Main View = iota
	SideTop
	SideBottom

	Count = 3
)

// Region is a rectangle in device pixels. Y grows upwards from the bottom edge
// of the surface, as in GL viewports.
type Region struct {
	X, Y          int
	Width, Height int
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.X, r.Y, r.Width, r.Height)
}

func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ImageRect converts r to a top-down image rectangle on a surface surfaceHeight pixels tall.
func (r Region) ImageRect(surfaceHeight int) image.Rectangle {
	y := surfaceHeight - (r.Y + r.Height)
	return image.Rect(r.X, y, r.X+r.Width, y+r.Height)
}

// CameraPreset places a view's camera relative to the model: Offset is scaled by
// the model size and added to the model center.
type CameraPreset struct {
	Offset [3]float32
	FovY   float32 // degrees
}

type Spec struct {
	View   View
	Name   string
	Field  string // multipart field name on upload
	Camera CameraPreset
}

var Views = [Count]Spec{
	{View: Main, Name: "main", Field: "view1", Camera: CameraPreset{Offset: [3]float32{0, 0.5, 1.5}, FovY: 45}},
	{View: SideTop, Name: "side-top", Field: "view2", Camera: CameraPreset{Offset: [3]float32{1, 0.3, -1}, FovY: 45}},
	{View: SideBottom, Name: "side-bottom", Field: "view3", Camera: CameraPreset{Offset: [3]float32{0, 2, 2}, FovY: 45}},
}

func (v View) String() string {
	if v >= 0 && int(v) < Count {
		return Views[v].Name
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// Layout splits a width x height surface: Main takes the left 75% at full
// height, the remaining columns are halved into SideTop and SideBottom.
func Layout(width, height int) [Count]Region {
	w1 := int(math.Floor(float64(width) * MainWidthRatio))
	h2 := int(math.Floor(float64(height) * SideSplitRatio))
	return [Count]Region{
		Main:       {X: 0, Y: 0, Width: w1, Height: height},
		SideTop:    {X: w1, Y: h2, Width: width - w1, Height: height - h2},
		SideBottom: {X: w1, Y: 0, Width: width - w1, Height: h2},
	}
}

// DeviceSize converts a CSS size to device pixels.
func DeviceSize(cssWidth, cssHeight int, pixelRatio float64) (int, int) {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return int(math.Round(float64(cssWidth) * pixelRatio)), int(math.Round(float64(cssHeight) * pixelRatio))
}
