// Package validator checks a loaded model against the submission rules.
//
// All checks are always evaluated so the presenter sees the complete report.
// Only Fail verdicts reject a model; the shading check can at most warn.
package validator

import (
	"fmt"
	"strings"

	"github.com/YashubuStudio/Vconf-webgl-glTF/gltfutil"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"go.uber.org/zap"
)

type Verdict int

const (
	Pass Verdict = iota
	Fail
	Warning
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	case Warning:
		return "warning"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// Mark is the symbol shown in front of a check in the result list.
func (v Verdict) Mark() string {
	switch v {
	case Pass:
		return "✅"
	case Fail:
		return "❌"
	}
	return "⚠️"
}

type CheckID string

const (
	CheckNaming    CheckID = "naming"
	CheckSize      CheckID = "size"
	CheckPolygons  CheckID = "polygons"
	CheckAnimation CheckID = "animation"
	CheckTextures  CheckID = "textures"
	CheckMaterials CheckID = "materials"
	CheckShading   CheckID = "shading"
)

type Check struct {
	ID      CheckID
	Label   string
	Verdict Verdict
	Detail  string
}

func (c *Check) String() string {
	return fmt.Sprintf("%s %s: %s", c.Verdict.Mark(), c.Label, c.Detail)
}

type Report struct {
	Accepted bool
	Checks   []*Check
}

// Failed returns the failing checks in report order.
func (r *Report) Failed() []*Check {
	var failed []*Check
	for _, c := range r.Checks {
		if c.Verdict == Fail {
			failed = append(failed, c)
		}
	}
	return failed
}

// Check returns the check with the given id, or nil.
func (r *Report) Check(id CheckID) *Check {
	for _, c := range r.Checks {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FailureMessage lists exactly the failing checks, one per line. It is empty for an accepted report.
func (r *Report) FailureMessage() string {
	failed := r.Failed()
	if len(failed) == 0 {
		return ""
	}
	lines := make([]string, 0, len(failed)+1)
	lines = append(lines, "提出条件を満たしていません:")
	for _, c := range failed {
		lines = append(lines, fmt.Sprintf("・%s: %s", c.Label, c.Detail))
	}
	return strings.Join(lines, "\n")
}

type Limits struct {
	MaxExtent      float32 `yaml:"max_extent"`
	MaxTriangles   int     `yaml:"max_triangles"`
	MaxTextures    int     `yaml:"max_textures"`
	MaxTextureSize int     `yaml:"max_texture_size"`
	MaxMaterials   int     `yaml:"max_materials"`
}

var DefaultLimits = Limits{
	MaxExtent:      2.0,
	MaxTriangles:   20000,
	MaxTextures:    1,
	MaxTextureSize: 1024,
	MaxMaterials:   5,
}

// Validate collects the metrics of m and evaluates every check.
func Validate(m *gltfutil.Model, limits Limits) (*Report, error) {
	mt, err := Collect(m)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", m.Name, err)
	}
	r := Evaluate(mt, limits)
	logger.Debug("validated",
		zap.String("model", m.Name),
		zap.Bool("accepted", r.Accepted),
		zap.Int("triangles", mt.Triangles),
		zap.Int("materials", len(mt.Materials)),
		zap.Int("textures", len(mt.Textures)))
	return r, nil
}

// Evaluate turns metrics into the ordered report.
func Evaluate(mt *Metrics, limits Limits) *Report {
	r := &Report{Checks: []*Check{
		checkNaming(mt),
		checkSize(mt, limits),
		checkPolygons(mt, limits),
		checkAnimation(mt),
		checkTextures(mt, limits),
		checkMaterials(mt, limits),
		checkShading(mt),
	}}
	r.Accepted = len(r.Failed()) == 0
	return r
}
