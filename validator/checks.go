package validator

import (
	"fmt"
	"unicode/utf8"
)

const ideographicSpace = '\u3000'

// IsValidName reports whether every rune of name is printable ASCII.
func IsValidName(name string) bool {
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == ideographicSpace {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

func verdict(fail bool) Verdict {
	if fail {
		return Fail
	}
	return Pass
}

func checkNaming(mt *Metrics) *Check {
	c := &Check{ID: CheckNaming, Label: "オブジェクト名", Detail: "OK"}
	if mt.HasBadName {
		c.Verdict = Fail
		c.Detail = fmt.Sprintf("2Byte文字か全角スペースが含まれています (%s)", truncate(mt.BadName, 3))
	}
	return c
}

func checkSize(mt *Metrics, limits Limits) *Check {
	s := mt.Bounds.Size()
	return &Check{
		ID:      CheckSize,
		Label:   "サイズ",
		Verdict: verdict(s.X > limits.MaxExtent || s.Y > limits.MaxExtent || s.Z > limits.MaxExtent),
		Detail:  fmt.Sprintf("X: %.2f, Y: %.2f, Z: %.2f", s.X, s.Y, s.Z),
	}
}

func checkPolygons(mt *Metrics, limits Limits) *Check {
	return &Check{
		ID:      CheckPolygons,
		Label:   "ポリゴン数",
		Verdict: verdict(mt.Triangles > limits.MaxTriangles),
		Detail:  fmt.Sprintf("%d", mt.Triangles),
	}
}

func checkAnimation(mt *Metrics) *Check {
	c := &Check{ID: CheckAnimation, Label: "アニメーション", Detail: "なし"}
	if mt.Animations > 0 {
		c.Verdict = Fail
		c.Detail = fmt.Sprintf("アニメーションが含まれています (%d)", mt.Animations)
	}
	return c
}

// checkTextures reports the count violation when both limits are exceeded.
func checkTextures(mt *Metrics, limits Limits) *Check {
	c := &Check{ID: CheckTextures, Label: "テクスチャ", Detail: fmt.Sprintf("%d枚", len(mt.Textures))}
	if len(mt.Textures) > limits.MaxTextures {
		c.Verdict = Fail
		c.Detail = fmt.Sprintf("%d枚 (%d枚まで)", len(mt.Textures), limits.MaxTextures)
		return c
	}
	for _, t := range mt.Textures {
		if t.Width > limits.MaxTextureSize || t.Height > limits.MaxTextureSize {
			c.Verdict = Fail
			c.Detail = fmt.Sprintf("%dx%d (%dpxまで)", t.Width, t.Height, limits.MaxTextureSize)
			return c
		}
	}
	return c
}

func checkMaterials(mt *Metrics, limits Limits) *Check {
	c := &Check{ID: CheckMaterials, Label: "マテリアル数", Detail: fmt.Sprintf("%d個", len(mt.Materials))}
	if len(mt.Materials) > limits.MaxMaterials {
		c.Verdict = Fail
		c.Detail = fmt.Sprintf("%d個 (%d個まで)", len(mt.Materials), limits.MaxMaterials)
	}
	return c
}

func checkShading(mt *Metrics) *Check {
	c := &Check{ID: CheckShading, Label: "シェーディング", Detail: "Unlit"}
	for _, m := range mt.Materials {
		if !m.Unlit {
			c.Verdict = Warning
			c.Detail = "Unlitマテリアルの使用を推奨します"
			break
		}
	}
	return c
}
