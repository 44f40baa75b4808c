package linework

import (
	"github.com/gogpu/gg"
)

// Stroke 把路径送入 gg 上下文并描边
func Stroke(dc *gg.Context, p PathSpec) error {
	if p.Empty() {
		return nil
	}
	dc.MoveTo(p.Start[0], p.Start[1])
	for _, seg := range p.Segments {
		dc.CubicTo(seg.C1[0], seg.C1[1], seg.C2[0], seg.C2[1], seg.To[0], seg.To[1])
	}
	return dc.Stroke()
}
