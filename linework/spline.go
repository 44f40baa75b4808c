package linework

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// DefaultTension 基数样条张力，0 时曲线最圆滑
const DefaultTension = 0.0

// LabelOffset 线号圆点相对终点的竖直偏移（像素）
const LabelOffset = 14.0

// CubicSegment 三次贝塞尔曲线段，起点为上一段终点
type CubicSegment struct {
	C1 orb.Point `json:"c1"`
	C2 orb.Point `json:"c2"`
	To orb.Point `json:"to"`
}

// PathSpec 与渲染后端无关的路径描述
type PathSpec struct {
	Start    orb.Point      `json:"start"`
	Segments []CubicSegment `json:"segments"`
}

// Empty 控制点不足两个时路径为空，调用方跳过渲染
func (p PathSpec) Empty() bool {
	return len(p.Segments) == 0
}

// End 路径最后一个点
func (p PathSpec) End() orb.Point {
	if len(p.Segments) == 0 {
		return p.Start
	}
	return p.Segments[len(p.Segments)-1].To
}

// BuildPath 使用默认张力生成经过所有控制点的基数样条
func BuildPath(points orb.LineString) PathSpec {
	return BuildPathTension(points, DefaultTension)
}

// BuildPathTension 基数样条插值，首尾端点重复使用，
// 控制点系数 k=(1-tension)/6，与 d3 curveCardinal 一致
func BuildPathTension(points orb.LineString, tension float64) PathSpec {
	if len(points) < 2 {
		return PathSpec{}
	}
	k := (1 - tension) / 6
	path := PathSpec{
		Start:    points[0],
		Segments: make([]CubicSegment, 0, len(points)-1),
	}
	last := len(points) - 1
	for i := 0; i < last; i++ {
		p0 := points[max(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[min(i+2, last)]
		path.Segments = append(path.Segments, CubicSegment{
			C1: orb.Point{p1[0] + k*(p2[0]-p0[0]), p1[1] + k*(p2[1]-p0[1])},
			C2: orb.Point{p2[0] + k*(p1[0]-p3[0]), p2[1] + k*(p1[1]-p3[1])},
			To: p2,
		})
	}
	return path
}

// LabelAnchor 线号圆点位置：路径终点向下偏移 offset
func LabelAnchor(p PathSpec, offset float64) (orb.Point, bool) {
	if p.Empty() {
		return orb.Point{}, false
	}
	end := p.End()
	return orb.Point{end[0], end[1] + offset}, true
}

// Flatten 将曲线按每段 steps 次采样展开为折线，用于命中检测
func (p PathSpec) Flatten(steps int) orb.LineString {
	if p.Empty() {
		return nil
	}
	if steps < 1 {
		steps = 1
	}
	out := make(orb.LineString, 0, len(p.Segments)*steps+1)
	out = append(out, p.Start)
	from := p.Start
	for _, seg := range p.Segments {
		for s := 1; s <= steps; s++ {
			out = append(out, seg.eval(from, float64(s)/float64(steps)))
		}
		from = seg.To
	}
	return out
}

func (c CubicSegment) eval(from orb.Point, t float64) orb.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	d := 3 * mt * t * t
	e := t * t * t
	return orb.Point{
		a*from[0] + b*c.C1[0] + d*c.C2[0] + e*c.To[0],
		a*from[1] + b*c.C1[1] + d*c.C2[1] + e*c.To[1],
	}
}

// SVG 输出 SVG path 的 d 属性，供 DOM 前端直接使用
func (p PathSpec) SVG() string {
	if p.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("M")
	writePoint(&sb, p.Start)
	for _, seg := range p.Segments {
		sb.WriteString("C")
		writePoint(&sb, seg.C1)
		sb.WriteString(",")
		writePoint(&sb, seg.C2)
		sb.WriteString(",")
		writePoint(&sb, seg.To)
	}
	return sb.String()
}

func writePoint(sb *strings.Builder, p orb.Point) {
	sb.WriteString(strconv.FormatFloat(p[0], 'f', -1, 64))
	sb.WriteString(",")
	sb.WriteString(strconv.FormatFloat(p[1], 'f', -1, 64))
}
