package linework

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// HitTolerance 线条点击热区半宽（像素），与可见线宽无关，细线也容易选中
const HitTolerance = 10.0

// HandleRadius 控制点手柄的点击半径（像素）
const HandleRadius = 8.0

const flattenSteps = 16

// HitLine 返回距离 p 最近且在容差内的线号
func HitLine(paths map[int]PathSpec, p orb.Point, tolerance float64) (int, bool) {
	best, found := 0, false
	bestDist := math.Inf(1)
	for label, path := range paths {
		if path.Empty() {
			continue
		}
		d := planar.DistanceFrom(path.Flatten(flattenSteps), p)
		if d > tolerance {
			continue
		}
		// 距离相同时取较小线号，保证结果稳定
		if d < bestDist || (d == bestDist && label < best) {
			best, bestDist, found = label, d, true
		}
	}
	return best, found
}

// HitHandle 返回半径内最近的控制点下标
func HitHandle(points orb.LineString, p orb.Point, radius float64) (int, bool) {
	idx := -1
	bestDist := math.Inf(1)
	for i, q := range points {
		d := planar.Distance(p, q)
		if d <= radius && d < bestDist {
			idx, bestDist = i, d
		}
	}
	return idx, idx >= 0
}
