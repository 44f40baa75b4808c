// Package linework 处理拓扑图上的线条几何：
// 显示像素坐标与单位正方形存储坐标之间的转换、样条曲线路径生成、命中检测以及绘制。
package linework

import (
	"errors"

	"github.com/paulmach/orb"
)

// ErrDimensionsNotReady 图片尚未完成布局，显示尺寸未知
var ErrDimensionsNotReady = errors.New("图片尺寸未就绪")

// Dimensions 当前渲染图片元素的像素宽高
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Known 宽高均大于0时才允许坐标转换
func (d Dimensions) Known() bool {
	return d.Width > 0 && d.Height > 0
}

// Bounds 显示图片在像素空间中的范围
func (d Dimensions) Bounds() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{d.Width, d.Height}}
}

// Normalize 像素坐标 -> 单位正方形坐标 (x/w, y/h)，不做取整
func Normalize(points orb.LineString, d Dimensions) (orb.LineString, error) {
	if !d.Known() {
		return nil, ErrDimensionsNotReady
	}
	out := make(orb.LineString, len(points))
	for i, p := range points {
		out[i] = orb.Point{p[0] / d.Width, p[1] / d.Height}
	}
	return out, nil
}

// Denormalize Normalize 的逆运算
func Denormalize(points orb.LineString, d Dimensions) (orb.LineString, error) {
	if !d.Known() {
		return nil, ErrDimensionsNotReady
	}
	out := make(orb.LineString, len(points))
	for i, p := range points {
		out[i] = orb.Point{p[0] * d.Width, p[1] * d.Height}
	}
	return out, nil
}

// Rescale 显示尺寸变化时按比例换算像素坐标
func Rescale(points orb.LineString, from, to Dimensions) (orb.LineString, error) {
	n, err := Normalize(points, from)
	if err != nil {
		return nil, err
	}
	return Denormalize(n, to)
}

// InUnitSquare 判断所有坐标是否都落在 [0,1]x[0,1] 内
func InUnitSquare(points orb.LineString) bool {
	unit := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	for _, p := range points {
		if !unit.Contains(p) {
			return false
		}
	}
	return true
}
