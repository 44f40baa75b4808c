// Package editor 实现拓扑图线条标注编辑器：
// 标注仓库（按线号索引的不可变集合）、编辑会话状态机、保存协议以及持久化网关接口。
package editor

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	FeatureType    = "Feature"
	GeomLineString = "LineString"
	GeomPoint      = "Point"
	propLineLabel  = "line_label"
	propTopoID     = "topo_id"
	propFileName   = "file_name"
	propDeleting   = "deleting"
)

// Geometry 线段几何，坐标为单位正方形空间
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates orb.LineString `json:"coordinates"`
}

// Properties 线段属性
type Properties struct {
	LineLabel int    `json:"line_label"`
	TopoID    uint   `json:"topo_id,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	// Deleting 仅在删除请求中携带，持久化时总为false
	Deleting bool `json:"deleting,omitempty"`
}

// LineSegment 一条线路标注，GeoJSON Feature 结构
type LineSegment struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// NewLineSegment 构造 LineString 类型的线段
func NewLineSegment(label int, coords orb.LineString) LineSegment {
	return LineSegment{
		Type:       FeatureType,
		Geometry:   Geometry{Type: GeomLineString, Coordinates: coords},
		Properties: Properties{LineLabel: label},
	}
}

// Label 线号
func (s LineSegment) Label() int {
	return s.Properties.LineLabel
}

// Drawable 只有 LineString 才会被渲染和选中
func (s LineSegment) Drawable() bool {
	return s.Geometry.Type == GeomLineString && len(s.Geometry.Coordinates) >= 2
}

// Clone 深拷贝，避免坐标切片被共享修改
func (s LineSegment) Clone() LineSegment {
	c := s
	c.Geometry.Coordinates = s.Geometry.Coordinates.Clone()
	return c
}

// ToFeature 转换为 orb geojson 要素
func (s LineSegment) ToFeature() *geojson.Feature {
	var geom orb.Geometry
	switch s.Geometry.Type {
	case GeomPoint:
		if len(s.Geometry.Coordinates) > 0 {
			geom = s.Geometry.Coordinates[0]
		} else {
			geom = orb.Point{}
		}
	default:
		geom = s.Geometry.Coordinates.Clone()
	}
	f := geojson.NewFeature(geom)
	f.Properties[propLineLabel] = s.Properties.LineLabel
	if s.Properties.TopoID != 0 {
		f.Properties[propTopoID] = s.Properties.TopoID
	}
	if s.Properties.FileName != "" {
		f.Properties[propFileName] = s.Properties.FileName
	}
	if s.Properties.Deleting {
		f.Properties[propDeleting] = true
	}
	return f
}

// SegmentFromFeature 从 geojson 要素解析线段
func SegmentFromFeature(f *geojson.Feature) (LineSegment, error) {
	if f == nil {
		return LineSegment{}, fmt.Errorf("空要素")
	}
	seg := LineSegment{Type: FeatureType}
	switch g := f.Geometry.(type) {
	case orb.LineString:
		seg.Geometry = Geometry{Type: GeomLineString, Coordinates: g.Clone()}
	case orb.Point:
		seg.Geometry = Geometry{Type: GeomPoint, Coordinates: orb.LineString{g}}
	default:
		if f.Geometry == nil {
			return LineSegment{}, fmt.Errorf("要素缺少几何")
		}
		return LineSegment{}, fmt.Errorf("不支持的几何类型 %s", f.Geometry.GeoJSONType())
	}
	label, ok := toInt(f.Properties[propLineLabel])
	if !ok {
		return LineSegment{}, fmt.Errorf("要素缺少 line_label")
	}
	seg.Properties.LineLabel = label
	if id, ok := toInt(f.Properties[propTopoID]); ok && id > 0 {
		seg.Properties.TopoID = uint(id)
	}
	seg.Properties.FileName = f.Properties.MustString(propFileName, "")
	seg.Properties.Deleting = f.Properties.MustBool(propDeleting, false)
	return seg, nil
}

// DecodeCollection 解析存储中的 FeatureCollection
func DecodeCollection(data []byte) ([]LineSegment, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("解析线段集合失败: %w", err)
	}
	segments := make([]LineSegment, 0, len(fc.Features))
	for i, f := range fc.Features {
		seg, err := SegmentFromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("第%d个要素: %w", i, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// EncodeCollection 编码为 FeatureCollection，删除标记不会落库
func EncodeCollection(segments []LineSegment) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, s := range segments {
		s.Properties.Deleting = false
		fc.Append(s.ToFeature())
	}
	return json.Marshal(fc)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}
