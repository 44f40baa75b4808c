package editor

import (
	"fmt"

	"github.com/GrainArc/CragTopo/linework"
	"github.com/paulmach/orb"
)

// State 编辑会话状态
type State int

const (
	StateIdle State = iota
	StateSelected
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateDragging:
		return "dragging"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FreshLineLabel 新建线条的占位线号。约定远大于实际线号范围，保存前必须改成正式线号
const FreshLineLabel = 9999

// FreshLinePrototype 新建线条的初始形状（单位正方形坐标，从上到下）
var FreshLinePrototype = orb.LineString{{0.5, 0.2}, {0.5, 0.4}, {0.5, 0.6}, {0.5, 0.8}}

// Session 一个编辑器实例的交互状态。零值即为 Idle 且尺寸未知。
// 所有方法都应在同一个事件循环中顺序调用。
type Session struct {
	dims linework.Dimensions

	hasSelection  bool
	fresh         bool
	selectedLabel int
	targetLabel   int
	working       orb.LineString

	dragging  bool
	dragIndex int
}

// NewSession 创建空会话
func NewSession() *Session {
	return &Session{}
}

// State 当前状态
func (s *Session) State() State {
	switch {
	case s.dragging:
		return StateDragging
	case s.hasSelection:
		return StateSelected
	default:
		return StateIdle
	}
}

// Dimensions 当前显示尺寸
func (s *Session) Dimensions() linework.Dimensions {
	return s.dims
}

// SetDimensions 图片加载完成或尺寸变化。已选中时按比例换算工作点；
// 新尺寸无效时直接结束编辑
func (s *Session) SetDimensions(d linework.Dimensions) {
	old := s.dims
	s.dims = d
	if !s.hasSelection {
		return
	}
	if !d.Known() || !old.Known() {
		s.Reset()
		return
	}
	scaled, err := linework.Rescale(s.working, old, d)
	if err != nil {
		s.Reset()
		return
	}
	s.working = scaled
}

// Select 点击线条进入 Selected，工作点为反归一化后的像素坐标
func (s *Session) Select(store Store, label int) error {
	if !s.dims.Known() {
		return ErrDimensionsNotReady
	}
	if s.dragging {
		return ErrInvalidTransition
	}
	seg, ok := store.FindByLabel(label)
	if !ok || !seg.Drawable() {
		return fmt.Errorf("%w: %d", ErrSegmentNotFound, label)
	}
	pts, err := linework.Denormalize(seg.Geometry.Coordinates, s.dims)
	if err != nil {
		return err
	}
	s.hasSelection = true
	s.fresh = false
	s.selectedLabel = label
	s.targetLabel = label
	s.working = pts
	logger().Debug("editor: select", "label", label, "points", len(pts))
	return nil
}

// StartFresh 不经过点选，直接以原型形状和占位线号开始一条新线
func (s *Session) StartFresh() error {
	if !s.dims.Known() {
		return ErrDimensionsNotReady
	}
	if s.dragging {
		return ErrInvalidTransition
	}
	pts, err := linework.Denormalize(FreshLinePrototype, s.dims)
	if err != nil {
		return err
	}
	s.hasSelection = true
	s.fresh = true
	s.selectedLabel = FreshLineLabel
	s.targetLabel = FreshLineLabel
	s.working = pts
	return nil
}

// BeginDrag 按下控制点手柄
func (s *Session) BeginDrag(index int) error {
	if !s.hasSelection || s.dragging {
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(s.working) {
		return fmt.Errorf("%w: 控制点 %d 不存在", ErrInvalidTransition, index)
	}
	s.dragging = true
	s.dragIndex = index
	return nil
}

// MoveTo 拖动中更新控制点。指针离开图片范围时强制松开且不移动该点，
// 返回值表示工作点是否变化
func (s *Session) MoveTo(p orb.Point) bool {
	if !s.dragging {
		return false
	}
	if !s.dims.Bounds().Contains(p) {
		s.EndDrag()
		return false
	}
	s.working[s.dragIndex] = p
	return true
}

// EndDrag 松开指针或离开图片，回到 Selected
func (s *Session) EndDrag() {
	s.dragging = false
	s.dragIndex = 0
}

// Retarget 修改保存时使用的线号，不影响工作点
func (s *Session) Retarget(label int) error {
	if !s.hasSelection {
		return ErrNoSelection
	}
	s.targetLabel = label
	return nil
}

// Reset 回到 Idle 并清空所有临时字段，显示尺寸保留
func (s *Session) Reset() {
	s.hasSelection = false
	s.fresh = false
	s.selectedLabel = 0
	s.targetLabel = 0
	s.working = nil
	s.dragging = false
	s.dragIndex = 0
}

// Cancel 取消编辑
func (s *Session) Cancel() {
	s.Reset()
}

// SelectedLabel 当前选中的线号
func (s *Session) SelectedLabel() (int, bool) {
	return s.selectedLabel, s.hasSelection
}

// TargetLabel 保存时使用的线号
func (s *Session) TargetLabel() (int, bool) {
	return s.targetLabel, s.hasSelection
}

// Fresh 是否处于新建线条模式
func (s *Session) Fresh() bool {
	return s.fresh
}

// WorkingPoints 工作点拷贝（像素坐标）
func (s *Session) WorkingPoints() orb.LineString {
	return s.working.Clone()
}

// DragIndex 正在拖动的控制点
func (s *Session) DragIndex() (int, bool) {
	return s.dragIndex, s.dragging
}

// SessionView 渲染用的会话快照
type SessionView struct {
	State         string            `json:"state"`
	SelectedLabel *int              `json:"selected_label,omitempty"`
	TargetLabel   *int              `json:"target_label,omitempty"`
	Fresh         bool              `json:"fresh,omitempty"`
	WorkingPoints orb.LineString    `json:"working_points,omitempty"`
	DragIndex     *int              `json:"drag_index,omitempty"`
	Preview       linework.PathSpec `json:"preview"`
	PreviewSVG    string            `json:"preview_svg,omitempty"`
}

// View 生成当前快照，预览路径与提交后的线条使用同一个渲染函数
func (s *Session) View() SessionView {
	v := SessionView{State: s.State().String()}
	if !s.hasSelection {
		return v
	}
	sel, target := s.selectedLabel, s.targetLabel
	v.SelectedLabel = &sel
	v.TargetLabel = &target
	v.Fresh = s.fresh
	v.WorkingPoints = s.working.Clone()
	if s.dragging {
		idx := s.dragIndex
		v.DragIndex = &idx
	}
	v.Preview = linework.BuildPath(s.working)
	v.PreviewSVG = v.Preview.SVG()
	return v
}
