package editor

import (
	"fmt"

	"github.com/GrainArc/CragTopo/linework"
	"github.com/paulmach/orb"
)

// Event 宿主界面送入状态机的输入事件
type Event interface {
	isEvent()
}

type (
	// ResizeEvent 图片加载完成或显示尺寸变化
	ResizeEvent struct{ Dimensions linework.Dimensions }
	// SelectEvent 点击某条线的热区
	SelectEvent struct{ Label int }
	// PressEvent 按下控制点手柄
	PressEvent struct{ Index int }
	// MoveEvent 指针移动（像素坐标）
	MoveEvent struct{ Point orb.Point }
	// ReleaseEvent 松开指针
	ReleaseEvent struct{}
	// LeaveEvent 指针离开图片
	LeaveEvent struct{}
	// RetargetEvent 修改目标线号
	RetargetEvent struct{ Label int }
	// FreshEvent 开始一条新线
	FreshEvent struct{}
	// CancelEvent 取消编辑
	CancelEvent struct{}
)

func (ResizeEvent) isEvent()   {}
func (SelectEvent) isEvent()   {}
func (PressEvent) isEvent()    {}
func (MoveEvent) isEvent()     {}
func (ReleaseEvent) isEvent()  {}
func (LeaveEvent) isEvent()    {}
func (RetargetEvent) isEvent() {}
func (FreshEvent) isEvent()    {}
func (CancelEvent) isEvent()   {}

// Apply 顺序消费一个事件
func (s *Session) Apply(store Store, ev Event) error {
	switch e := ev.(type) {
	case ResizeEvent:
		s.SetDimensions(e.Dimensions)
	case SelectEvent:
		return s.Select(store, e.Label)
	case PressEvent:
		return s.BeginDrag(e.Index)
	case MoveEvent:
		s.MoveTo(e.Point)
	case ReleaseEvent, LeaveEvent:
		s.EndDrag()
	case RetargetEvent:
		return s.Retarget(e.Label)
	case FreshEvent:
		return s.StartFresh()
	case CancelEvent:
		s.Cancel()
	default:
		return fmt.Errorf("未知事件 %T", ev)
	}
	return nil
}
