package editor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/GrainArc/CragTopo/linework"
	"github.com/paulmach/orb"
)

// ClickEvent 以像素坐标点击，编辑器按线条热区换算成 SelectEvent
type ClickEvent struct{ Point orb.Point }

// PressAtEvent 以像素坐标按下，编辑器按手柄半径换算成 PressEvent
type PressAtEvent struct{ Point orb.Point }

func (ClickEvent) isEvent()   {}
func (PressAtEvent) isEvent() {}

// Editor 一个拓扑图的编辑器宿主：持有只读线段快照、会话和网关。
// 快照只在保存成功后的刷新中整体替换，会话不直接写快照
type Editor struct {
	mu sync.Mutex

	topoID   uint
	fileName string
	gateway  Gateway
	canWrite bool

	store   Store
	session *Session

	saving        bool
	pendingDelete *int
}

// NewEditor 创建编辑器，canWrite 为 false 时只能选择和预览
func NewEditor(topoID uint, fileName string, gw Gateway, canWrite bool) *Editor {
	return &Editor{
		topoID:   topoID,
		fileName: fileName,
		gateway:  gw,
		canWrite: canWrite,
		session:  NewSession(),
	}
}

// TopoID 拓扑图ID
func (e *Editor) TopoID() uint {
	return e.topoID
}

// CanWrite 是否允许提交
func (e *Editor) CanWrite() bool {
	return e.canWrite
}

// Refresh 从网关重新拉取线段并整体替换快照
func (e *Editor) Refresh(ctx context.Context) error {
	segments, err := e.gateway.FetchSegments(ctx, e.topoID)
	if err != nil {
		return fmt.Errorf("刷新线条失败: %w", err)
	}
	e.mu.Lock()
	e.store = NewStore(segments)
	e.mu.Unlock()
	return nil
}

// Store 当前快照
func (e *Editor) Store() Store {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store
}

// Apply 消费一个界面事件
func (e *Editor) Apply(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch ev := ev.(type) {
	case ClickEvent:
		label, ok := linework.HitLine(e.pathsLocked(), ev.Point, linework.HitTolerance)
		if !ok {
			return nil
		}
		return e.session.Select(e.store, label)
	case PressAtEvent:
		idx, ok := linework.HitHandle(e.session.working, ev.Point, linework.HandleRadius)
		if !ok {
			return nil
		}
		return e.session.BeginDrag(idx)
	default:
		return e.session.Apply(e.store, ev)
	}
}

// Submit 执行保存协议。正在保存时直接拒绝；无论成功失败会话都回到 Idle；
// 成功后重新拉取权威数据，失败时快照保持不变
func (e *Editor) Submit(ctx context.Context, deleting bool) (SubmitResult, error) {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return SubmitResult{}, ErrSaveInFlight
	}
	if !e.canWrite {
		e.session.Reset()
		e.mu.Unlock()
		return SubmitResult{}, ErrReadOnly
	}
	req, err := PlanSave(e.store, e.session, e.topoID, e.fileName, deleting)
	e.session.Reset()
	if err != nil {
		e.mu.Unlock()
		logger().Info("editor: save rejected", "topo", e.topoID, "err", err)
		return SubmitResult{}, err
	}
	e.saving = true
	if req.Deleting {
		label := req.LineLabel
		e.pendingDelete = &label
	}
	e.mu.Unlock()

	res, err := e.gateway.SubmitLine(ctx, req)
	var segments []LineSegment
	var fetchErr error
	if err == nil {
		segments, fetchErr = e.gateway.FetchSegments(ctx, e.topoID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	e.pendingDelete = nil
	if err != nil {
		logger().Warn("editor: save failed", "topo", e.topoID, "label", req.LineLabel, "intent", req.Intent().String(), "err", err)
		return SubmitResult{}, err
	}
	if fetchErr != nil {
		return res, fmt.Errorf("刷新线条失败: %w", fetchErr)
	}
	e.store = NewStore(segments)
	logger().Info("editor: saved", "topo", e.topoID, "label", req.LineLabel, "intent", req.Intent().String())
	return res, nil
}

// Saving 是否有保存请求在途
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// RenderedLine 已提交线条在显示空间中的渲染描述
type RenderedLine struct {
	Label    int               `json:"label"`
	Path     linework.PathSpec `json:"path"`
	SVG      string            `json:"svg"`
	LabelAt  orb.Point         `json:"label_at"`
	Selected bool              `json:"selected,omitempty"`
	// Deleting 删除请求在途时以虚影样式显示
	Deleting bool `json:"deleting,omitempty"`
}

// EditorView 宿主界面需要的全部渲染状态
type EditorView struct {
	TopoID     uint                `json:"topo_id"`
	Dimensions linework.Dimensions `json:"dimensions"`
	CanEdit    bool                `json:"can_edit"`
	Saving     bool                `json:"saving"`
	Lines      []RenderedLine      `json:"lines"`
	Session    SessionView         `json:"session"`
}

// View 当前渲染快照。尺寸未知时不输出任何线条，因而也无法点选
func (e *Editor) View() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := EditorView{
		TopoID:     e.topoID,
		Dimensions: e.session.Dimensions(),
		CanEdit:    e.canWrite,
		Saving:     e.saving,
		Lines:      []RenderedLine{},
		Session:    e.session.View(),
	}
	selected, hasSel := e.session.SelectedLabel()
	for label, path := range e.pathsLocked() {
		anchor, _ := linework.LabelAnchor(path, linework.LabelOffset)
		v.Lines = append(v.Lines, RenderedLine{
			Label:    label,
			Path:     path,
			SVG:      path.SVG(),
			LabelAt:  anchor,
			Selected: hasSel && !e.session.Fresh() && label == selected,
			Deleting: e.pendingDelete != nil && *e.pendingDelete == label,
		})
	}
	sort.Slice(v.Lines, func(i, j int) bool { return v.Lines[i].Label < v.Lines[j].Label })
	return v
}

// pathsLocked 已提交线条的像素空间路径，调用方持有锁
func (e *Editor) pathsLocked() map[int]linework.PathSpec {
	dims := e.session.Dimensions()
	paths := make(map[int]linework.PathSpec)
	if !dims.Known() {
		return paths
	}
	for _, seg := range e.store.segments {
		if !seg.Drawable() {
			continue
		}
		if _, dup := paths[seg.Label()]; dup {
			continue
		}
		pts, err := linework.Denormalize(seg.Geometry.Coordinates, dims)
		if err != nil {
			continue
		}
		paths[seg.Label()] = linework.BuildPath(pts)
	}
	return paths
}
