package editor

import (
	"github.com/GrainArc/CragTopo/linework"
)

// PlanSave 在提交时对当前会话分类：删除、新建或原地替换，
// 新建前对照本地快照检查线号冲突。不修改 store 和 session
func PlanSave(store Store, s *Session, topoID uint, fileName string, deleting bool) (SubmitRequest, error) {
	selected, ok := s.SelectedLabel()
	if !ok {
		return SubmitRequest{}, ErrNoSelection
	}
	req := SubmitRequest{TopoID: topoID, FileName: fileName}

	if deleting {
		// 新建线条还没有落库，没有可删除的对象
		if s.Fresh() {
			return SubmitRequest{}, ErrNoSelection
		}
		req.LineLabel = selected
		req.Deleting = true
		return req, nil
	}

	target, _ := s.TargetLabel()
	asNew := target != selected || s.Fresh()
	points := s.WorkingPoints()
	if len(points) < 2 {
		return SubmitRequest{}, ErrTooFewPoints
	}

	label := selected
	if asNew {
		if target == FreshLineLabel {
			return SubmitRequest{}, ErrReservedLabel
		}
		if store.Has(target) {
			return SubmitRequest{}, &ConflictError{Label: target}
		}
		label = target
	}

	coords, err := linework.Normalize(points, s.Dimensions())
	if err != nil {
		return SubmitRequest{}, err
	}
	seg := NewLineSegment(label, coords)
	seg.Properties.TopoID = topoID
	seg.Properties.FileName = fileName

	req.LineLabel = label
	req.AsNew = asNew
	req.Feature = &seg
	return req, nil
}

// ApplyRequest 把已校验的请求应用到集合上：删除不存在的线号不报错，
// 新建遇到同线号返回冲突，替换不存在时追加
func ApplyRequest(store Store, req SubmitRequest) (Store, error) {
	switch req.Intent() {
	case IntentDelete:
		return store.WithRemoved(req.LineLabel), nil
	case IntentCreate:
		if store.Has(req.LineLabel) {
			return store, &ConflictError{Label: req.LineLabel}
		}
		if req.Feature == nil {
			return store, ErrTooFewPoints
		}
		return store.WithAppended(persistable(*req.Feature, req)), nil
	default:
		if req.Feature == nil {
			return store, ErrTooFewPoints
		}
		return store.WithReplaced(req.LineLabel, persistable(*req.Feature, req)), nil
	}
}

func persistable(seg LineSegment, req SubmitRequest) LineSegment {
	seg = seg.Clone()
	seg.Type = FeatureType
	seg.Properties.LineLabel = req.LineLabel
	seg.Properties.Deleting = false
	if req.TopoID != 0 {
		seg.Properties.TopoID = req.TopoID
	}
	if req.FileName != "" {
		seg.Properties.FileName = req.FileName
	}
	return seg
}
