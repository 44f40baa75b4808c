package editor

import "context"

// Intent 保存意图
type Intent int

const (
	IntentReplace Intent = iota
	IntentCreate
	IntentDelete
)

func (i Intent) String() string {
	switch i {
	case IntentCreate:
		return "create"
	case IntentDelete:
		return "delete"
	default:
		return "replace"
	}
}

// SubmitRequest 提交给持久化网关的请求
type SubmitRequest struct {
	TopoID    uint   `json:"topo_id"`
	FileName  string `json:"file_name"`
	LineLabel int    `json:"line_label"`
	// AsNew 为 true 表示新建，false 表示原地替换
	AsNew    bool `json:"as_new"`
	Deleting bool `json:"deleting"`
	// Feature 删除时为空
	Feature *LineSegment `json:"feature,omitempty"`
}

// Intent 由请求标志推导保存意图
func (r SubmitRequest) Intent() Intent {
	switch {
	case r.Deleting:
		return IntentDelete
	case r.AsNew:
		return IntentCreate
	default:
		return IntentReplace
	}
}

// SubmitResult 成功响应
type SubmitResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Gateway 持久化边界。实现方负责超时策略，任何错误都视为保存失败；
// 服务端应再次检查线号冲突并返回 *ConflictError
type Gateway interface {
	SubmitLine(ctx context.Context, req SubmitRequest) (SubmitResult, error)
	FetchSegments(ctx context.Context, topoID uint) ([]LineSegment, error)
}
