package editor

import (
	"errors"
	"fmt"

	"github.com/GrainArc/CragTopo/linework"
)

var (
	// ErrDimensionsNotReady 图片尚未加载完成
	ErrDimensionsNotReady = linework.ErrDimensionsNotReady
	// ErrNoSelection 没有选中线段也不在新建线条模式
	ErrNoSelection = errors.New("未选择线条")
	// ErrLabelConflict 新线号与已有线段冲突
	ErrLabelConflict = errors.New("线号已被占用")
	// ErrReservedLabel 新建线条尚未改成正式线号
	ErrReservedLabel = errors.New("请先为新线条设置线号")
	// ErrTooFewPoints 线条至少需要两个控制点
	ErrTooFewPoints = errors.New("线条至少需要两个点")
	// ErrReadOnly 缺少认证凭据，只读模式
	ErrReadOnly = errors.New("只读模式，请先登录")
	// ErrSaveInFlight 上一次保存尚未返回
	ErrSaveInFlight = errors.New("正在保存，请稍候")
	// ErrSegmentNotFound 线号不存在
	ErrSegmentNotFound = errors.New("线条不存在")
	// ErrInvalidTransition 当前状态不允许该操作
	ErrInvalidTransition = errors.New("当前状态不允许该操作")
)

// ConflictError 线号冲突，Label 为用户想使用的线号
type ConflictError struct {
	Label int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("线号 %d 已被占用，请换一个线号", e.Label)
}

func (e *ConflictError) Unwrap() error {
	return ErrLabelConflict
}

// GatewayError 持久化网关返回的失败
type GatewayError struct {
	Status int
	Detail string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("网关返回状态 %d", e.Status)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// genericSaveFailure 没有服务端详情时展示给用户的提示
const genericSaveFailure = "保存失败，请重试"

// UserMessage 所有错误统一转换为用户可见的提示
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Error()
	}
	var gw *GatewayError
	if errors.As(err, &gw) {
		if gw.Detail != "" {
			return gw.Detail
		}
		return genericSaveFailure
	}
	for _, known := range []error{
		ErrDimensionsNotReady, ErrNoSelection, ErrLabelConflict, ErrReservedLabel,
		ErrTooFewPoints, ErrReadOnly, ErrSaveInFlight, ErrSegmentNotFound, ErrInvalidTransition,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return genericSaveFailure
}
