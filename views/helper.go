package views

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/GrainArc/CragTopo/response"
	"github.com/GrainArc/CragTopo/services"
	"github.com/gin-gonic/gin"
)

// idParam 解析路径中的正整数ID
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "无效的ID", c.Param(name))
		return 0, false
	}
	return uint(id), true
}

// errorStatus 服务层错误对应的 HTTP 状态码
func errorStatus(err error) int {
	switch {
	case errors.Is(err, editor.ErrLabelConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrTopoNotFound),
		errors.Is(err, services.ErrCragNotFound),
		errors.Is(err, services.ErrAreaNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidFeature),
		errors.Is(err, services.ErrInvalidPosition),
		errors.Is(err, services.ErrUnsupportedImage),
		errors.Is(err, editor.ErrTooFewPoints),
		errors.Is(err, editor.ErrReservedLabel):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError 输出服务层错误，details 为可展示给用户的说明
func abortWithError(c *gin.Context, err error) {
	status := errorStatus(err)
	switch status {
	case http.StatusConflict:
		response.Conflict(c, "线号冲突", editor.UserMessage(err))
	case http.StatusInternalServerError:
		response.InternalError(c, "服务器内部错误", err.Error())
	default:
		response.Error(c, status, http.StatusText(status), err.Error())
	}
}
