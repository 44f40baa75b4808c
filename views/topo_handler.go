package views

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/GrainArc/CragTopo/response"
	"github.com/GrainArc/CragTopo/services"
	"github.com/gin-gonic/gin"
)

type TopoHandler struct {
	topos  *services.TopoService
	render *services.RenderService
	share  *services.ShareService
}

func NewTopoHandler(topos *services.TopoService, render *services.RenderService, share *services.ShareService) *TopoHandler {
	return &TopoHandler{topos: topos, render: render, share: share}
}

// Get 拓扑图详情
func (h *TopoHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	topo, err := h.topos.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	_, canEdit := CurrentUser(c)
	response.Success(c, gin.H{
		"topo":     topo,
		"can_edit": canEdit,
		"share":    h.share.TopoURL(topo.ID),
	})
}

// Lines 权威线段集合，直接输出 FeatureCollection
func (h *TopoHandler) Lines(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	segments, err := h.topos.Segments(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	data, err := editor.EncodeCollection(segments)
	if err != nil {
		response.InternalError(c, "编码线段失败", err.Error())
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// SubmitLine 新建、替换或删除一条线
// @Accept json
// @Param body body editor.SubmitRequest true "topo_id/file_name/line_label/as_new/deleting/feature"
func (h *TopoHandler) SubmitLine(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req editor.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求格式错误", err.Error())
		return
	}
	if req.TopoID != 0 && req.TopoID != id {
		response.BadRequest(c, "topo_id 与路径不一致")
		return
	}
	user, _ := CurrentUser(c)
	res, err := h.topos.SubmitLine(c.Request.Context(), id, user.Name, req)
	if err != nil {
		log.Printf("提交线条失败 topo=%d label=%d: %v", id, req.LineLabel, err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// History 线条修改记录
func (h *TopoHandler) History(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	records, err := h.topos.History(c.Request.Context(), id, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Success(c, records)
}

type positionRequest struct {
	Longitude *float64 `json:"longitude" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required"`
}

// UpdatePosition 调整地图标注位置
func (h *TopoHandler) UpdatePosition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请提供经纬度", err.Error())
		return
	}
	topo, err := h.topos.UpdatePosition(c.Request.Context(), id, *req.Longitude, *req.Latitude)
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.SuccessWithMessage(c, "位置已更新", topo)
}

// Render 叠加线条后的 PNG，width 可选
func (h *TopoHandler) Render(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	width, _ := strconv.Atoi(c.DefaultQuery("width", "0"))
	data, err := h.render.RenderPNG(c.Request.Context(), id, width)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", data)
}

// QRCode 分享二维码
func (h *TopoHandler) QRCode(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(services.QRSize)))
	data, err := h.share.QRCode(c.Request.Context(), id, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// Export 打包下载
func (h *TopoHandler) Export(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.share.ExportZip(c.Request.Context(), id, &buf); err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="topo-%d.zip"`, id))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}
