package views

import (
	"log"
	"strconv"
	"strings"

	"github.com/GrainArc/CragTopo/models"
	"github.com/GrainArc/CragTopo/response"
	"github.com/GrainArc/CragTopo/services"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *services.CatalogService
	topos   *services.TopoService
	images  *services.ImageService
}

func NewCatalogHandler(catalog *services.CatalogService, topos *services.TopoService, images *services.ImageService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, topos: topos, images: images}
}

type areaRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
}

func (h *CatalogHandler) ListAreas(c *gin.Context) {
	areas, err := h.catalog.ListAreas(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Success(c, areas)
}

func (h *CatalogHandler) CreateArea(c *gin.Context) {
	var req areaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求格式错误", err.Error())
		return
	}
	area := models.Area{Name: req.Name, Description: req.Description, Longitude: req.Longitude, Latitude: req.Latitude}
	if err := h.catalog.CreateArea(c.Request.Context(), &area); err != nil {
		abortWithError(c, err)
		return
	}
	response.Created(c, area)
}

func (h *CatalogHandler) ListCrags(c *gin.Context) {
	areaID, ok := idParam(c, "id")
	if !ok {
		return
	}
	crags, err := h.catalog.ListCrags(c.Request.Context(), areaID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Success(c, crags)
}

func (h *CatalogHandler) CreateCrag(c *gin.Context) {
	areaID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req areaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求格式错误", err.Error())
		return
	}
	crag := models.Crag{AreaID: areaID, Name: req.Name, Description: req.Description, Longitude: req.Longitude, Latitude: req.Latitude}
	if err := h.catalog.CreateCrag(c.Request.Context(), &crag); err != nil {
		abortWithError(c, err)
		return
	}
	response.Created(c, crag)
}

func (h *CatalogHandler) GetCrag(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	crag, err := h.catalog.GetCrag(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Success(c, crag)
}

func (h *CatalogHandler) ListRoutes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	routes, err := h.catalog.ListRoutes(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Success(c, routes)
}

type routeRequest struct {
	Name      string `json:"name" binding:"required"`
	Grade     string `json:"grade"`
	Length    int    `json:"length" binding:"gte=0"`
	Bolts     int    `json:"bolts" binding:"gte=0"`
	TopoID    *uint  `json:"topo_id"`
	LineLabel *int   `json:"line_label"`
}

func (h *CatalogHandler) CreateRoute(c *gin.Context) {
	cragID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求格式错误", err.Error())
		return
	}
	route := models.Route{
		CragID:    cragID,
		TopoID:    req.TopoID,
		LineLabel: req.LineLabel,
		Name:      req.Name,
		Grade:     req.Grade,
		Length:    req.Length,
		Bolts:     req.Bolts,
	}
	if err := h.catalog.CreateRoute(c.Request.Context(), &route); err != nil {
		abortWithError(c, err)
		return
	}
	response.Created(c, route)
}

// Grades 岩场难度分布
func (h *CatalogHandler) Grades(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	buckets, err := h.catalog.CragGrades(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Success(c, buckets)
}

func (h *CatalogHandler) ListTopos(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.catalog.GetCrag(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	topos, err := h.topos.ListByCrag(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Success(c, topos)
}

// ToposGeoJSON 地图标注点
func (h *CatalogHandler) ToposGeoJSON(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fc, err := h.topos.MarkersGeoJSON(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(200, fc)
}

// UploadTopo 上传拓扑图片
// @Accept multipart/form-data
// @Param file formData file true "JPEG/PNG/WebP 图片"
// @Param description formData string false "描述"
// @Param exposition formData string false "朝向"
// @Param longitude formData number false "经度"
// @Param latitude formData number false "纬度"
func (h *CatalogHandler) UploadTopo(c *gin.Context) {
	cragID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.catalog.GetCrag(c.Request.Context(), cragID); err != nil {
		abortWithError(c, err)
		return
	}
	lon, err := formFloat(c, "longitude")
	if err != nil {
		response.BadRequest(c, "经度格式错误")
		return
	}
	lat, err := formFloat(c, "latitude")
	if err != nil {
		response.BadRequest(c, "纬度格式错误")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "请选择要上传的文件")
		return
	}
	stored, err := h.images.SaveUpload(file)
	if err != nil {
		abortWithError(c, err)
		return
	}

	topo := models.Topo{
		CragID:      cragID,
		FileName:    stored.FileName,
		Thumbnail:   stored.Thumbnail,
		MimeType:    stored.MimeType,
		Description: c.PostForm("description"),
		Exposition:  c.PostForm("exposition"),
		Longitude:   lon,
		Latitude:    lat,
		ImageWidth:  stored.Width,
		ImageHeight: stored.Height,
		Width:       stored.Width,
	}
	if err := h.topos.Create(c.Request.Context(), &topo); err != nil {
		if rmErr := h.images.Remove(stored); rmErr != nil {
			log.Printf("清理上传文件 %s 失败: %v", stored.FileName, rmErr)
		}
		abortWithError(c, err)
		return
	}
	log.Printf("岩场 %d 上传拓扑图 %s (%dx%d)", cragID, stored.FileName, stored.Width, stored.Height)
	response.Created(c, topo)
}

// formFloat 空值视为 0
func formFloat(c *gin.Context, key string) (float64, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}
