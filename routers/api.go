package routers

import (
	"github.com/GrainArc/CragTopo/services"
	"github.com/GrainArc/CragTopo/views"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Options 路由依赖
type Options struct {
	DB             *gorm.DB
	Hub            services.EventHub
	Cache          *services.RenderCache
	UploadDir      string
	MaxUploadBytes int64
	PublicURL      string
}

// APIRouters 注册 /api 下的全部接口和上传文件目录
func APIRouters(r *gin.Engine, opt Options) {
	if opt.Hub == nil {
		opt.Hub = services.NewMemoryHub()
	}
	topoService := services.NewTopoService(opt.DB, opt.Hub, opt.Cache)
	catalogService := services.NewCatalogService(opt.DB)
	imageService := services.NewImageService(opt.UploadDir, opt.MaxUploadBytes)
	renderService := services.NewRenderService(topoService, imageService, opt.Cache)
	shareService := services.NewShareService(topoService, imageService, renderService, opt.PublicURL)

	auth := views.NewAuthMiddleware(opt.DB)
	topoHandler := views.NewTopoHandler(topoService, renderService, shareService)
	catalogHandler := views.NewCatalogHandler(catalogService, topoService, imageService)
	editorHandler := views.NewEditorHandler(topoService, opt.Hub)
	eventsHandler := views.NewEventsHandler(topoService, opt.Hub)

	r.Static("/uploads", opt.UploadDir)

	api := r.Group("/api", auth.Optional())
	topoRouter := api.Group("/topos")
	{
		topoRouter.GET("/:id", topoHandler.Get)
		topoRouter.GET("/:id/lines", topoHandler.Lines)
		topoRouter.POST("/:id/lines", auth.Required(), topoHandler.SubmitLine)
		topoRouter.GET("/:id/history", topoHandler.History)
		topoRouter.PATCH("/:id/position", auth.Required(), topoHandler.UpdatePosition)
	}
	{
		topoRouter.GET("/:id/render.png", topoHandler.Render)
		topoRouter.GET("/:id/qr.png", topoHandler.QRCode)
		topoRouter.GET("/:id/export.zip", topoHandler.Export)
	}
	{
		// WebSocket 连接
		topoRouter.GET("/:id/editor", editorHandler.Connect)
		topoRouter.GET("/:id/events", eventsHandler.Stream)
	}

	areaRouter := api.Group("/areas")
	{
		areaRouter.GET("", catalogHandler.ListAreas)
		areaRouter.POST("", auth.Required(), catalogHandler.CreateArea)
		areaRouter.GET("/:id/crags", catalogHandler.ListCrags)
		areaRouter.POST("/:id/crags", auth.Required(), catalogHandler.CreateCrag)
	}

	cragRouter := api.Group("/crags")
	{
		cragRouter.GET("/:id", catalogHandler.GetCrag)
		cragRouter.GET("/:id/routes", catalogHandler.ListRoutes)
		cragRouter.POST("/:id/routes", auth.Required(), catalogHandler.CreateRoute)
		cragRouter.GET("/:id/grades", catalogHandler.Grades)
		cragRouter.GET("/:id/topos", catalogHandler.ListTopos)
		cragRouter.GET("/:id/topos.geojson", catalogHandler.ToposGeoJSON)
		cragRouter.POST("/:id/topos", auth.Required(), catalogHandler.UploadTopo)
	}
}
