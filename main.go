package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GrainArc/CragTopo/config"
	"github.com/GrainArc/CragTopo/editor"
	"github.com/GrainArc/CragTopo/models"
	"github.com/GrainArc/CragTopo/routers"
	"github.com/GrainArc/CragTopo/services"
	"github.com/GrainArc/CragTopo/views"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.xml", "配置文件路径")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	if config.MainConfig.Debug {
		editor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := models.InitDB(); err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(config.UploadDir, 0o755); err != nil {
		log.Fatalf("创建上传目录失败: %v", err)
	}

	var hub services.EventHub = services.NewMemoryHub()
	if config.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisHub, err := services.NewRedisHub(ctx, config.RedisAddr)
		cancel()
		if err != nil {
			log.Printf("%v，改用进程内通知", err)
		} else {
			defer redisHub.Close()
			hub = redisHub
		}
	}
	cache := services.NewRenderCache(256, 10*time.Minute)
	defer cache.Close()

	r := gin.New()
	r.Use(views.AccessLogger(nil), gin.Recovery())
	r.MaxMultipartMemory = int64(config.MainConfig.MaxUploadMB) << 20
	routers.APIRouters(r, routers.Options{
		DB:             models.DB,
		Hub:            hub,
		Cache:          cache,
		UploadDir:      config.UploadDir,
		MaxUploadBytes: int64(config.MainConfig.MaxUploadMB) << 20,
		PublicURL:      config.PublicURL,
	})

	srv := &http.Server{Addr: config.MainRouter, Handler: r}
	go func() {
		log.Printf("CragTopo 启动，监听 %s", config.MainRouter)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("关闭服务失败: %v", err)
	}
}
