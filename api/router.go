package api

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skydrive/skydrive/internal/config"
	"github.com/skydrive/skydrive/pkg/controller"
	"github.com/skydrive/skydrive/pkg/middleware"
)

// InitRouter wires all HTTP routes. Everything under /api/files and
// /api/folders requires a bearer token; the share resolution endpoint
// is public so that links work for anonymous recipients.
func InitRouter(cfg *config.Config, ctl *controller.Controller, lg *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginzap.GinzapWithConfig(lg, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/api/health"},
	}))
	r.Use(ginzap.RecoveryWithZap(lg, true))
	r.Use(middleware.Cors())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authorized := middleware.Auth(cfg.JWT.Secret)

	files := r.Group("/api/files", authorized)
	{
		files.POST("/upload", ctl.UploadFile)
		files.GET("", ctl.ListFiles)
		files.GET("/:fileID", ctl.GetFileByID)
		files.PUT("/:fileID/rename", ctl.RenameFile)
		files.PUT("/:fileID/restore", ctl.RestoreFile)
		files.DELETE("/:fileID", ctl.DeleteFile)
		files.DELETE("/:fileID/permanent", ctl.PermanentDeleteFile)
		files.GET("/:fileID/download", ctl.DownloadFile)
		files.POST("/:fileID/share", ctl.CreateShareLink)
	}

	folders := r.Group("/api/folders", authorized)
	{
		folders.POST("", ctl.CreateFolder)
		folders.GET("", ctl.ListFolders)
		folders.PUT("/:folderID/rename", ctl.RenameFolder)
		folders.PUT("/:folderID/restore", ctl.RestoreFolder)
		folders.DELETE("/:folderID", ctl.DeleteFolder)
	}

	share := r.Group("/api/share")
	{
		share.GET("", authorized, ctl.ListShareLinks)
		share.GET("/:token", ctl.ResolveShareLink)
	}

	r.GET("/api/search", authorized, ctl.SearchFiles)

	return r
}
