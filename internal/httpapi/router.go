// Package httpapi is the operator-facing admin API. It never sits on the
// interactive message path.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkrylov/tgrelay/internal/apikey"
	"github.com/mkrylov/tgrelay/internal/common"
	"github.com/mkrylov/tgrelay/internal/config"
	"github.com/mkrylov/tgrelay/internal/httpapi/handlers"
	"github.com/mkrylov/tgrelay/internal/httpapi/middleware"
)

func NewRouter(db *gorm.DB, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(cfg, apikey.NewStore(db))

	r.GET("/healthz", h.Ping)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.AdminJWTSecret))
	authGroup.POST("/keys", h.CreateKey)
	authGroup.GET("/keys", h.ListKeys)

	return r
}
