package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, handler *handlers.HealthHandler) {
	registerHealthEndpoints(r, handler)
	registerHealthEndpoints(r.Group("/api"), handler)
}

func registerHealthEndpoints(router gin.IRouter, handler *handlers.HealthHandler) {
	router.GET("/health", handler.Ready)
	router.GET("/health/live", handler.Live)
	router.GET("/health/ready", handler.Ready)
}
