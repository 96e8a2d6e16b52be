package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler) {
	me := api.Group("/me")
	{
		me.GET("", handler.Me)
		me.POST("/onboarding", handler.CompleteOnboarding)
		me.GET("/permissions", handler.Permissions)
	}
}
