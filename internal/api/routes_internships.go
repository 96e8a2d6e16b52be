package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
)

func registerInternshipRoutes(api *gin.RouterGroup, handler *handlers.InternshipHandler) {
	api.POST("/companies/:id/internships", handler.Create)
	api.GET("/companies/:id/internships", handler.ListByCompany)

	internships := api.Group("/internships/:id")
	{
		internships.GET("", handler.Get)
		internships.PATCH("", handler.Update)
		internships.DELETE("", handler.Delete)
		internships.GET("/applications", handler.ListApplications)
		internships.POST("/apply", handler.Apply)
	}
}
