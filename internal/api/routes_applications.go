package api

import (
	"github.com/gin-gonic/gin"

	"github.com/SimoSabev/LynkSkill-sub003/internal/handlers"
)

func registerApplicationRoutes(api *gin.RouterGroup, applications *handlers.ApplicationHandler, experiences *handlers.ExperienceHandler) {
	group := api.Group("/applications")
	{
		group.GET("/mine", applications.ListMine)
		group.POST("/:id/review", applications.Review)
		group.POST("/:id/accept-offer", applications.AcceptOffer)
	}

	api.GET("/assignments/mine", applications.ListMyAssignments)
	api.GET("/projects/mine", applications.ListMyProjects)

	api.POST("/experiences", experiences.Submit)
	api.POST("/experiences/:id/review", experiences.Review)
}
