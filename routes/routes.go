package routes

import (
	"github.com/avtoyurist/docbot/controllers"
	"github.com/avtoyurist/docbot/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(handler *controllers.UpdateHandler, admin *controllers.AdminController, adminToken string) *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())

	router.GET("/health", func(c *gin.Context) {
		utils.Success(c, "ok", nil)
	})

	// The messaging gateway posts inbound updates here.
	router.POST("/telegram/webhook", handler.HandleWebhook)

	// API version group
	api := router.Group("/v1")
	{
		adminGroup := api.Group("/admin")
		adminGroup.Use(utils.AdminTokenMiddleware(adminToken))
		{
			adminGroup.GET("/orders/export", admin.ExportOrdersExcel)
			adminGroup.GET("/orders/export/pdf", admin.ExportOrdersPDF)
		}
	}

	return router
}
