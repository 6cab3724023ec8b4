package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tracklite-dev/tracklite/internal/authz"
	"github.com/tracklite-dev/tracklite/internal/handlers"
	"github.com/tracklite-dev/tracklite/internal/middleware"
	"github.com/tracklite-dev/tracklite/internal/storage"
	"github.com/tracklite-dev/tracklite/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthCheck)

	// Stored attachment bytes are served statically; the entities only hold
	// the name/path pair.
	r.Static("/uploads", storage.Dir())

	r.GET("/ws/:projectId", middleware.AuthMiddleware(), handlers.WebSocket)

	auth := r.Group("/auth")
	{
		auth.POST("/login", handlers.LoginUser)
		auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
	}

	project := r.Group("/project", middleware.AuthMiddleware())
	{
		project.GET("", handlers.ListProjects)
		project.GET("/stat/:projectId", handlers.GetProjectStat)
		project.GET("/:projectId", handlers.GetProjectInfo)
		project.POST("", middleware.RequireCapability(authz.CanManageProjects), handlers.CreateProject)
		project.PATCH("/:projectId", middleware.RequireCapability(authz.CanManageProjects), handlers.UpdateProject)
		project.DELETE("/:projectId", middleware.RequireCapability(authz.CanManageProjects), handlers.DeleteProject)
		project.POST("/:projectId/attachment", handlers.AddProjectAttachment)
	}

	ticket := r.Group("/ticket", middleware.AuthMiddleware())
	{
		ticket.GET("/types", handlers.ListTicketTypes)
		ticket.GET("/user/:userId", handlers.GetUserTickets)
		ticket.GET("/project/:projectId", handlers.GetProjectTickets)
		ticket.GET("/:ticketId", handlers.GetTicketInfo)
		ticket.POST("/project/:projectId", middleware.RequireCapability(authz.CanManageTickets), handlers.CreateTicket)
		ticket.PATCH("/project/:projectId", middleware.RequireCapability(authz.CanManageTickets), handlers.UpdateTicket)
		ticket.DELETE("/:ticketId", handlers.DeleteTicket)
	}

	return r
}
