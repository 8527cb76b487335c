package api

import "github.com/gin-gonic/gin"

func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	contacts := router.Group("/api/contacts")
	{
		contacts.GET("", h.listContactsHandler)
		contacts.POST("", h.addContactHandler)
		contacts.PUT("/:index", h.editContactHandler)
		contacts.DELETE("/:index", h.removeContactHandler)
	}

	sched := router.Group("/api/scheduler")
	{
		sched.GET("/status", h.schedulerStatusHandler)
		sched.POST("/start", h.startSchedulerHandler)
		sched.POST("/stop", h.stopSchedulerHandler)
		sched.POST("/pause", h.pauseSchedulerHandler)
		sched.POST("/resume", h.resumeSchedulerHandler)
	}

	router.GET("/api/history", h.historyHandler)

	return router
}
