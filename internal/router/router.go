package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"movie-recap/internal/handler"
)

func SetupRouter(r *gin.Engine, hdl handler.Handler) {
	api := r.Group("/api")
	{
		api.POST("/batch/start", hdl.StartBatch)
		api.GET("/batch/status", hdl.GetBatchStatus)
		api.GET("/batch/progress", hdl.GetProgress)
		api.GET("/batch/progress/ws", hdl.StreamProgress)
		api.GET("/history", hdl.GetHistory)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}
