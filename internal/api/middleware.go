package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsMiddleware разрешает чтение API из браузера
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// generationLimiter ограничивает число одновременных генераций.
// Тайл 4096x4096 занимает 64 МБ, поэтому лишние запросы сразу получают 503.
func generationLimiter(limit int) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	slots := make(chan struct{}, limit)
	return func(c *gin.Context) {
		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			c.Next()
		default:
			c.JSON(http.StatusServiceUnavailable, GenericResponse{
				Success: false,
				Message: "Слишком много одновременных генераций",
			})
			c.Abort()
		}
	}
}
