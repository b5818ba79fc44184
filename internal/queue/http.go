package queue

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playrps/backend/internal/protocol"
)

// RegisterRoutes wires MM's HTTP surface (spec.md §6 MM HTTP) onto router.
func RegisterRoutes(router gin.IRouter, store *Store) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, World!")
	})

	router.POST("/game/result", func(c *gin.Context) {
		var req protocol.PostGameResultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := store.RecordResult(req.GameId, req.GamesWon); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusCreated)
	})
}
