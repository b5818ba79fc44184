package arena

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playrps/backend/internal/protocol"
)

// RegisterRoutes wires GS's HTTP surface (spec.md §6 GS HTTP) onto router.
func RegisterRoutes(router gin.IRouter, manager *Manager) {
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.POST("/create_game", func(c *gin.Context) {
		var req protocol.CreateGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		gameID, err := manager.CreateGame(req.Players, req.GamesToWin)
		if err != nil {
			if errors.Is(err, ErrPlayerAlreadyAssigned) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, protocol.CreateGameResponse{GameId: gameID})
	})

	router.GET("/game/:id", func(c *gin.Context) {
		gameID, err := protocol.ParseId(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		players, ok := manager.GetGame(gameID)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, protocol.GetGameResponse{GameId: gameID, Players: players})
	})
}
