// Package httpmw holds Gin middleware shared by both services' HTTP control
// surfaces, adapted from the teacher's internal/middleware/cors.go.
package httpmw

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/playrps/backend/internal/config"
)

// CORS returns a CORS middleware configured for the environment.
func CORS(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] environment=%s frontend=%s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}

	if cfg.Environment == "development" {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
		corsConfig.AllowCredentials = true
	} else {
		allowedOrigins := []string{}
		if cfg.FrontendURL != "" {
			allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
		}
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}

// AllowedWebSocketOrigin reports whether origin may upgrade, per cfg's
// environment. The raw upgrade listeners (socketMux in both cmd/ mains) sit
// outside gin's router, so this is a plain predicate the handler calls itself
// ahead of session.Upgrader.Upgrade rather than gin middleware.
func AllowedWebSocketOrigin(cfg *config.Config, origin string) bool {
	if origin == "" {
		return true // native/CLI clients have no Origin header; allow
	}
	if cfg.Environment == "development" {
		return strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:")
	}
	return cfg.FrontendURL != "" && origin == cfg.FrontendURL
}
