// Package greeter serves a single static greeting.
package greeter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smart-tasks/internal/server"
)

func NewRouter(logger zerolog.Logger, greeting string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(server.RequestID())
	router.Use(server.AccessLog(logger))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, greeting)
	})
	return router
}
