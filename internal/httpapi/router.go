package httpapi

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smart-tasks/internal/server"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Options configures the task service router.
type Options struct {
	Logger         zerolog.Logger
	Tasks          TaskService
	StrictNotFound bool
	// CORSOrigins lists allowed origins; empty or "*" allows any.
	CORSOrigins []string
}

// NewRouter wires middleware, the page with its client assets and the JSON API.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(server.RequestID())
	router.Use(server.AccessLog(opts.Logger))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	router.StaticFS("/static", http.FS(mustSub(staticFS, "static")))

	h := newHandler(opts.Logger, opts.Tasks, opts.StrictNotFound)

	router.GET("/", h.HandleIndex)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/tasks", h.HandleGetTasks)
	api.POST("/tasks", h.HandleCreateTask)
	api.PUT("/tasks/:id", h.HandleUpdateTask)
	api.DELETE("/tasks/:id", h.HandleDeleteTask)
	api.GET("/stats", h.HandleGetStats)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, server.RequestIDHeader)
	cfg.ExposeHeaders = []string{server.RequestIDHeader}
	return cfg
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
