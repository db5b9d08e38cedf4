package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alx-polly/backend/internal/middleware"
	"github.com/alx-polly/backend/internal/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type App struct {
	log    *slog.Logger
	engine *gin.Engine
	server *http.Server
	port   int
}

// NewApp builds the gin engine, wires CORS and registers the route groups.
func NewApp(
	log *slog.Logger,
	port int,
	allowedOrigins []string,
	h routes.Handlers,
	authMiddleware *middleware.AuthMiddleware,
) *App {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		publicGroup := api.Group("")
		routes.RegisterPublicRoutes(publicGroup, h)

		voterGroup := api.Group("", authMiddleware.OptionalAuth())
		routes.RegisterVoterRoutes(voterGroup, h)

		privateGroup := api.Group("", authMiddleware.RequireAuth())
		routes.RegisterPrivateRoutes(privateGroup, h)
	}

	// Healthcheck
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	return &App{
		log:    log,
		engine: r,
		server: httpServer,
		port:   port,
	}
}

// Run starts the HTTP server.
func (a *App) Run() error {
	a.log.Info("HTTP server is running", slog.String("addr", a.server.Addr))
	return a.server.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("HTTP server is stopping...")
	return a.server.Shutdown(ctx)
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}
