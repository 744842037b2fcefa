// Package api exposes the HTTP surface of the bot: a health probe and the
// two webhook endpoints that GitHub and Shortcut deliver events to.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/shipbot/internal/effects"
)

// StoryVerifier re-checks the open production PRs referencing a story.
type StoryVerifier interface {
	ReverifyStory(ctx context.Context, storyID int64) int
}

// Server represents the API server.
type Server struct {
	echo         *echo.Echo
	port         int
	registry     *effects.Registry
	verifier     StoryVerifier
	qaStateID    int64
	readyStateID int64
}

// NewServer creates a new API server.
func NewServer(port int, registry *effects.Registry, verifier StoryVerifier, qaStateID, readyStateID int64) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	server := &Server{
		echo:         e,
		port:         port,
		registry:     registry,
		verifier:     verifier,
		qaStateID:    qaStateID,
		readyStateID: readyStateID,
	}

	server.setupRoutes()

	return server
}

// respond writes the uniform `{"message": ...}` webhook response shape.
func respond(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"message": message})
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	s.echo.POST("/webhook/github", s.handleGithubWebhook)
	s.echo.POST("/webhook/shortcut", s.handleShortcutWebhook)
}

// Start begins the API server and blocks until interrupted.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}
