package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Dispatcher consumes notification bodies accepted by the listener.
type Dispatcher interface {
	Handle(ctx context.Context, body []byte)
}

// Server accepts player notifications over HTTP
type Server struct {
	router     *gin.Engine
	dispatcher Dispatcher

	// ctx outlives each request; pipelines keep running after the response.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool
}

// New creates a new HTTP server instance
func New(dispatcher Dispatcher) *Server {
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithCancel(context.Background())
	server := &Server{
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}

	router := gin.New()
	server.setupRoutes(router)
	server.router = router
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(requestLogger(), gin.Recovery())

	// Every path accepts notifications; other methods get 405.
	router.HandleMethodNotAllowed = true
	router.POST("/*path", s.receiveNotification)
	router.NoMethod(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusMethodNotAllowed)
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on port and serves until Shutdown
func (s *Server) Start(port string) error {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}
	slog.Info("Started server", "port", port)
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	if s.httpServer == nil {
		s.httpServer = &http.Server{
			Handler:           s.router,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting notifications and cancels running pipelines
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	s.closed = true
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}
	return httpServer.Shutdown(ctx)
}

// requestLogger logs each request on the default slog logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		slog.Info("Got request", "method", c.Request.Method, "path", c.Request.URL.Path, "contentLength", c.Request.ContentLength)

		c.Next()

		slog.Debug("Request handled", "status", c.Writer.Status(), "duration", time.Since(start))
	}
}
