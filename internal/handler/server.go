// Package handler is the HTTP adapter: it translates requests into
// application service calls and the service error taxonomy into status
// codes.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/pkg/signer"
	"go.uber.org/zap"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer wires middleware and routes around the handlers
func NewServer(
	config ServerConfig,
	handlers *Handlers,
	users port.UserRepository,
	linkSigner *signer.Signer,
	clock port.Clock,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(RequestLogging(logger))
	router.Use(CORS())

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api/v1")
	api.Use(BearerAuth(users, logger))
	{
		api.GET("/travel-requests", handlers.ListTravelRequests)
		api.POST("/travel-requests", handlers.CreateTravelRequest)
		api.GET("/travel-requests/:id", handlers.GetTravelRequest)
		api.PUT("/travel-requests/:id", handlers.UpdateTravelRequestStatus)
		api.POST("/travel-requests/:id/initiate-cancellation", handlers.InitiateCancellation)
		api.GET("/travel-requests/:id/confirm-cancellation",
			VerifySignedLink(linkSigner, clock), handlers.ConfirmCancellation)

		admin := api.Group("/admin")
		{
			admin.GET("/travel-requests/pending-cancellations", handlers.ListPendingCancellations)
			admin.GET("/travel-requests/export", handlers.ExportTravelRequests)
			admin.GET("/travel-requests/:id/cancellation/review",
				VerifySignedLink(linkSigner, clock), handlers.ReviewCancellation)
			admin.POST("/travel-requests/:id/approve-cancellation", handlers.ApproveCancellation)
			admin.POST("/travel-requests/:id/reject-cancellation", handlers.RejectCancellation)
		}
	}

	return server
}

// Start runs the server until the context is canceled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
