package web

import (
	"context"
	"net/http"
	"time"

	"rfp-agent/agents"
	"rfp-agent/config"
	"rfp-agent/database"
	"rfp-agent/notify"
	"rfp-agent/web/handlers"
	"rfp-agent/web/middleware"
	"rfp-agent/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	limiter *middleware.ClientRateLimiter
	logger  *zap.Logger
	config  *config.Config

	rfps      *handlers.RFPHandler
	proposals *handlers.ProposalHandler
	matrix    *handlers.MatrixHandler
	analysis  *handlers.AnalysisHandler
}

// Deps carries everything the HTTP layer needs from the bootstrap.
type Deps struct {
	Config     *config.Config
	Store      *database.PostgresStore
	Pipeline   *services.Pipeline
	Consultant *agents.Consultant
	Dimensions *agents.Dimensions
	Scoring    *agents.Scoring
	Emails     *notify.EmailService
	Logger     *zap.Logger
}

func NewServer(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))

	limiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerMinute: deps.Config.RateLimitPerMin,
		BurstSize:         deps.Config.RateLimitBurstSize,
		CleanupInterval:   5 * time.Minute,
	}, deps.Logger)
	router.Use(middleware.RateLimitMiddleware(limiter))

	rfps := handlers.NewRFPHandler(deps.Store, deps.Pipeline, deps.Consultant, deps.Logger)
	server := &Server{
		router:    router,
		limiter:   limiter,
		logger:    deps.Logger,
		config:    deps.Config,
		rfps:      rfps,
		proposals: handlers.NewProposalHandler(deps.Store, deps.Pipeline, deps.Emails, deps.Logger),
		matrix:    handlers.NewMatrixHandler(rfps, deps.Store, deps.Logger),
		analysis:  handlers.NewAnalysisHandler(deps.Store, deps.Dimensions, deps.Scoring, deps.Logger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")

	api.POST("/rfps", s.rfps.Create)
	api.GET("/rfps", s.rfps.List)
	api.POST("/rfps/upload", s.rfps.Upload)
	api.GET("/rfps/:id", s.rfps.Get)
	api.DELETE("/rfps/:id", s.rfps.Delete)
	api.POST("/rfps/:id/consult", s.rfps.Consult)
	api.POST("/rfps/:id/extract", s.rfps.Reextract)
	api.GET("/rfps/:id/report.pdf", s.rfps.ExportPDF)
	api.GET("/rfps/:id/matrix", s.matrix.Get)
	api.GET("/rfps/:id/matrix.xlsx", s.matrix.Excel)

	api.POST("/proposals", s.proposals.Create)
	api.GET("/proposals", s.proposals.List)
	api.POST("/proposals/upload", s.proposals.Upload)
	api.GET("/proposals/:id", s.proposals.Get)
	api.DELETE("/proposals/:id", s.proposals.Delete)
	api.POST("/proposals/:id/approve", s.proposals.Approve)
	api.POST("/proposals/:id/reject", s.proposals.Reject)

	api.POST("/analysis/rfps/:id/dimensions", s.analysis.GenerateDimensions)
	api.POST("/analysis/compare", s.analysis.Compare)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
