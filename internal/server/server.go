package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/embedhost/webbridge/internal/bridge"
	"github.com/embedhost/webbridge/internal/config"
	"github.com/embedhost/webbridge/internal/hostinfo"
	"github.com/embedhost/webbridge/internal/logging"
	"github.com/embedhost/webbridge/internal/middleware"
	"github.com/embedhost/webbridge/internal/monitoring"
	"github.com/embedhost/webbridge/internal/navigation"
	"github.com/embedhost/webbridge/internal/security"
	"github.com/embedhost/webbridge/internal/tracing"
	"github.com/embedhost/webbridge/internal/ws"
)

// Server wires the bridge engine behind an HTTP surface.
type Server struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *monitoring.Metrics
	router  *gin.Engine
	tracer  *tracing.Tracer
	httpSrv *http.Server
}

// New assembles the server from configuration. The metrics collector is
// injected because Prometheus collectors register globally.
func New(cfg *config.Config, log *logging.Logger, metrics *monitoring.Metrics) *Server {
	if cfg.Logging.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	gate := security.New(security.Config{
		NavigationHosts:  cfg.Policy.NavigationHosts,
		TrustedOrigins:   cfg.Policy.TrustedOrigins,
		LocalScheme:      cfg.Policy.LocalScheme,
		AllowLocalScheme: cfg.Policy.AllowLocalScheme,
	})
	info := hostinfo.NewSystem(cfg.Bridge.AppVersion)
	reducer := bridge.NewReducer(info)
	loader := navigation.NewLoader(gate, log)
	wsHandler := ws.NewHandler(gate, reducer, loader, metrics, log, cfg.Bridge.MaxMessageSize)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	router.Use(monitoring.Middleware(metrics))
	tracer := tracing.New("webbridge", log.Logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	router.GET("/health", func(c *gin.Context) {
		metrics.UpdateUptime()
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "webbridge",
			"version": cfg.Bridge.AppVersion,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Upgrades are capped globally on top of the per-IP limit; connection
	// churn is costlier than a plain request.
	upgradeLimit := middleware.GlobalRateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: 20,
		Burst:             50,
	})
	router.GET("/ws/bridge", upgradeLimit, wsHandler.HandleConnection)

	return &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		router:  router,
		tracer:  tracer,
		httpSrv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("bridge server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then flushes the
// span collector.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("bridge server shutting down")
	err := s.httpSrv.Shutdown(ctx)
	s.tracer.Close()
	return err
}
