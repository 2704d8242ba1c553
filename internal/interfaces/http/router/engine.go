package router

import (
	"net/http"

	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig configures the middleware stack of the API engine
type EngineConfig struct {
	Logger         *zap.Logger
	Tracing        middleware.TracingConfig
	Profiling      middleware.ProfilingConfig
	Meter          metric.Meter
	CORS           middleware.CORSConfig
	BodyLimit      int64
	TrustedProxies []string
}

// NewEngine builds a gin engine with the standard middleware stack:
// request ID, panic recovery, tracing, profiling labels, access log, metrics
// and the security and body limit guards.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = middleware.DefaultBodyLimit
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanAttributes(),
		middleware.Profiling(cfg.Profiling),
		logger.GinMiddleware(cfg.Logger),
		middleware.HTTPMetrics(cfg.Meter, cfg.Logger),
		middleware.Secure(),
		middleware.CORS(cfg.CORS),
		middleware.BodyLimit(cfg.BodyLimit),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	return engine, nil
}
