package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/MoNabawy-2003/al-safaa-hospital/internal/handler"
	analyticsHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/analytics"
	appointmentHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/appointment"
	authHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/auth"
	chatHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/chat"
	messagingHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/messaging"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/middleware"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/model"
)

type RouterConfig struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        *authHandler.Handler
	appointmentH *appointmentHandler.Handler
	messagingH   *messagingHandler.Handler
	analyticsH   *analyticsHandler.Handler
	chatH        *chatHandler.Handler
	h            *handler.Handler
	metrics      *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	messagingH *messagingHandler.Handler,
	analyticsH *analyticsHandler.Handler,
	chatH *chatHandler.Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		appointmentH: appointmentH,
		messagingH:   messagingH,
		analyticsH:   analyticsH,
		chatH:        chatH,
		h:            h,
		metrics:      initRouterMetrics(),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	engine.Use(middleware.RateLimit(config.RateLimit, config.RateBurst))

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.h.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(middleware.NoStore())
	r.authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.appointmentH.RegisterRoutes(protected)
	r.messagingH.RegisterRoutes(protected)
	r.chatH.RegisterRoutes(protected)
	r.authH.RegisterUserRoutes(protected)

	management := protected.Group("")
	management.Use(r.auth.RequireRole(model.RoleManagement))
	r.analyticsH.RegisterRoutes(management)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
