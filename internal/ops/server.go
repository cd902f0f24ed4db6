package ops

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobchat-client/internal/rabbitmq"
	"jobchat-client/internal/realtime"
	"jobchat-client/internal/telemetry"
)

// Server exposes the daemon's operational endpoints: liveness, a status
// snapshot of the realtime connection, and Prometheus metrics.
type Server struct {
	realtime  *realtime.Client
	publisher rabbitmq.Publisher
	emitter   *telemetry.AuditEmitter
	debug     bool
}

func NewServer(rt *realtime.Client, publisher rabbitmq.Publisher, emitter *telemetry.AuditEmitter, debug bool) *Server {
	return &Server{realtime: rt, publisher: publisher, emitter: emitter, debug: debug}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/status", func(c *gin.Context) {
		state, channels := s.realtime.State()
		c.JSON(http.StatusOK, gin.H{
			"realtime_state":      state,
			"subscribed_channels": channels,
			"audit_publisher":     rabbitmq.PublisherMode(s.publisher),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if s.debug {
		router.GET("/debug/audit-test", func(c *gin.Context) {
			s.emitter.Emit(c.Request.Context(), "INFO", "audit test", nil)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	return router
}
