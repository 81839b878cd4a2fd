package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Banner is the liveness answer on GET /.
const Banner = "🚛 Chatbot de Caçamba rodando com sucesso!"

// StatusProvider reports the state of the messaging session.
type StatusProvider interface {
	Status() (connected, loggedIn bool)
}

type statusResponse struct {
	Connected bool `json:"connected"`
	LoggedIn  bool `json:"logged_in"`
}

// NewRouter builds the unauthenticated liveness API. status may be nil when
// the messaging session could not be opened.
func NewRouter(status StatusProvider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	})

	r.GET("/status", func(c *gin.Context) {
		var resp statusResponse
		if status != nil {
			resp.Connected, resp.LoggedIn = status.Status()
		}
		c.JSON(http.StatusOK, resp)
	})

	return r
}

// NewServer wraps handler in an http.Server listening on :port.
func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}
