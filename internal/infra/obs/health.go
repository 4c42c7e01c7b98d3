package obs

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
)

// HealthHandlers backs the livez/readyz probes. Ready reports whether the
// storage backend is reachable; in memory mode it is a no-op.
type HealthHandlers struct {
	Ready   func() error
	started time.Time
}

func NewHealthHandlers(ready func() error) HealthHandlers {
	return HealthHandlers{Ready: ready, started: time.Now()}
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "uptime": h.uptime()})
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "storage unreachable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "uptime": h.uptime()})
}

func (h HealthHandlers) uptime() string {
	if h.started.IsZero() {
		return ""
	}
	return time.Since(h.started).Round(time.Second).String()
}
