package handlers

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"time"
	"twitchbot/internal/app/ports"
	"twitchbot/pkg/logger"
)

type Handlers struct {
	log    logger.Logger
	status ports.StatusPort
}

func New(log logger.Logger, status ports.StatusPort) *Handlers {
	return &Handlers{
		log:    log,
		status: status,
	}
}

type healthResponse struct {
	ports.Status
	Uptime string `json:"uptime,omitempty"`
}

// HealthHandler answers 200 while the chat connection is up and 503
// otherwise, with the connection status as the body.
func (h *Handlers) HealthHandler(c *gin.Context) {
	st := h.status.Status()

	resp := healthResponse{Status: st}
	if !st.StartedAt.IsZero() {
		resp.Uptime = time.Since(st.StartedAt).Truncate(time.Second).String()
	}

	code := http.StatusOK
	if st.State != "connected" {
		code = http.StatusServiceUnavailable
		h.log.Debug("Health check while not connected")
	}
	c.JSON(code, resp)
}
