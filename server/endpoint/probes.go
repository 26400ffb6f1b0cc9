package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescribe/component"
)

// HealthChecker reports the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

// ProbeResponse is the body of /health and /ready.
type ProbeResponse struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

func check(c *gin.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(c.Request.Context())
}

func respond(c *gin.Context, code int, resp ProbeResponse) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	c.JSON(code, resp)
}

// Health reports overall and per-component health. Only an unhealthy
// component turns the answer into a 503; degraded still answers 200.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := check(c, checker)
		overall := component.Overall(results)
		code := http.StatusOK
		if overall == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		respond(c, code, ProbeResponse{Status: string(overall), Service: serviceName, Components: results})
	}
}

// Readiness answers 200 only when every component is healthy. The body
// lists the components holding readiness back.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pending []component.Health
		for _, h := range check(c, checker) {
			if h.Status != component.StatusHealthy {
				pending = append(pending, h)
			}
		}
		if len(pending) > 0 {
			respond(c, http.StatusServiceUnavailable, ProbeResponse{Status: "not_ready", Service: serviceName, Components: pending})
			return
		}
		respond(c, http.StatusOK, ProbeResponse{Status: "ready", Service: serviceName})
	}
}
