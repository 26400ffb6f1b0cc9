package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescribe/version"
)

// VersionResponse is the body of the /version endpoint.
type VersionResponse struct {
	Service   string `json:"service"`
	UserAgent string `json:"user_agent"`
	*version.Info
}

// Version reports which build of the service is answering.
func Version(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, VersionResponse{
			Service:   serviceName,
			UserAgent: version.UserAgent(),
			Info:      version.GetVersionInfo(),
		})
	}
}
