// Package sarasstatus reports the health of the Saras integration.
package sarasstatus

import (
	"net/http"

	"github.com/gin-gonic/gin"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/web/common"
)

type Endpoint struct {
	client saras.Client
	cfg    saras.Config
}

func Register(r *gin.RouterGroup, client saras.Client, cfg saras.Config) {
	endpoint := &Endpoint{client: client, cfg: cfg}
	r.GET("/saras/status", endpoint.Status)
	r.POST("/saras/health-check", endpoint.HealthCheck)
}

// Status reports the configured mode and feature flags without touching the
// network.
func (ep *Endpoint) Status(c *gin.Context) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"mode":             ep.cfg.Mode,
		"stub":             ep.client.IsStubMode(),
		"enabled":          ep.cfg.Features.Enabled,
		"progress_enabled": ep.cfg.Features.ProgressEnabled,
	}))
}

// HealthCheck does one real round trip (GetUserDetails) and reports the
// outcome. Saras being down is a business failure, not a 5xx.
func (ep *Endpoint) HealthCheck(c *gin.Context) {
	details, err := ep.client.GetUserDetails(c.Request.Context())
	if err != nil {
		if apiErr, ok := saras.AsAPIError(err); ok {
			c.JSON(http.StatusOK, common.NewFailureResponse(apiErr.Message, gin.H{
				"kind": string(apiErr.Kind),
			}))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"reachable": true,
		"user":      details,
	}))
}
