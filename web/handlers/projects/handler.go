// Package projects exposes the local project mirror and its sync.
package projects

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/trackai/store"
	"trackai.dev/trackai/web/common"
)

type Endpoint struct {
	sync     *core.ProjectSyncService
	projects store.ProjectStore
}

func Register(r *gin.RouterGroup, sync *core.ProjectSyncService, projects store.ProjectStore) {
	endpoint := &Endpoint{sync: sync, projects: projects}
	r.GET("/projects", endpoint.List)
	r.POST("/projects/sync", endpoint.Sync)
}

func (ep *Endpoint) List(c *gin.Context) {
	projects, err := ep.projects.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(projects, int64(len(projects))))
}

func (ep *Endpoint) Sync(c *gin.Context) {
	result, err := ep.sync.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	if !result.Synced {
		c.JSON(http.StatusOK, common.NewFailureResponse(result.Message, result))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result))
}
