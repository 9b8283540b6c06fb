// Package attendance exposes check-in/check-out over HTTP.
package attendance

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
	"trackai.dev/trackai/web/common"
	"trackai.dev/trackai/web/middlewares"
)

type Endpoint struct {
	service  *core.AttendanceService
	sessions *core.SessionEngine
	history  store.SessionStore
	projects store.ProjectStore
}

func Register(r *gin.RouterGroup, service *core.AttendanceService, sessions *core.SessionEngine, history store.SessionStore, projects store.ProjectStore) {
	endpoint := &Endpoint{service: service, sessions: sessions, history: history, projects: projects}
	r.GET("/attendance/status", endpoint.Status)
	r.POST("/attendance/check-in", endpoint.CheckIn)
	r.POST("/attendance/check-out", endpoint.CheckOut)
	r.GET("/attendance/export", endpoint.Export)
}

type CheckDTO struct {
	ContractID      string  `json:"contract_id" binding:"required"`
	Latitude        float64 `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude       float64 `json:"longitude" binding:"gte=-180,lte=180"`
	Remarks         *string `json:"remarks"`
	ClientRequestID string  `json:"client_request_id"`
}

type statusResponse struct {
	AttendanceStatus  string                   `json:"attendance_status"`
	Session           *model.AttendanceSession `json:"session,omitempty"`
	AutoClosedSession *model.AttendanceSession `json:"auto_closed_session,omitempty"`
}

func (ep *Endpoint) Status(c *gin.Context) {
	contractID := c.Query("contract_id")
	if contractID == "" {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("contract_id is required"))
		return
	}

	status, err := ep.sessions.Status(c.Request.Context(), middlewares.CurrentUserID(c), contractID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(statusResponse{
		AttendanceStatus:  status.Status,
		Session:           status.Session,
		AutoClosedSession: status.AutoClosedSession,
	}))
}

func (ep *Endpoint) CheckIn(c *gin.Context) {
	ep.handleCheck(c, ep.service.CheckIn)
}

func (ep *Endpoint) CheckOut(c *gin.Context) {
	ep.handleCheck(c, ep.service.CheckOut)
}

type checkResult struct {
	EntryID          string                   `json:"entry_id,omitempty"`
	AttendanceStatus string                   `json:"attendance_status"`
	Session          *model.AttendanceSession `json:"session,omitempty"`
}

func (ep *Endpoint) handleCheck(c *gin.Context, op func(ctx context.Context, p core.AttendanceParams) (core.AttendanceResult, error)) {
	var dto CheckDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	result, err := op(c.Request.Context(), core.AttendanceParams{
		UserID:          middlewares.CurrentUserID(c),
		ContractID:      dto.ContractID,
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
		Remarks:         dto.Remarks,
		IPAddress:       c.ClientIP(),
		ClientRequestID: dto.ClientRequestID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	data := checkResult{
		EntryID:          result.Response.EntryID,
		AttendanceStatus: result.Status,
		Session:          result.Session,
	}
	if !result.Response.Success {
		// Business failure: HTTP 200, success=false.
		c.JSON(http.StatusOK, common.NewFailureResponse(result.Response.Message, data))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(data))
}
