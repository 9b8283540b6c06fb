// Package progress exposes progress reporting over HTTP.
package progress

import (
	"net/http"

	"github.com/gin-gonic/gin"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/web/common"
	"trackai.dev/trackai/web/middlewares"
)

type Endpoint struct {
	service *core.ProgressService
}

func Register(r *gin.RouterGroup, service *core.ProgressService) {
	endpoint := &Endpoint{service: service}
	r.POST("/progress/submit", endpoint.Submit)
	r.POST("/progress/photo", endpoint.Photo)
	r.POST("/progress/ai", endpoint.RunAI)
	r.GET("/progress/ai/:workflowId", endpoint.AIStatus)
}

type ProgressSubmitDTO struct {
	ContractID      string  `json:"contract_id" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	PercentComplete float64 `json:"percent_complete" binding:"gte=0,lte=100"`
	Latitude        float64 `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude       float64 `json:"longitude" binding:"gte=-180,lte=180"`
	ClientRequestID string  `json:"client_request_id"`
}

func (ep *Endpoint) Submit(c *gin.Context) {
	var dto ProgressSubmitDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	response, err := ep.service.SubmitProgress(c.Request.Context(), core.ProgressParams{
		UserID:          middlewares.CurrentUserID(c),
		ContractID:      dto.ContractID,
		Description:     dto.Description,
		PercentComplete: dto.PercentComplete,
		Latitude:        dto.Latitude,
		Longitude:       dto.Longitude,
		IPAddress:       c.ClientIP(),
		ClientRequestID: dto.ClientRequestID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	if !response.Success {
		c.JSON(http.StatusOK, common.NewFailureResponse(response.Message, response))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(response))
}

func (ep *Endpoint) Photo(c *gin.Context) {
	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("A photo is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	defer file.Close()

	response, err := ep.service.UploadPhoto(c.Request.Context(), middlewares.CurrentUserID(c), header.Filename, saras.FileAttachment{
		Name:    header.Filename,
		Content: file,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	if !response.Success {
		c.JSON(http.StatusOK, common.NewFailureResponse(response.Message, response))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(response))
}

func (ep *Endpoint) RunAI(c *gin.Context) {
	var dto struct {
		ContractID string `json:"contract_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	response, err := ep.service.RunAIAnalysis(c.Request.Context(), middlewares.CurrentUserID(c), dto.ContractID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(response))
}

func (ep *Endpoint) AIStatus(c *gin.Context) {
	response, err := ep.service.AIStatus(c.Request.Context(), c.Param("workflowId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(response))
}
