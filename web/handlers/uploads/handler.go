// Package uploads exposes the document upload lifecycle over HTTP.
package uploads

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trackai.dev/trackai/infrastructure/filesystem"
	"trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/trackai/store"
	"trackai.dev/trackai/web/common"
	"trackai.dev/trackai/web/middlewares"
)

type Endpoint struct {
	engine   *core.UploadEngine
	uploads  store.UploadStore
	projects store.ProjectStore
	files    filesystem.Store
}

func Register(r *gin.RouterGroup, engine *core.UploadEngine, uploads store.UploadStore, projects store.ProjectStore, files filesystem.Store) {
	endpoint := &Endpoint{engine: engine, uploads: uploads, projects: projects, files: files}
	r.GET("/projects/:id/uploads", endpoint.List)
	r.POST("/projects/:id/uploads", endpoint.Create)
	r.GET("/uploads/:id", endpoint.Get)
	r.PATCH("/uploads/:id", endpoint.Update)
	r.DELETE("/uploads/:id", endpoint.Delete)
	r.POST("/uploads/:id/retry", endpoint.Retry)
	r.POST("/uploads/:id/file", endpoint.AttachFile)
	r.GET("/uploads/:id/preview", endpoint.Preview)
}

type UploadCreateDTO struct {
	ContractID      string   `json:"contract_id"`
	Title           string   `json:"title" binding:"required"`
	Remarks         *string  `json:"remarks"`
	DocumentType    string   `json:"document_type" binding:"required"`
	Tags            []string `json:"tags"`
	ClientRequestID string   `json:"client_request_id" binding:"required"`
}

type UploadUpdateDTO struct {
	Title        *string  `json:"title,omitempty"`
	Remarks      *string  `json:"remarks,omitempty"`
	DocumentType *string  `json:"document_type,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

func (ep *Endpoint) List(c *gin.Context) {
	externalID := c.Param("id")
	project, err := ep.projects.FindByExternalID(c.Request.Context(), externalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	uploads, err := ep.uploads.ListForProject(c.Request.Context(), project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, common.NewSearchResponse(uploads, int64(len(uploads))))
}

func (ep *Endpoint) Create(c *gin.Context) {
	var dto UploadCreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	upload, err := ep.engine.CreateUpload(c.Request.Context(), core.UploadParams{
		UserID:            middlewares.CurrentUserID(c),
		ProjectExternalID: c.Param("id"),
		ContractID:        dto.ContractID,
		Title:             dto.Title,
		Remarks:           dto.Remarks,
		DocumentType:      dto.DocumentType,
		Tags:              dto.Tags,
		ClientRequestID:   dto.ClientRequestID,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateRequest) {
			c.JSON(http.StatusConflict, common.NewErrorResponse("This client_request_id was already used"))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, common.NewSuccessResponse(upload))
}

func (ep *Endpoint) Get(c *gin.Context) {
	id, ok := uploadID(c)
	if !ok {
		return
	}

	upload, err := ep.uploads.Find(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(upload))
}

func (ep *Endpoint) Update(c *gin.Context) {
	id, ok := uploadID(c)
	if !ok {
		return
	}

	var dto UploadUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return
	}

	upload, err := ep.engine.UpdateMetadata(c.Request.Context(), id, core.UploadMetadata{
		Title:        dto.Title,
		Remarks:      dto.Remarks,
		DocumentType: dto.DocumentType,
		Tags:         dto.Tags,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(upload))
}

func (ep *Endpoint) Delete(c *gin.Context) {
	id, ok := uploadID(c)
	if !ok {
		return
	}

	if err := ep.engine.DeleteUpload(c.Request.Context(), id); err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
}

func (ep *Endpoint) Retry(c *gin.Context) {
	id, ok := uploadID(c)
	if !ok {
		return
	}

	upload, err := ep.engine.RetryUpload(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(upload))
}

func uploadID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid id"))
		return 0, false
	}
	return uint(id), true
}

func respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Upload not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
}

func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Upload not found"))
	case errors.Is(err, core.ErrNotEditable),
		errors.Is(err, core.ErrNotDeletable),
		errors.Is(err, core.ErrNotRetryable),
		errors.Is(err, core.ErrNotSyncable):
		c.JSON(http.StatusConflict, common.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	}
}
