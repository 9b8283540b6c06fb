package uploads

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/web/common"
)

// AttachFile receives the raw document (multipart field "file") and runs the
// two-step sync to Saras. A remote failure still returns the upload record,
// now in failed status, with HTTP 200 and success=false.
func (ep *Endpoint) AttachFile(c *gin.Context) {
	id, ok := uploadID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("A file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}
	defer file.Close()

	latitude, longitude := parseGeo(c)
	upload, err := ep.engine.SyncFile(c.Request.Context(), id, core.FilePayload{
		Name:    header.Filename,
		Mime:    header.Header.Get("Content-Type"),
		Size:    header.Size,
		Content: file,
	}, core.SyncParams{
		IPAddress: c.ClientIP(),
		Latitude:  latitude,
		Longitude: longitude,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if upload.IsFailed() {
		message := "Upload to Saras failed"
		if upload.LastError != nil {
			message = *upload.LastError
		}
		c.JSON(http.StatusOK, common.NewFailureResponse(message, upload))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(upload))
}

// Preview streams the locally staged file; it works for failed uploads too
// since the staged copy survives remote failures.
func (ep *Endpoint) Preview(c *gin.Context) {
	id, ok := uploadID(c)
	if !ok {
		return
	}

	upload, err := ep.uploads.Find(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	staged, err := ep.files.Open(c.Request.Context(), core.StagingKey(upload.ID))
	if err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("No staged file for this upload"))
		return
	}
	defer staged.Close()

	contentType := "application/octet-stream"
	if upload.Mime != nil && *upload.Mime != "" {
		contentType = *upload.Mime
	}
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, staged); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func parseGeo(c *gin.Context) (float64, float64) {
	var dto struct {
		Latitude  float64 `form:"latitude"`
		Longitude float64 `form:"longitude"`
	}
	_ = c.ShouldBind(&dto)
	return dto.Latitude, dto.Longitude
}
