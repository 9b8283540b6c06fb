package attendance

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/utils"
	"trackai.dev/trackai/web/common"
	"trackai.dev/trackai/web/middlewares"
)

const exportDateLayout = "2006-01-02"

// Export streams the user's sessions for the requested date range as an
// xlsx workbook. Defaults to the current month.
func (ep *Endpoint) Export(c *gin.Context) {
	now := utils.ManilaNow()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if q := c.Query("from"); q != "" {
		parsed, err := time.Parse(exportDateLayout, q)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid from date"))
			return
		}
		from = parsed
	}
	if q := c.Query("to"); q != "" {
		parsed, err := time.Parse(exportDateLayout, q)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid to date"))
			return
		}
		// inclusive end date
		to = parsed.AddDate(0, 0, 1)
	}

	sessions, err := ep.history.ListForUser(c.Request.Context(), middlewares.CurrentUserID(c), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	knownProjects, err := ep.projects.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Date", "Project", "Check In", "Check Out", "Duration (min)", "Status", "Auto-close Reason"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for rowIdx, session := range sessions {
		checkOut := ""
		if session.CheckOutAt != nil {
			checkOut = session.CheckOutAt.Format("15:04:05")
		}
		duration := ""
		if minutes := session.DurationMinutes(); minutes != nil {
			duration = fmt.Sprintf("%d", *minutes)
		}
		reason := ""
		if session.AutoClosedReason != nil {
			reason = *session.AutoClosedReason
		}

		projectName := session.ProjectExternalID
		if project := utils.Find(knownProjects, func(p *model.Project) bool {
			return p.ExternalID == session.ProjectExternalID
		}); project != nil {
			projectName = project.Name
		}

		values := []any{
			session.CheckInAt.Format(exportDateLayout),
			projectName,
			session.CheckInAt.Format("15:04:05"),
			checkOut,
			duration,
			session.Status,
			reason,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx",
		from.Format(exportDateLayout), to.AddDate(0, 0, -1).Format(exportDateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	}
}
