package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hallplan/exam-scheduler-api/internal/service"
	"github.com/hallplan/exam-scheduler-api/pkg/response"
)

type reportProvider interface {
	CreateJob(scheduleID string) (*service.ReportJob, error)
	GetJob(id string) (*service.ReportJob, error)
	OpenResult(id string) (*os.File, string, error)
}

// ReportHandler exposes asynchronous report endpoints.
type ReportHandler struct {
	service reportProvider
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Create godoc
// @Summary Queue a PDF report for a generated schedule
// @Tags Reports
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 202 {object} response.Envelope
// @Router /schedules/{id}/report [post]
func (h *ReportHandler) Create(c *gin.Context) {
	job, err := h.service.CreateJob(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Check a report job's status
// @Tags Reports
// @Produce json
// @Param id path string true "Report job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	job, err := h.service.GetJob(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished report PDF
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Report job ID"
// @Success 200 {file} file "PDF content"
// @Router /reports/{id}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, filename, err := h.service.OpenResult(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/pdf")
	http.ServeContent(c.Writer, c.Request, filename, fileModTime(file), file)
}

func fileModTime(file *os.File) time.Time {
	if info, err := file.Stat(); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}
