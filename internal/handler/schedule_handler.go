package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hallplan/exam-scheduler-api/internal/dto"
	"github.com/hallplan/exam-scheduler-api/internal/service"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
	"github.com/hallplan/exam-scheduler-api/pkg/response"
)

const maxSelectedCourses = 512

type scheduleProvider interface {
	Generate(req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	Get(id string) (*dto.GenerateScheduleResponse, error)
	Seating(id string) ([]dto.RoomSeatingView, error)
	SeatingExport(id string) ([]dto.SeatingExportRoom, error)
	SeatingCSV(id string) ([]byte, error)
	Analytics(id string) (*dto.AnalyticsView, error)
}

// ScheduleHandler exposes schedule generation and retrieval endpoints.
type ScheduleHandler struct {
	service scheduleProvider
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Generate godoc
// @Summary Generate an exam schedule with seating from stored datasets
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	if len(req.SelectedCourses) > maxSelectedCourses {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "selectedCourses exceeds supported limit"))
		return
	}
	result, err := h.service.Generate(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Fetch a generated schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Seating godoc
// @Summary Fetch seat charts for a generated schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/seating [get]
func (h *ScheduleHandler) Seating(c *gin.Context) {
	charts, err := h.service.Seating(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, charts, nil)
}

// SeatingExport godoc
// @Summary Export seating as room-grouped JSON for print tooling
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/seating/export [get]
func (h *ScheduleHandler) SeatingExport(c *gin.Context) {
	export, err := h.service.SeatingExport(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, export, nil)
}

// SeatingCSV godoc
// @Summary Download seating assignments as CSV
// @Tags Schedules
// @Produce text/csv
// @Param id path string true "Schedule ID"
// @Success 200 {string} string "CSV content"
// @Router /schedules/{id}/seating.csv [get]
func (h *ScheduleHandler) SeatingCSV(c *gin.Context) {
	data, err := h.service.SeatingCSV(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="seating.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// Analytics godoc
// @Summary Fetch utilization analytics for a generated schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/analytics [get]
func (h *ScheduleHandler) Analytics(c *gin.Context) {
	analytics, err := h.service.Analytics(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analytics, nil)
}
