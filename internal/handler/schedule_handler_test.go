package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hallplan/exam-scheduler-api/internal/dto"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
)

type scheduleServiceMock struct {
	generateResp *dto.GenerateScheduleResponse
	generateErr  error
	getResp      *dto.GenerateScheduleResponse
	getErr       error
	seating      []dto.RoomSeatingView
	export       []dto.SeatingExportRoom
	csv          []byte
	analytics    *dto.AnalyticsView
	err          error
}

func (m *scheduleServiceMock) Generate(dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	return m.generateResp, m.generateErr
}

func (m *scheduleServiceMock) Get(string) (*dto.GenerateScheduleResponse, error) {
	return m.getResp, m.getErr
}

func (m *scheduleServiceMock) Seating(string) ([]dto.RoomSeatingView, error) {
	return m.seating, m.err
}

func (m *scheduleServiceMock) SeatingExport(string) ([]dto.SeatingExportRoom, error) {
	return m.export, m.err
}

func (m *scheduleServiceMock) SeatingCSV(string) ([]byte, error) {
	return m.csv, m.err
}

func (m *scheduleServiceMock) Analytics(string) (*dto.AnalyticsView, error) {
	return m.analytics, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestScheduleHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{
		generateResp: &dto.GenerateScheduleResponse{ScheduleID: "sched-1"},
	}
	handler := &ScheduleHandler{service: mockSvc}

	payload, _ := json.Marshal(dto.GenerateScheduleRequest{
		EnrollmentDatasetID: "enroll-1",
		RoomDatasetID:       "rooms-1",
		SelectedCourses:     []string{"CS101"},
		StartDate:           "2026-03-02",
	})
	c, w := newGinContext(http.MethodPost, "/schedules/generate", payload)

	handler.Generate(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestScheduleHandlerGenerateInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{service: &scheduleServiceMock{}}

	c, w := newGinContext(http.MethodPost, "/schedules/generate", []byte("{not json"))

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerGenerateTooManyCourses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{service: &scheduleServiceMock{}}

	courses := make([]string, maxSelectedCourses+1)
	for i := range courses {
		courses[i] = "CS101"
	}
	payload, _ := json.Marshal(dto.GenerateScheduleRequest{
		EnrollmentDatasetID: "enroll-1",
		RoomDatasetID:       "rooms-1",
		SelectedCourses:     courses,
		StartDate:           "2026-03-02",
	})
	c, w := newGinContext(http.MethodPost, "/schedules/generate", payload)

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{getErr: appErrors.ErrNotFound}
	handler := &ScheduleHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/schedules/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerSeatingCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{csv: []byte("Slot,Room,Seat\n")}
	handler := &ScheduleHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/schedules/sched-1/seating.csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}

	handler.SeatingCSV(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "Slot,Room,Seat")
}

func TestScheduleHandlerAnalytics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{
		analytics: &dto.AnalyticsView{TotalStudents: 80, OverallEfficiency: 75},
	}
	handler := &ScheduleHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/schedules/sched-1/analytics", nil)
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}

	handler.Analytics(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"totalStudents":80`)
}
