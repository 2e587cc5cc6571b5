package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hallplan/exam-scheduler-api/internal/dto"
	"github.com/hallplan/exam-scheduler-api/internal/models"
	"github.com/hallplan/exam-scheduler-api/internal/service"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
	"github.com/hallplan/exam-scheduler-api/pkg/response"
)

type datasetIngestor interface {
	IngestEnrollmentCSV(data []byte) (*dto.UploadDatasetResponse, error)
	IngestRoomsCSV(data []byte) (*dto.UploadDatasetResponse, error)
	IngestRooms(rooms []models.Room) (*dto.UploadDatasetResponse, error)
	GenerateSample(req dto.GenerateSampleRequest) (*dto.UploadDatasetResponse, *dto.UploadDatasetResponse, error)
	Detail(id string) (*dto.DatasetDetailResponse, error)
}

// DatasetHandler exposes dataset upload and inspection endpoints.
type DatasetHandler struct {
	service datasetIngestor
}

// NewDatasetHandler constructs the handler.
func NewDatasetHandler(svc *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: svc}
}

// UploadEnrollment godoc
// @Summary Upload enrollment dataset (CSV)
// @Description Accepts registrar-format CSV either as a multipart "file" field or as the raw request body.
// @Tags Datasets
// @Accept mpfd
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /datasets/enrollment [post]
func (h *DatasetHandler) UploadEnrollment(c *gin.Context) {
	data, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.IngestEnrollmentCSV(data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UploadRooms godoc
// @Summary Upload rooms dataset (CSV or JSON)
// @Tags Datasets
// @Accept mpfd
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /datasets/rooms [post]
func (h *DatasetHandler) UploadRooms(c *gin.Context) {
	if c.ContentType() == "application/json" {
		var rooms []models.Room
		if err := c.ShouldBindJSON(&rooms); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rooms payload"))
			return
		}
		result, err := h.service.IngestRooms(rooms)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, result)
		return
	}

	data, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.IngestRoomsCSV(data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GenerateSample godoc
// @Summary Generate a synthetic enrollment and rooms dataset pair
// @Tags Datasets
// @Accept json
// @Produce json
// @Param payload body dto.GenerateSampleRequest false "Sample generator options"
// @Success 201 {object} response.Envelope
// @Router /datasets/sample [post]
func (h *DatasetHandler) GenerateSample(c *gin.Context) {
	var req dto.GenerateSampleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sample payload"))
			return
		}
	}
	enrollment, rooms, err := h.service.GenerateSample(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"enrollment": enrollment, "rooms": rooms})
}

// Get godoc
// @Summary Inspect a stored dataset
// @Tags Datasets
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} response.Envelope
// @Router /datasets/{id} [get]
func (h *DatasetHandler) Get(c *gin.Context) {
	detail, err := h.service.Detail(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// readUpload pulls upload bytes from a multipart "file" field, falling back
// to the raw body for clients that post the CSV directly.
func readUpload(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file")
		}
		return data, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read request body")
	}
	return data, nil
}
