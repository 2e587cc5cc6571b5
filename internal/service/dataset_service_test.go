package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hallplan/exam-scheduler-api/internal/dto"
	"github.com/hallplan/exam-scheduler-api/internal/models"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
)

const enrollmentCSV = `Student Session,Student Roll Number,Student Name,Subject Code,Subject Name
Semester 1,2022-CS-001,Alice,CS101,Algorithms
Semester 1,2022-CS-001,Alice,CS102,Databases
Semester 1,2022-CS-002,Bob,CS101,Algorithms
Semester 1,,Nameless,CS101,Algorithms
`

const roomsCSV = `room_id,room_name,capacity,layout,rows,building,max_with_spacing
R-01,Hall 1,100,grid,10,Block A,50
R-02,Hall 2,60,grid,8,Block B,30
,,0,,,,
`

func newDatasetFixture() *DatasetService {
	return NewDatasetService(zap.NewNop(), DatasetServiceConfig{TTL: time.Hour, PreviewRows: 2})
}

func TestIngestEnrollmentCSV(t *testing.T) {
	svc := newDatasetFixture()

	resp, err := svc.IngestEnrollmentCSV([]byte(enrollmentCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Records)
	assert.Equal(t, 1, resp.Skipped)
	assert.Len(t, resp.Warnings, 1)
	assert.Equal(t, 2, resp.Summary["uniqueStudents"])
	assert.Equal(t, 2, resp.Summary["uniqueCourses"])
	assert.Len(t, resp.Preview, 2)

	records, err := svc.Enrollment(resp.DatasetID)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "2022-CS-001", records[0].RollNumber)
	assert.Equal(t, "CS101", records[0].CourseCode)
}

func TestIngestEnrollmentCSVRejectsEmpty(t *testing.T) {
	svc := newDatasetFixture()

	_, err := svc.IngestEnrollmentCSV(nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIngestEnrollmentCSVEnforcesUploadLimit(t *testing.T) {
	svc := NewDatasetService(zap.NewNop(), DatasetServiceConfig{TTL: time.Hour, MaxUploadBytes: 10})

	_, err := svc.IngestEnrollmentCSV([]byte(enrollmentCSV))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIngestRoomsCSV(t *testing.T) {
	svc := newDatasetFixture()

	resp, err := svc.IngestRoomsCSV([]byte(roomsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Records)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 160, resp.Summary["totalCapacity"])

	rooms, err := svc.Rooms(resp.DatasetID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "R-01", rooms[0].ID)
	assert.Equal(t, 50, rooms[0].MaxWithSpacing)
}

func TestIngestRoomsClampsSpacedCapacity(t *testing.T) {
	svc := newDatasetFixture()

	resp, err := svc.IngestRooms([]models.Room{
		{ID: "R-01", Capacity: 40, MaxWithSpacing: 90},
	})
	require.NoError(t, err)
	require.Len(t, resp.Warnings, 1)

	rooms, err := svc.Rooms(resp.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, 40, rooms[0].MaxWithSpacing)
}

func TestDatasetExpiry(t *testing.T) {
	svc := newDatasetFixture()
	current := time.Now()
	svc.now = func() time.Time { return current }

	resp, err := svc.IngestEnrollmentCSV([]byte(enrollmentCSV))
	require.NoError(t, err)

	_, err = svc.Get(resp.DatasetID)
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	_, err = svc.Get(resp.DatasetID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDatasetKindMismatch(t *testing.T) {
	svc := newDatasetFixture()

	resp, err := svc.IngestEnrollmentCSV([]byte(enrollmentCSV))
	require.NoError(t, err)

	_, err = svc.Rooms(resp.DatasetID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDatasetMissing.Code, appErrors.FromError(err).Code)
}

func TestGenerateSampleDeterministicWithSeed(t *testing.T) {
	svc := newDatasetFixture()

	enrollA, roomsA, err := svc.GenerateSample(dto.GenerateSampleRequest{Students: 50, Seed: 7})
	require.NoError(t, err)
	enrollB, roomsB, err := svc.GenerateSample(dto.GenerateSampleRequest{Students: 50, Seed: 7})
	require.NoError(t, err)

	recordsA, err := svc.Enrollment(enrollA.DatasetID)
	require.NoError(t, err)
	recordsB, err := svc.Enrollment(enrollB.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, recordsA, recordsB)

	roomListA, err := svc.Rooms(roomsA.DatasetID)
	require.NoError(t, err)
	roomListB, err := svc.Rooms(roomsB.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, roomListA, roomListB)
}

func TestDatasetDetail(t *testing.T) {
	svc := newDatasetFixture()

	resp, err := svc.IngestEnrollmentCSV([]byte(enrollmentCSV))
	require.NoError(t, err)

	detail, err := svc.Detail(resp.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, string(DatasetEnrollment), detail.Kind)
	assert.Equal(t, 3, detail.Records)
	require.Len(t, detail.Courses, 2)
	assert.Equal(t, "CS101", detail.Courses[0].Code)
	assert.Equal(t, 2, detail.Courses[0].StudentCount)
}
