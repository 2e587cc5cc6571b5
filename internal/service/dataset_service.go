package service

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hallplan/exam-scheduler-api/internal/dto"
	"github.com/hallplan/exam-scheduler-api/internal/models"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
)

// DatasetKind discriminates stored dataset payloads.
type DatasetKind string

const (
	DatasetEnrollment DatasetKind = "enrollment"
	DatasetRooms      DatasetKind = "rooms"
)

// Dataset is one stored upload. Exactly one of Enrollment or Rooms is set,
// per Kind.
type Dataset struct {
	ID         string
	Kind       DatasetKind
	Enrollment []models.EnrollmentRecord
	Rooms      []models.Room
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// DatasetServiceConfig governs retention and upload limits.
type DatasetServiceConfig struct {
	TTL            time.Duration
	MaxUploadBytes int64
	PreviewRows    int
}

// DatasetService keeps uploaded datasets in memory with a TTL. Schedules are
// recomputed from scratch per run, so there is no durable storage behind it;
// an expired dataset simply has to be uploaded again.
type DatasetService struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	logger   *zap.Logger
	cfg      DatasetServiceConfig
	now      func() time.Time
}

// NewDatasetService constructs the service.
func NewDatasetService(logger *zap.Logger, cfg DatasetServiceConfig) *DatasetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 5
	}
	return &DatasetService{
		datasets: make(map[string]*Dataset),
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// IngestEnrollmentCSV parses registrar-format enrollment rows and stores them
// as a new dataset. Rows missing a roll number or course code are skipped and
// reported as warnings rather than failing the upload.
func (s *DatasetService) IngestEnrollmentCSV(data []byte) (*dto.UploadDatasetResponse, error) {
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty enrollment upload")
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment upload exceeds size limit")
	}

	var rows []models.EnrollmentRecord
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse enrollment csv")
	}

	records := make([]models.EnrollmentRecord, 0, len(rows))
	var warnings []string
	skipped := 0
	for i, row := range rows {
		row.RollNumber = strings.TrimSpace(row.RollNumber)
		row.CourseCode = strings.TrimSpace(row.CourseCode)
		row.StudentName = strings.TrimSpace(row.StudentName)
		row.CourseName = strings.TrimSpace(row.CourseName)
		row.SessionLabel = strings.TrimSpace(row.SessionLabel)
		if row.RollNumber == "" || row.CourseCode == "" {
			skipped++
			if len(warnings) < 10 {
				warnings = append(warnings, fmt.Sprintf("row %d: missing roll number or course code", i+2))
			}
			continue
		}
		records = append(records, row)
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no usable enrollment rows in upload")
	}

	ds := s.store(&Dataset{Kind: DatasetEnrollment, Enrollment: records})
	resp := &dto.UploadDatasetResponse{
		DatasetID: ds.ID,
		Kind:      string(ds.Kind),
		Records:   len(records),
		Skipped:   skipped,
		Warnings:  warnings,
		Summary:   enrollmentSummary(records),
		ExpiresAt: ds.ExpiresAt.UTC().Format(time.RFC3339),
	}
	for i := 0; i < len(records) && i < s.cfg.PreviewRows; i++ {
		resp.Preview = append(resp.Preview, map[string]any{
			"rollNumber": records[i].RollNumber,
			"student":    records[i].StudentName,
			"course":     records[i].CourseCode,
			"semester":   records[i].SessionLabel,
		})
	}
	s.logger.Sugar().Infow("enrollment dataset stored",
		"dataset_id", ds.ID, "records", len(records), "skipped", skipped)
	return resp, nil
}

// IngestRoomsCSV parses and stores a rooms dataset. Rooms without a positive
// capacity are skipped with a warning.
func (s *DatasetService) IngestRoomsCSV(data []byte) (*dto.UploadDatasetResponse, error) {
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty rooms upload")
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rooms upload exceeds size limit")
	}

	var rows []models.Room
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse rooms csv")
	}
	return s.storeRooms(rows)
}

// IngestRooms stores an already-decoded rooms payload (JSON uploads).
func (s *DatasetService) IngestRooms(rooms []models.Room) (*dto.UploadDatasetResponse, error) {
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty rooms upload")
	}
	return s.storeRooms(rooms)
}

func (s *DatasetService) storeRooms(rows []models.Room) (*dto.UploadDatasetResponse, error) {
	rooms := make([]models.Room, 0, len(rows))
	var warnings []string
	skipped := 0
	totalCapacity := 0
	for i, room := range rows {
		room.ID = strings.TrimSpace(room.ID)
		room.Name = strings.TrimSpace(room.Name)
		if room.Key() == "" || room.Capacity <= 0 {
			skipped++
			if len(warnings) < 10 {
				warnings = append(warnings, fmt.Sprintf("row %d: missing room identifier or capacity", i+2))
			}
			continue
		}
		if room.MaxWithSpacing > room.Capacity {
			room.MaxWithSpacing = room.Capacity
			if len(warnings) < 10 {
				warnings = append(warnings, fmt.Sprintf("row %d: spaced capacity clamped to capacity", i+2))
			}
		}
		totalCapacity += room.Capacity
		rooms = append(rooms, room)
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no usable rooms in upload")
	}

	ds := s.store(&Dataset{Kind: DatasetRooms, Rooms: rooms})
	resp := &dto.UploadDatasetResponse{
		DatasetID: ds.ID,
		Kind:      string(ds.Kind),
		Records:   len(rooms),
		Skipped:   skipped,
		Warnings:  warnings,
		Summary:   map[string]int{"totalRooms": len(rooms), "totalCapacity": totalCapacity},
		ExpiresAt: ds.ExpiresAt.UTC().Format(time.RFC3339),
	}
	for i := 0; i < len(rooms) && i < s.cfg.PreviewRows; i++ {
		resp.Preview = append(resp.Preview, map[string]any{
			"room":     rooms[i].DisplayName(),
			"capacity": rooms[i].Capacity,
			"building": rooms[i].Building,
		})
	}
	s.logger.Sugar().Infow("rooms dataset stored",
		"dataset_id", ds.ID, "rooms", len(rooms), "skipped", skipped)
	return resp, nil
}

// GenerateSample synthesises a realistic enrollment and rooms pair for demos
// and load testing. Students enrol in every course of their semester, so the
// sample exercises the conflict-heavy path.
func (s *DatasetService) GenerateSample(req dto.GenerateSampleRequest) (enrollment, rooms *dto.UploadDatasetResponse, err error) {
	students := req.Students
	if students <= 0 {
		students = 200
	}
	coursesPerSemester := req.CoursesPerSemester
	if coursesPerSemester <= 0 {
		coursesPerSemester = 5
	}
	roomCount := req.Rooms
	if roomCount <= 0 {
		roomCount = 6
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	semesters := []string{"Semester 1", "Semester 3", "Semester 5", "Semester 7"}
	subjects := []string{"Algorithms", "Databases", "Networks", "Operating Systems",
		"Linear Algebra", "Statistics", "Compilers", "Distributed Systems"}
	firstNames := []string{"Aarav", "Diya", "Ishaan", "Meera", "Rohan", "Sanya",
		"Kabir", "Anaya", "Vihaan", "Priya", "Arjun", "Zara"}
	lastNames := []string{"Sharma", "Patel", "Khan", "Iyer", "Reddy", "Gupta",
		"Singh", "Nair", "Das", "Mehta"}

	var records []models.EnrollmentRecord
	for i := 0; i < students; i++ {
		semIdx := rng.Intn(len(semesters))
		semester := semesters[semIdx]
		roll := fmt.Sprintf("2022-CS-%03d", i+1)
		name := fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))])
		for c := 0; c < coursesPerSemester; c++ {
			code := fmt.Sprintf("CS%d%02d", semIdx+1, c+1)
			records = append(records, models.EnrollmentRecord{
				SessionLabel: semester,
				RollNumber:   roll,
				StudentName:  name,
				CourseCode:   code,
				CourseName:   fmt.Sprintf("%s %s", subjects[c%len(subjects)], semester),
			})
		}
	}

	var roomRows []models.Room
	for i := 0; i < roomCount; i++ {
		capacity := 40 + rng.Intn(5)*20
		roomRows = append(roomRows, models.Room{
			ID:             fmt.Sprintf("R-%02d", i+1),
			Name:           fmt.Sprintf("Hall %d", i+1),
			Capacity:       capacity,
			MaxWithSpacing: capacity / 2,
			Building:       fmt.Sprintf("Block %c", 'A'+i%3),
		})
	}

	enrollmentDS := s.store(&Dataset{Kind: DatasetEnrollment, Enrollment: records})
	enrollment = &dto.UploadDatasetResponse{
		DatasetID: enrollmentDS.ID,
		Kind:      string(DatasetEnrollment),
		Records:   len(records),
		Summary:   enrollmentSummary(records),
		ExpiresAt: enrollmentDS.ExpiresAt.UTC().Format(time.RFC3339),
	}

	roomsDS := s.store(&Dataset{Kind: DatasetRooms, Rooms: roomRows})
	totalCapacity := 0
	for _, room := range roomRows {
		totalCapacity += room.Capacity
	}
	rooms = &dto.UploadDatasetResponse{
		DatasetID: roomsDS.ID,
		Kind:      string(DatasetRooms),
		Records:   len(roomRows),
		Summary:   map[string]int{"totalRooms": len(roomRows), "totalCapacity": totalCapacity},
		ExpiresAt: roomsDS.ExpiresAt.UTC().Format(time.RFC3339),
	}

	s.logger.Sugar().Infow("sample datasets generated",
		"enrollment_id", enrollmentDS.ID, "rooms_id", roomsDS.ID,
		"students", students, "rooms", roomCount, "seed", seed)
	return enrollment, rooms, nil
}

// Get returns a stored dataset, expiring it lazily.
func (s *DatasetService) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	ds, ok := s.datasets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clonef(appErrors.ErrNotFound, "dataset %s not found", id)
	}
	if s.now().After(ds.ExpiresAt) {
		s.mu.Lock()
		delete(s.datasets, id)
		s.mu.Unlock()
		return nil, appErrors.Clonef(appErrors.ErrNotFound, "dataset %s expired", id)
	}
	return ds, nil
}

// Detail returns the dataset's metadata plus its aggregate view.
func (s *DatasetService) Detail(id string) (*dto.DatasetDetailResponse, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	resp := &dto.DatasetDetailResponse{
		DatasetID: ds.ID,
		Kind:      string(ds.Kind),
		CreatedAt: ds.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt: ds.ExpiresAt.UTC().Format(time.RFC3339),
	}
	switch ds.Kind {
	case DatasetEnrollment:
		resp.Records = len(ds.Enrollment)
		resp.Courses = aggregateCourses(ds.Enrollment)
	case DatasetRooms:
		resp.Records = len(ds.Rooms)
		for _, room := range ds.Rooms {
			resp.Rooms = append(resp.Rooms, dto.RoomSummary{
				ID:                room.ID,
				Name:              room.Name,
				Capacity:          room.Capacity,
				MaxWithSpacing:    room.MaxWithSpacing,
				Building:          room.Building,
				EffectiveCapacity: room.EffectiveCapacity(1),
			})
		}
	}
	return resp, nil
}

// Enrollment resolves an enrollment dataset or fails with a precondition
// error when the id points at the wrong kind.
func (s *DatasetService) Enrollment(id string) ([]models.EnrollmentRecord, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrDatasetMissing, "enrollment dataset not loaded")
	}
	if ds.Kind != DatasetEnrollment {
		return nil, appErrors.Clone(appErrors.ErrDatasetMissing, "dataset is not an enrollment dataset")
	}
	return ds.Enrollment, nil
}

// Rooms resolves a rooms dataset.
func (s *DatasetService) Rooms(id string) ([]models.Room, error) {
	ds, err := s.Get(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrDatasetMissing, "room dataset not loaded")
	}
	if ds.Kind != DatasetRooms {
		return nil, appErrors.Clone(appErrors.ErrDatasetMissing, "dataset is not a rooms dataset")
	}
	return ds.Rooms, nil
}

func (s *DatasetService) store(ds *Dataset) *Dataset {
	now := s.now()
	ds.ID = uuid.NewString()
	ds.CreatedAt = now
	ds.ExpiresAt = now.Add(s.cfg.TTL)

	s.mu.Lock()
	for id, existing := range s.datasets {
		if now.After(existing.ExpiresAt) {
			delete(s.datasets, id)
		}
	}
	s.datasets[ds.ID] = ds
	s.mu.Unlock()
	return ds
}

func enrollmentSummary(records []models.EnrollmentRecord) map[string]int {
	students := make(map[string]struct{})
	courses := make(map[string]struct{})
	for _, record := range records {
		students[record.RollNumber] = struct{}{}
		courses[record.CourseCode] = struct{}{}
	}
	return map[string]int{
		"totalRecords":   len(records),
		"uniqueStudents": len(students),
		"uniqueCourses":  len(courses),
	}
}

func aggregateCourses(records []models.EnrollmentRecord) []dto.CourseSummary {
	type agg struct {
		name     string
		semester string
		count    int
	}
	byCode := make(map[string]*agg)
	for _, record := range records {
		a := byCode[record.CourseCode]
		if a == nil {
			a = &agg{name: record.CourseName, semester: record.SessionLabel}
			byCode[record.CourseCode] = a
		}
		a.count++
	}
	out := make([]dto.CourseSummary, 0, len(byCode))
	for code, a := range byCode {
		out = append(out, dto.CourseSummary{
			Code:         code,
			Name:         a.name,
			Semester:     a.semester,
			StudentCount: a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
