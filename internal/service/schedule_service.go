package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hallplan/exam-scheduler-api/internal/dto"
	"github.com/hallplan/exam-scheduler-api/internal/models"
	"github.com/hallplan/exam-scheduler-api/internal/scheduler"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
	"github.com/hallplan/exam-scheduler-api/pkg/export"
)

type datasetResolver interface {
	Enrollment(id string) ([]models.EnrollmentRecord, error)
	Rooms(id string) ([]models.Room, error)
}

type scheduleEngine interface {
	Run(req scheduler.Request) (*scheduler.Result, error)
}

type scheduleObserver interface {
	ObserveGeneration(result *scheduler.Result)
}

// StoredSchedule pairs a finished run with its retention deadline.
type StoredSchedule struct {
	ID        string
	Result    *scheduler.Result
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ScheduleServiceConfig governs result retention and request defaults.
type ScheduleServiceConfig struct {
	ResultTTL           time.Duration
	DefaultEfficiency   float64
	DefaultSlotDuration float64
	DefaultSeed         int64
}

// ScheduleService runs the engine against stored datasets and keeps finished
// schedules in memory until their TTL lapses.
type ScheduleService struct {
	datasets  datasetResolver
	engine    scheduleEngine
	metrics   scheduleObserver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleServiceConfig

	mu        sync.RWMutex
	schedules map[string]*StoredSchedule
	now       func() time.Time
}

// NewScheduleService constructs the service.
func NewScheduleService(datasets datasetResolver, engine scheduleEngine, metrics scheduleObserver, validate *validator.Validate, logger *zap.Logger, cfg ScheduleServiceConfig) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 2 * time.Hour
	}
	return &ScheduleService{
		datasets:  datasets,
		engine:    engine,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		schedules: make(map[string]*StoredSchedule),
		now:       time.Now,
	}
}

// Generate resolves the referenced datasets, runs the engine, and stores the
// result under a fresh schedule id.
func (s *ScheduleService) Generate(req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate request")
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	var endDate time.Time
	if req.EndDate != "" {
		endDate, err = time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
		}
	}

	enrollment, err := s.datasets.Enrollment(req.EnrollmentDatasetID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.datasets.Rooms(req.RoomDatasetID)
	if err != nil {
		return nil, err
	}

	if req.Efficiency == 0 {
		req.Efficiency = s.cfg.DefaultEfficiency
	}
	if req.SlotDurationHours == 0 {
		req.SlotDurationHours = s.cfg.DefaultSlotDuration
	}
	if req.Seed == 0 {
		req.Seed = s.cfg.DefaultSeed
	}

	result, err := s.engine.Run(scheduler.Request{
		Enrollment:        enrollment,
		Rooms:             rooms,
		Selected:          req.SelectedCourses,
		StartDate:         startDate,
		EndDate:           endDate,
		SlotsPerDay:       req.SlotsPerDay,
		SlotDurationHours: req.SlotDurationHours,
		Efficiency:        req.Efficiency,
		Seed:              req.Seed,
	})
	if err != nil {
		return nil, err
	}

	stored := s.store(result)
	if s.metrics != nil {
		s.metrics.ObserveGeneration(result)
	}
	s.logger.Sugar().Infow("schedule generated",
		"schedule_id", stored.ID,
		"courses", result.Stats.CoursesScheduled,
		"slots", result.Stats.SlotsGenerated,
		"overflow_slots", result.Stats.OverflowSlots,
		"elapsed_ms", result.Stats.ElapsedMillis)
	return s.toResponse(stored), nil
}

// Get returns a stored schedule's full response.
func (s *ScheduleService) Get(id string) (*dto.GenerateScheduleResponse, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(stored), nil
}

// Seating returns the per-room seat charts of a stored schedule.
func (s *ScheduleService) Seating(id string) ([]dto.RoomSeatingView, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	views := make([]dto.RoomSeatingView, 0, len(stored.Result.Seating))
	for _, rs := range stored.Result.Seating {
		views = append(views, dto.NewRoomSeatingView(rs))
	}
	return views, nil
}

// SeatingExport flattens the seat charts into the room-grouped format print
// tooling consumes: one entry per room per slot, students with seat labels.
func (s *ScheduleService) SeatingExport(id string) ([]dto.SeatingExportRoom, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	rooms := make([]dto.SeatingExportRoom, 0, len(stored.Result.Seating))
	for _, rs := range stored.Result.Seating {
		entry := dto.SeatingExportRoom{Room: rs.Room.DisplayName()}
		for _, seat := range rs.Seats {
			if !seat.Occupied || seat.Student == nil {
				continue
			}
			entry.Students = append(entry.Students, dto.SeatingExportStudent{
				Name:       seat.Student.StudentName,
				RollNumber: seat.Student.RollNumber,
				Course:     seat.CourseCode,
				Seat:       seat.ID,
			})
		}
		rooms = append(rooms, entry)
	}
	return rooms, nil
}

// SeatingCSV renders the flat export as CSV bytes.
func (s *ScheduleService) SeatingCSV(id string) ([]byte, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return seatingTable(stored.Result).CSV()
}

// Analytics returns the stored schedule's utilization summary.
func (s *ScheduleService) Analytics(id string) (*dto.AnalyticsView, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	view := dto.NewAnalyticsView(stored.Result.Analytics)
	return &view, nil
}

// ReportSections builds the tabular sections a PDF report is rendered from.
func (s *ScheduleService) ReportSections(id string) (string, []export.ReportSection, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return "", nil, err
	}
	result := stored.Result

	timetable := export.Table{Headers: []string{"Date", "Slot", "Course", "Title", "Students", "Rooms"}}
	for _, slot := range result.Schedule {
		for _, course := range slot.Courses {
			rooms := make([]string, 0, len(course.Rooms))
			for _, share := range course.Rooms {
				rooms = append(rooms, fmt.Sprintf("%s (%d)", share.Room.DisplayName(), share.Students))
			}
			timetable.AddRow(
				slot.Slot.Date.Format("2006-01-02"),
				fmt.Sprintf("%d", slot.Slot.SlotIndex+1),
				course.Course.Code,
				course.Course.Name,
				fmt.Sprintf("%d", course.TotalAssigned),
				strings.Join(rooms, ", "),
			)
		}
	}

	utilization := export.Table{Headers: []string{"Room", "Sessions", "Students", "Utilization"}}
	for _, item := range result.Analytics.RoomBreakdown {
		utilization.AddRow(
			item.Room.DisplayName(),
			fmt.Sprintf("%d", item.Sessions),
			fmt.Sprintf("%d", item.TotalStudents),
			fmt.Sprintf("%d%%", item.Utilization),
		)
	}

	sections := []export.ReportSection{
		{Title: "Exam Timetable", Table: timetable},
		{Title: "Room Utilization", Table: utilization},
		{Title: "Seating Assignments", Table: seatingTable(result)},
	}
	title := fmt.Sprintf("Examination Schedule %s", stored.CreatedAt.Format("2006-01-02"))
	return title, sections, nil
}

func seatingTable(result *scheduler.Result) export.Table {
	table := export.Table{Headers: []string{"Slot", "Room", "Seat", "Roll", "Name", "Course"}}
	for _, rs := range result.Seating {
		for _, seat := range rs.Seats {
			if !seat.Occupied || seat.Student == nil {
				continue
			}
			table.AddRow(
				rs.SlotID,
				rs.Room.DisplayName(),
				seat.ID,
				seat.Student.RollNumber,
				seat.Student.StudentName,
				seat.CourseCode,
			)
		}
	}
	return table
}

func (s *ScheduleService) store(result *scheduler.Result) *StoredSchedule {
	now := s.now()
	stored := &StoredSchedule{
		ID:        uuid.NewString(),
		Result:    result,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ResultTTL),
	}
	s.mu.Lock()
	for id, existing := range s.schedules {
		if now.After(existing.ExpiresAt) {
			delete(s.schedules, id)
		}
	}
	s.schedules[stored.ID] = stored
	s.mu.Unlock()
	return stored
}

func (s *ScheduleService) lookup(id string) (*StoredSchedule, error) {
	s.mu.RLock()
	stored, ok := s.schedules[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	}
	if s.now().After(stored.ExpiresAt) {
		s.mu.Lock()
		delete(s.schedules, id)
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule expired")
	}
	return stored, nil
}

func (s *ScheduleService) toResponse(stored *StoredSchedule) *dto.GenerateScheduleResponse {
	result := stored.Result
	resp := &dto.GenerateScheduleResponse{
		ScheduleID: stored.ID,
		Analytics:  dto.NewAnalyticsView(result.Analytics),
		Stats: dto.ScheduleStatsView{
			CoursesScheduled: result.Stats.CoursesScheduled,
			SlotsGenerated:   result.Stats.SlotsGenerated,
			OverflowSlots:    result.Stats.OverflowSlots,
			SeatingConflicts: result.Stats.SeatingConflicts,
			ElapsedMillis:    result.Stats.ElapsedMillis,
		},
		ExpiresAt: stored.ExpiresAt.UTC().Format(time.RFC3339),
	}
	for _, slot := range result.Slots {
		resp.Slots = append(resp.Slots, dto.NewSlotView(slot))
	}
	for _, slot := range result.Schedule {
		resp.Schedule = append(resp.Schedule, dto.NewSlotScheduleView(slot))
	}
	return resp
}
