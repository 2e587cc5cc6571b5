package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
	"github.com/hallplan/exam-scheduler-api/pkg/export"
	"github.com/hallplan/exam-scheduler-api/pkg/jobs"
)

// ReportStatus is the lifecycle state of a report job.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusFinished   ReportStatus = "finished"
	ReportStatusFailed     ReportStatus = "failed"
)

// ReportJob tracks one asynchronous PDF render.
type ReportJob struct {
	ID         string       `json:"id"`
	ScheduleID string       `json:"scheduleId"`
	Status     ReportStatus `json:"status"`
	Progress   int          `json:"progress"`
	Error      string       `json:"error,omitempty"`
	FilePath   string       `json:"-"`
	CreatedAt  time.Time    `json:"createdAt"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
}

type reportSource interface {
	ReportSections(scheduleID string) (string, []export.ReportSection, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportServiceConfig governs report generation.
type ReportServiceConfig struct {
	Enabled    bool
	StorageDir string
}

// ReportService renders schedule reports to PDF in the background. Jobs and
// their files share the schedule store's in-memory lifecycle; files are
// written under StorageDir and removed when the process owner clears it.
type ReportService struct {
	source reportSource
	queue  jobDispatcher
	logger *zap.Logger
	cfg    ReportServiceConfig

	mu   sync.RWMutex
	jobs map[string]*ReportJob
}

// NewReportService constructs the service. The queue is attached afterwards
// because its handler is this service's Handle method.
func NewReportService(source reportSource, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = os.TempDir()
	}
	return &ReportService{
		source: source,
		logger: logger,
		cfg:    cfg,
		jobs:   make(map[string]*ReportJob),
	}
}

// AttachQueue wires the dispatcher jobs are pushed onto.
func (s *ReportService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob registers a render job for the schedule and enqueues it.
func (s *ReportService) CreateJob(scheduleID string) (*ReportJob, error) {
	if !s.cfg.Enabled || s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrReportsDisabled, "")
	}
	// Resolve the schedule up front so a bad id fails the request, not the job.
	if _, _, err := s.source.ReportSections(scheduleID); err != nil {
		return nil, err
	}

	job := &ReportJob{
		ID:         uuid.NewString(),
		ScheduleID: scheduleID,
		Status:     ReportStatusQueued,
		CreatedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: "schedule-report"}); err != nil {
		s.markFailed(job.ID, "failed to enqueue report job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return s.snapshot(job.ID), nil
}

// GetJob returns job metadata.
func (s *ReportService) GetJob(id string) (*ReportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return job, nil
}

// OpenResult opens the finished PDF for download.
func (s *ReportService) OpenResult(id string) (*os.File, string, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	if job.Status != ReportStatusFinished {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "report not ready")
	}
	file, err := os.Open(job.FilePath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return file, filepath.Base(job.FilePath), nil
}

// Handle processes one queue job. It is the handler wired into the queue.
func (s *ReportService) Handle(ctx context.Context, job jobs.Job) error {
	record := s.snapshot(job.ID)
	if record == nil {
		return fmt.Errorf("report job %s not found", job.ID)
	}
	s.update(job.ID, func(j *ReportJob) {
		j.Status = ReportStatusProcessing
		j.Progress = 10
	})

	title, sections, err := s.source.ReportSections(record.ScheduleID)
	if err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}
	s.update(job.ID, func(j *ReportJob) { j.Progress = 40 })

	data, err := export.RenderPDF(title, sections)
	if err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}
	s.update(job.ID, func(j *ReportJob) { j.Progress = 80 })

	if err := os.MkdirAll(s.cfg.StorageDir, 0o755); err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}
	path := filepath.Join(s.cfg.StorageDir, fmt.Sprintf("schedule-report-%s.pdf", job.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.markFailed(job.ID, err.Error())
		return err
	}

	now := time.Now().UTC()
	s.update(job.ID, func(j *ReportJob) {
		j.Status = ReportStatusFinished
		j.Progress = 100
		j.FilePath = path
		j.FinishedAt = &now
	})
	s.logger.Sugar().Infow("report rendered", "job_id", job.ID, "schedule_id", record.ScheduleID, "bytes", len(data))
	return nil
}

func (s *ReportService) snapshot(id string) *ReportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ReportService) update(id string, apply func(*ReportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		apply(job)
	}
}

func (s *ReportService) markFailed(id, msg string) {
	now := time.Now().UTC()
	s.update(id, func(j *ReportJob) {
		j.Status = ReportStatusFailed
		j.Progress = 100
		j.Error = msg
		j.FinishedAt = &now
	})
}
