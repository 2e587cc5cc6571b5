package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
	"github.com/hallplan/exam-scheduler-api/pkg/export"
	"github.com/hallplan/exam-scheduler-api/pkg/jobs"
)

type reportSourceStub struct {
	title    string
	sections []export.ReportSection
	err      error
}

func (s *reportSourceStub) ReportSections(string) (string, []export.ReportSection, error) {
	return s.title, s.sections, s.err
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

func newReportFixture(t *testing.T) (*ReportService, *queueStub) {
	t.Helper()
	source := &reportSourceStub{
		title: "Examination Schedule 2026-03-02",
		sections: []export.ReportSection{
			{
				Title: "Exam Timetable",
				Table: export.Table{
					Headers: []string{"Date", "Course"},
					Rows:    [][]string{{"2026-03-02", "CS101"}},
				},
			},
		},
	}
	queue := &queueStub{}
	svc := NewReportService(source, zap.NewNop(), ReportServiceConfig{
		Enabled:    true,
		StorageDir: t.TempDir(),
	})
	svc.AttachQueue(queue)
	return svc, queue
}

func TestReportServiceCreateJob(t *testing.T) {
	svc, queue := newReportFixture(t)

	job, err := svc.CreateJob("sched-1")
	require.NoError(t, err)
	assert.Equal(t, ReportStatusQueued, job.Status)
	assert.Equal(t, "sched-1", job.ScheduleID)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, job.ID, queue.enqueued[0].ID)
}

func TestReportServiceCreateJobDisabled(t *testing.T) {
	svc := NewReportService(&reportSourceStub{}, zap.NewNop(), ReportServiceConfig{Enabled: false})

	_, err := svc.CreateJob("sched-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReportsDisabled.Code, appErrors.FromError(err).Code)
}

func TestReportServiceCreateJobUnknownSchedule(t *testing.T) {
	source := &reportSourceStub{err: appErrors.Clone(appErrors.ErrNotFound, "schedule not found")}
	svc := NewReportService(source, zap.NewNop(), ReportServiceConfig{Enabled: true, StorageDir: t.TempDir()})
	svc.AttachQueue(&queueStub{})

	_, err := svc.CreateJob("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceHandleRendersPDF(t *testing.T) {
	svc, queue := newReportFixture(t)

	job, err := svc.CreateJob("sched-1")
	require.NoError(t, err)

	require.NoError(t, svc.Handle(context.Background(), queue.enqueued[0]))

	finished, err := svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, ReportStatusFinished, finished.Status)
	assert.Equal(t, 100, finished.Progress)
	require.NotNil(t, finished.FinishedAt)

	file, filename, err := svc.OpenResult(job.ID)
	require.NoError(t, err)
	defer file.Close()
	assert.Contains(t, filename, ".pdf")

	header := make([]byte, 4)
	_, err = file.Read(header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestReportServiceOpenResultNotReady(t *testing.T) {
	svc, _ := newReportFixture(t)

	job, err := svc.CreateJob("sched-1")
	require.NoError(t, err)

	_, _, err = svc.OpenResult(job.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestReportServiceHandleFailure(t *testing.T) {
	source := &reportSourceStub{title: "x"}
	svc := NewReportService(source, zap.NewNop(), ReportServiceConfig{Enabled: true, StorageDir: t.TempDir()})
	queue := &queueStub{}
	svc.AttachQueue(queue)

	job, err := svc.CreateJob("sched-1")
	require.NoError(t, err)

	// Sections disappear before the worker runs.
	source.err = appErrors.Clone(appErrors.ErrNotFound, "schedule expired")
	require.Error(t, svc.Handle(context.Background(), queue.enqueued[0]))

	failed, err := svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, ReportStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)
}
