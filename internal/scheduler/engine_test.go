package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallplan/exam-scheduler-api/internal/models"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
)

func engineFixtureRequest() Request {
	var records []models.EnrollmentRecord
	for i := 0; i < 60; i++ {
		roll := fmt.Sprintf("2022-CS-%03d", i)
		records = append(records, enrollmentRow(roll, "CS101"))
		records = append(records, enrollmentRow(roll, "CS102"))
		if i < 30 {
			records = append(records, enrollmentRow(roll, "CS103"))
		}
	}
	return Request{
		Enrollment:  records,
		Rooms:       []models.Room{room("r1", 80), room("r2", 60)},
		Selected:    []string{"CS101", "CS102", "CS103"},
		StartDate:   date(2026, 3, 2),
		EndDate:     date(2026, 3, 5),
		SlotsPerDay: 2,
		Efficiency:  0.9,
		Seed:        42,
	}
}

func TestEngineRunFailsFastWithoutCourses(t *testing.T) {
	engine := New(Config{})

	_, err := engine.Run(Request{StartDate: date(2026, 3, 2)})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoCoursesSelected.Code, appErr.Code)
}

func TestEngineRunFailsWhenSelectionHasNoRecords(t *testing.T) {
	engine := New(Config{})

	_, err := engine.Run(Request{
		Selected:  []string{"GHOST"},
		StartDate: date(2026, 3, 2),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoCoursesSelected.Code, appErr.Code)
}

func TestEngineRunEndToEnd(t *testing.T) {
	engine := New(Config{DefaultSlotsPerDay: 2, SpacingWindow: 3, AnnealingIterations: 200})

	result, err := engine.Run(engineFixtureRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.CoursesScheduled)
	assert.NotEmpty(t, result.Schedule)
	assert.NotEmpty(t, result.Seating)

	// All three courses conflict pairwise, so they occupy three slots.
	slotOf := map[string]string{}
	for _, slot := range result.Schedule {
		for _, summary := range slot.Courses {
			slotOf[summary.Course.Code] = slot.Slot.ID
		}
	}
	assert.NotEqual(t, slotOf["CS101"], slotOf["CS102"])
	assert.NotEqual(t, slotOf["CS101"], slotOf["CS103"])
	assert.NotEqual(t, slotOf["CS102"], slotOf["CS103"])

	// Conservation: 60 + 60 + 30 students seated across all rooms and slots.
	seated := 0
	for _, rs := range result.Seating {
		seated += rs.SeatedCount()
	}
	assert.Equal(t, 150, seated)

	assert.NotEmpty(t, result.Conflicts["CS101"])
	assert.Equal(t, 150, result.Analytics.TotalStudents)
}

func TestEngineRunDeterministicWithSeed(t *testing.T) {
	engine := New(Config{DefaultSlotsPerDay: 2, SpacingWindow: 3, AnnealingIterations: 200})

	first, err := engine.Run(engineFixtureRequest())
	require.NoError(t, err)
	second, err := engine.Run(engineFixtureRequest())
	require.NoError(t, err)

	assert.Equal(t, first.Schedule, second.Schedule)
	assert.Equal(t, first.Seating, second.Seating)
	assert.Equal(t, first.Analytics, second.Analytics)
}

func TestEngineRunReportsProgress(t *testing.T) {
	engine := New(Config{})
	req := engineFixtureRequest()
	var stages []string
	req.Progress = func(stage string, fraction float64) {
		stages = append(stages, stage)
		assert.GreaterOrEqual(t, fraction, 0.0)
		assert.LessOrEqual(t, fraction, 1.0)
	}

	_, err := engine.Run(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "conflicts", "slots", "allocate", "rooms", "seating", "analytics", "done"}, stages)
}
