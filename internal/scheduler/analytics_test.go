package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallplan/exam-scheduler-api/internal/models"
)

func TestComputeAnalyticsOverallEfficiency(t *testing.T) {
	schedule := []models.SlotSchedule{
		{
			Slot: models.Slot{ID: "slot-1", Sequence: 1},
			Rooms: []models.RoomPlan{
				{Room: room("r1", 100), PlannedCapacity: 90, Assigned: 45, Remaining: 45},
			},
			Courses: []models.CourseSummary{
				{Course: course("A", 45), TotalAssigned: 45},
			},
		},
		{
			Slot: models.Slot{ID: "slot-2", Sequence: 2},
			Rooms: []models.RoomPlan{
				{Room: room("r1", 100), PlannedCapacity: 90, Assigned: 90, Remaining: 0},
			},
			Courses: []models.CourseSummary{
				{Course: course("B", 90), TotalAssigned: 90},
			},
		},
	}

	analytics := ComputeAnalytics(schedule)

	assert.Equal(t, 2, analytics.TotalExams)
	assert.Equal(t, 1, analytics.TotalRoomsUsed)
	assert.Equal(t, 135, analytics.TotalStudents)
	// 135 assigned / 180 planned = 75%
	assert.Equal(t, 75, analytics.OverallEfficiency)

	require.Len(t, analytics.RoomBreakdown, 1)
	breakdown := analytics.RoomBreakdown[0]
	assert.Equal(t, 135, breakdown.TotalStudents)
	assert.Equal(t, 2, breakdown.Sessions)
	assert.Equal(t, 75, breakdown.Utilization)
}

func TestComputeAnalyticsUtilizationClampedAndSorted(t *testing.T) {
	schedule := []models.SlotSchedule{
		{
			Slot: models.Slot{ID: "slot-1", Sequence: 1},
			Rooms: []models.RoomPlan{
				{Room: room("hot", 50), PlannedCapacity: 40, Assigned: 41, Remaining: -1},
				{Room: room("cold", 50), PlannedCapacity: 40, Assigned: 10, Remaining: 30},
			},
		},
	}

	analytics := ComputeAnalytics(schedule)

	require.Len(t, analytics.RoomBreakdown, 2)
	assert.Equal(t, "hot", analytics.RoomBreakdown[0].Room.ID, "sorted by utilization descending")
	assert.Equal(t, 100, analytics.RoomBreakdown[0].Utilization, "utilization never exceeds 100")
	assert.Equal(t, 25, analytics.RoomBreakdown[1].Utilization)
}

func TestComputeAnalyticsEmptySchedule(t *testing.T) {
	analytics := ComputeAnalytics(nil)
	assert.Zero(t, analytics.TotalExams)
	assert.Zero(t, analytics.TotalStudents)
	assert.Zero(t, analytics.OverallEfficiency)
	assert.Empty(t, analytics.RoomBreakdown)
}
