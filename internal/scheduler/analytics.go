package scheduler

import (
	"sort"

	"github.com/hallplan/exam-scheduler-api/internal/models"
)

type roomRecord struct {
	room          models.Room
	totalStudents int
	sessions      int
	capacity      int
}

// ComputeAnalytics derives utilization metrics from a finished schedule. It
// reads the plans only; nothing here feeds back into allocation.
func ComputeAnalytics(schedule []models.SlotSchedule) models.Analytics {
	breakdown := make(map[string]*roomRecord)
	var breakdownOrder []string

	totalStudents := 0
	totalAssignedSeats := 0
	totalEffectiveCapacity := 0
	totalCourseSessions := 0

	for _, slot := range schedule {
		for _, summary := range slot.Courses {
			totalStudents += summary.TotalAssigned
			totalCourseSessions++
		}
		for _, plan := range slot.Rooms {
			key := plan.Room.Key()
			totalAssignedSeats += plan.Assigned
			totalEffectiveCapacity += plan.PlannedCapacity

			record := breakdown[key]
			if record == nil {
				record = &roomRecord{room: plan.Room}
				breakdown[key] = record
				breakdownOrder = append(breakdownOrder, key)
			}
			record.totalStudents += plan.Assigned
			record.sessions++
			record.capacity += plan.PlannedCapacity
		}
	}

	overallEfficiency := 0
	if totalEffectiveCapacity > 0 {
		overallEfficiency = roundPercent(totalAssignedSeats, totalEffectiveCapacity)
	}

	result := make([]models.RoomUtilization, 0, len(breakdown))
	for _, key := range breakdownOrder {
		record := breakdown[key]
		utilization := 0
		if record.capacity > 0 {
			utilization = roundPercent(record.totalStudents, record.capacity)
		}
		if utilization > 100 {
			utilization = 100
		}
		result = append(result, models.RoomUtilization{
			Room:          record.room,
			TotalStudents: record.totalStudents,
			Sessions:      record.sessions,
			Utilization:   utilization,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Utilization > result[j].Utilization
	})

	return models.Analytics{
		TotalExams:        totalCourseSessions,
		TotalRoomsUsed:    len(breakdown),
		TotalStudents:     totalStudents,
		OverallEfficiency: overallEfficiency,
		RoomBreakdown:     result,
	}
}

func roundPercent(numerator, denominator int) int {
	return int(float64(numerator)/float64(denominator)*100 + 0.5)
}
