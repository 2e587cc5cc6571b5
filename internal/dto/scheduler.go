package dto

import "github.com/hallplan/exam-scheduler-api/internal/models"

// GenerateScheduleRequest instructs the engine to build a timetable from the
// stored datasets.
type GenerateScheduleRequest struct {
	EnrollmentDatasetID string   `json:"enrollmentDatasetId" validate:"required"`
	RoomDatasetID       string   `json:"roomDatasetId" validate:"required"`
	SelectedCourses     []string `json:"selectedCourses" validate:"required,min=1,dive,required"`
	StartDate           string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate             string   `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	SlotsPerDay         int      `json:"slotsPerDay" validate:"omitempty,min=1,max=8"`
	SlotDurationHours   float64  `json:"slotDurationHours" validate:"omitempty,gt=0,lte=12"`
	Efficiency          float64  `json:"efficiency" validate:"omitempty,gte=0.5,lte=1"`
	Seed                int64    `json:"seed"`
}

// SlotView is the wire form of one exam slot.
type SlotView struct {
	ID            string `json:"id"`
	Sequence      int    `json:"sequence"`
	Date          string `json:"date"`
	SlotIndex     int    `json:"slotIndex"`
	TimeLabel     string `json:"timeLabel,omitempty"`
	OutsideWindow bool   `json:"outsideWindow,omitempty"`
}

// RoomShareView is a course's seat count inside one room.
type RoomShareView struct {
	Room     string `json:"room"`
	Students int    `json:"students"`
}

// CourseScheduleView summarises one course's placement within a slot.
type CourseScheduleView struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Semester      string          `json:"semester"`
	TotalAssigned int             `json:"totalAssigned"`
	Rooms         []RoomShareView `json:"rooms"`
}

// RoomPlanView summarises one room's load within a slot.
type RoomPlanView struct {
	Room            string          `json:"room"`
	PlannedCapacity int             `json:"plannedCapacity"`
	Assigned        int             `json:"assigned"`
	Remaining       int             `json:"remaining"`
	Allocations     []RoomShareView `json:"allocations"`
}

// SlotScheduleView is one slot's full placement.
type SlotScheduleView struct {
	Slot     SlotView             `json:"slot"`
	Rooms    []RoomPlanView       `json:"rooms"`
	Courses  []CourseScheduleView `json:"courses"`
	Overflow bool                 `json:"overflow,omitempty"`
}

// GenerateScheduleResponse returns the generated timetable.
type GenerateScheduleResponse struct {
	ScheduleID string             `json:"scheduleId"`
	Slots      []SlotView         `json:"slots"`
	Schedule   []SlotScheduleView `json:"schedule"`
	Analytics  AnalyticsView      `json:"analytics"`
	Stats      ScheduleStatsView  `json:"stats"`
	ExpiresAt  string             `json:"expiresAt"`
}

// ScheduleStatsView carries run counters for clients and dashboards.
type ScheduleStatsView struct {
	CoursesScheduled int   `json:"coursesScheduled"`
	SlotsGenerated   int   `json:"slotsGenerated"`
	OverflowSlots    int   `json:"overflowSlots"`
	SeatingConflicts int   `json:"seatingConflicts"`
	ElapsedMillis    int64 `json:"elapsedMillis"`
}

// AnalyticsView is the wire form of schedule analytics.
type AnalyticsView struct {
	TotalExams        int                   `json:"totalExams"`
	TotalRoomsUsed    int                   `json:"totalRoomsUsed"`
	TotalStudents     int                   `json:"totalStudents"`
	OverallEfficiency int                   `json:"overallEfficiency"`
	RoomBreakdown     []RoomUtilizationView `json:"roomBreakdown"`
}

// RoomUtilizationView is one room's aggregated usage across all slots.
type RoomUtilizationView struct {
	Room          string `json:"room"`
	TotalStudents int    `json:"totalStudents"`
	Sessions      int    `json:"sessions"`
	Utilization   int    `json:"utilization"`
}

// SeatView is one seat in a printable chart.
type SeatView struct {
	ID         string `json:"id"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Occupied   bool   `json:"occupied"`
	Student    string `json:"student,omitempty"`
	RollNumber string `json:"rollNumber,omitempty"`
	Course     string `json:"course,omitempty"`
}

// RoomSeatingView is one room's seat chart within a slot.
type RoomSeatingView struct {
	SlotID string     `json:"slotId"`
	Room   string     `json:"room"`
	Rows   int        `json:"rows"`
	Cols   int        `json:"cols"`
	Seats  []SeatView `json:"seats"`
}

// SeatingExportStudent is one row of the flat seating export.
type SeatingExportStudent struct {
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	Course     string `json:"course"`
	Seat       string `json:"seat"`
}

// SeatingExportRoom groups the flat export by room, one entry per room per
// slot, matching the format downstream print tooling consumes.
type SeatingExportRoom struct {
	Room     string                 `json:"room"`
	Students []SeatingExportStudent `json:"students"`
}

// NewSlotView converts a model slot.
func NewSlotView(slot models.Slot) SlotView {
	return SlotView{
		ID:            slot.ID,
		Sequence:      slot.Sequence,
		Date:          slot.Date.Format("2006-01-02"),
		SlotIndex:     slot.SlotIndex,
		TimeLabel:     slot.TimeLabel,
		OutsideWindow: slot.OutsideWindow,
	}
}

// NewSlotScheduleView converts one slot's placement.
func NewSlotScheduleView(s models.SlotSchedule) SlotScheduleView {
	view := SlotScheduleView{
		Slot:     NewSlotView(s.Slot),
		Overflow: s.Overflow,
	}
	for _, plan := range s.Rooms {
		planView := RoomPlanView{
			Room:            plan.Room.DisplayName(),
			PlannedCapacity: plan.PlannedCapacity,
			Assigned:        plan.Assigned,
			Remaining:       plan.Remaining,
		}
		for _, alloc := range plan.Allocations {
			planView.Allocations = append(planView.Allocations, RoomShareView{
				Room:     alloc.Course.Code,
				Students: alloc.Students,
			})
		}
		view.Rooms = append(view.Rooms, planView)
	}
	for _, course := range s.Courses {
		courseView := CourseScheduleView{
			Code:          course.Course.Code,
			Name:          course.Course.Name,
			Semester:      course.Course.Semester,
			TotalAssigned: course.TotalAssigned,
		}
		for _, share := range course.Rooms {
			courseView.Rooms = append(courseView.Rooms, RoomShareView{
				Room:     share.Room.DisplayName(),
				Students: share.Students,
			})
		}
		view.Courses = append(view.Courses, courseView)
	}
	return view
}

// NewAnalyticsView converts analytics.
func NewAnalyticsView(a models.Analytics) AnalyticsView {
	view := AnalyticsView{
		TotalExams:        a.TotalExams,
		TotalRoomsUsed:    a.TotalRoomsUsed,
		TotalStudents:     a.TotalStudents,
		OverallEfficiency: a.OverallEfficiency,
	}
	for _, item := range a.RoomBreakdown {
		view.RoomBreakdown = append(view.RoomBreakdown, RoomUtilizationView{
			Room:          item.Room.DisplayName(),
			TotalStudents: item.TotalStudents,
			Sessions:      item.Sessions,
			Utilization:   item.Utilization,
		})
	}
	return view
}

// NewRoomSeatingView converts one room's seat chart.
func NewRoomSeatingView(rs models.RoomSeating) RoomSeatingView {
	view := RoomSeatingView{
		SlotID: rs.SlotID,
		Room:   rs.Room.DisplayName(),
		Rows:   rs.Rows,
		Cols:   rs.Cols,
	}
	for _, seat := range rs.Seats {
		seatView := SeatView{
			ID:       seat.ID,
			Row:      seat.Row,
			Col:      seat.Col,
			Occupied: seat.Occupied,
			Course:   seat.CourseCode,
		}
		if seat.Student != nil {
			seatView.Student = seat.Student.StudentName
			seatView.RollNumber = seat.Student.RollNumber
		}
		view.Seats = append(view.Seats, seatView)
	}
	return view
}
