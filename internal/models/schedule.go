package models

import "time"

// Slot is an atomic (date, time-of-day) exam period. Sequence is 1-based and
// totally ordered; OutsideWindow marks slots appended past the requested end
// date, which is informational and never blocks assignment.
type Slot struct {
	ID            string    `json:"id"`
	Sequence      int       `json:"sequence"`
	Date          time.Time `json:"date"`
	SlotIndex     int       `json:"slotIndex"`
	TimeLabel     string    `json:"timeLabel,omitempty"`
	OutsideWindow bool      `json:"outsideWindow"`
}

// DayIndex returns the zero-based calendar day this slot falls on.
func (s Slot) DayIndex(slotsPerDay int) int {
	if slotsPerDay <= 0 {
		return 0
	}
	return (s.Sequence - 1) / slotsPerDay
}

// RoomAllocation records how many students of one course sit in one room.
type RoomAllocation struct {
	Course   Course `json:"course"`
	Students int    `json:"students"`
}

// RoomPlan captures a single room's usage within one slot.
// Invariant: Assigned = PlannedCapacity - Remaining = sum of allocations.
type RoomPlan struct {
	Room            Room             `json:"room"`
	PlannedCapacity int              `json:"plannedCapacity"`
	Assigned        int              `json:"assigned"`
	Remaining       int              `json:"remaining"`
	Allocations     []RoomAllocation `json:"allocations"`
}

// CourseRoomShare is one room's contribution to a course's seating.
type CourseRoomShare struct {
	Room     Room `json:"room"`
	Students int  `json:"students"`
}

// CourseSummary aggregates a course's placement across the rooms of a slot.
type CourseSummary struct {
	Course        Course            `json:"course"`
	TotalAssigned int               `json:"totalAssigned"`
	Rooms         []CourseRoomShare `json:"rooms"`
}

// SlotSchedule is the complete plan for one slot: which rooms are used, how
// each course is spread over them, and whether demand overflowed into a
// later slot.
type SlotSchedule struct {
	Slot     Slot            `json:"slot"`
	Rooms    []RoomPlan      `json:"rooms"`
	Courses  []CourseSummary `json:"courses"`
	Overflow bool            `json:"overflow"`
}
