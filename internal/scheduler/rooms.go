package scheduler

import (
	"sort"

	"github.com/hallplan/exam-scheduler-api/internal/models"
)

// OverflowDemand is the unseated remainder of a course after every room in
// its slot is exhausted. It re-enters allocation in a fresh overflow slot.
type OverflowDemand struct {
	Course    models.Course
	Remaining int
}

// RoomAllocationResult is the bin-packing outcome for a single slot.
type RoomAllocationResult struct {
	RoomPlans       []models.RoomPlan
	CourseSummaries []models.CourseSummary
	Overflow        []OverflowDemand
}

type roomState struct {
	room        models.Room
	capacity    int
	remaining   int
	allocations []models.RoomAllocation
	byCourse    map[string]int // course code -> index into allocations
}

type courseState struct {
	course    models.Course
	remaining int
}

// AllocateRooms distributes the slot's courses across rooms, largest room
// first. Within a room each pass hands every unsatisfied course a fair share
// of the remaining seats (share = ceil(remaining/active)), with the last
// course of the pass absorbing the leftover so no 1-seat fragments survive.
// Courses may span several rooms; demand that fits nowhere is returned as
// overflow. Active courses iterate by remaining demand descending — that
// order is a documented contract, not an accident.
func AllocateRooms(coursesInSlot []models.Course, rooms []models.Room, efficiency float64) RoomAllocationResult {
	roomStates := make([]*roomState, 0, len(rooms))
	for _, room := range rooms {
		effective := room.EffectiveCapacity(efficiency)
		if effective <= 0 {
			continue
		}
		roomStates = append(roomStates, &roomState{
			room:      room,
			capacity:  effective,
			remaining: effective,
			byCourse:  make(map[string]int),
		})
	}
	sort.SliceStable(roomStates, func(i, j int) bool {
		return roomStates[i].capacity > roomStates[j].capacity
	})

	courseStates := make([]*courseState, 0, len(coursesInSlot))
	for _, course := range coursesInSlot {
		courseStates = append(courseStates, &courseState{course: course, remaining: course.StudentCount})
	}

	summaryOrder := make([]string, 0, len(coursesInSlot))
	summaries := make(map[string]*models.CourseSummary, len(coursesInSlot))

	assign := func(rs *roomState, cs *courseState, count int) {
		idx, ok := rs.byCourse[cs.course.Code]
		if !ok {
			rs.allocations = append(rs.allocations, models.RoomAllocation{Course: cs.course})
			idx = len(rs.allocations) - 1
			rs.byCourse[cs.course.Code] = idx
		}
		rs.allocations[idx].Students += count
		rs.remaining -= count
		cs.remaining -= count

		summary := summaries[cs.course.Code]
		if summary == nil {
			summary = &models.CourseSummary{Course: cs.course}
			summaries[cs.course.Code] = summary
			summaryOrder = append(summaryOrder, cs.course.Code)
		}
		summary.TotalAssigned += count
		for i := range summary.Rooms {
			if summary.Rooms[i].Room.Key() == rs.room.Key() {
				summary.Rooms[i].Students += count
				return
			}
		}
		summary.Rooms = append(summary.Rooms, models.CourseRoomShare{Room: rs.room, Students: count})
	}

	for _, rs := range roomStates {
		if allSatisfied(courseStates) {
			break
		}

		for rs.remaining > 0 {
			active := activeCourses(courseStates)
			if len(active) == 0 {
				break
			}

			share := (rs.remaining + len(active) - 1) / len(active)
			if share < 1 {
				share = 1
			}

			for idx, cs := range active {
				if rs.remaining <= 0 {
					break
				}
				if cs.remaining <= 0 {
					continue
				}
				count := cs.remaining
				if rs.remaining < count {
					count = rs.remaining
				}
				if idx != len(active)-1 && share < count {
					count = share
				}
				if count <= 0 {
					continue
				}
				assign(rs, cs, count)
			}

			if rs.remaining <= 0 {
				break
			}
			// Fast path: a single hungry course takes the rest of the room
			// directly instead of looping share-by-share.
			remainingActive := activeCourses(courseStates)
			if len(remainingActive) == 1 {
				cs := remainingActive[0]
				count := cs.remaining
				if rs.remaining < count {
					count = rs.remaining
				}
				if count <= 0 {
					break
				}
				assign(rs, cs, count)
				break
			}
			if len(remainingActive) == 0 {
				break
			}
		}

		sort.SliceStable(rs.allocations, func(i, j int) bool {
			return rs.allocations[i].Students > rs.allocations[j].Students
		})
	}

	result := RoomAllocationResult{}
	for _, rs := range roomStates {
		if len(rs.allocations) == 0 {
			continue
		}
		result.RoomPlans = append(result.RoomPlans, models.RoomPlan{
			Room:            rs.room,
			PlannedCapacity: rs.capacity,
			Assigned:        rs.capacity - rs.remaining,
			Remaining:       rs.remaining,
			Allocations:     rs.allocations,
		})
	}

	for _, cs := range courseStates {
		if cs.remaining > 0 {
			result.Overflow = append(result.Overflow, OverflowDemand{Course: cs.course, Remaining: cs.remaining})
		}
	}

	for _, code := range summaryOrder {
		summary := summaries[code]
		sort.SliceStable(summary.Rooms, func(i, j int) bool {
			return summary.Rooms[i].Students > summary.Rooms[j].Students
		})
		result.CourseSummaries = append(result.CourseSummaries, *summary)
	}

	return result
}

func allSatisfied(states []*courseState) bool {
	for _, cs := range states {
		if cs.remaining > 0 {
			return false
		}
	}
	return true
}

func activeCourses(states []*courseState) []*courseState {
	active := make([]*courseState, 0, len(states))
	for _, cs := range states {
		if cs.remaining > 0 {
			active = append(active, cs)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].remaining > active[j].remaining
	})
	return active
}

// BuildSchedule walks the slot sequence in order, packs each slot's courses
// into rooms, and reinserts unseated demand into a newly created overflow
// slot. A slot whose demand fits nowhere at all (zero room capacity) is
// reported as overflow without spawning further slots, which bounds the walk.
func BuildSchedule(allocation SlotAllocation, plan SlotPlan, courseByCode map[string]models.Course, rooms []models.Room, efficiency float64) ([]models.SlotSchedule, []models.Slot) {
	slots := allocation.Slots
	slotCourses := make(map[string][]models.Course)
	for code, slotID := range allocation.Assignments {
		course, ok := courseByCode[code]
		if !ok {
			continue
		}
		slotCourses[slotID] = append(slotCourses[slotID], course)
	}
	for _, courses := range slotCourses {
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Code < courses[j].Code
		})
	}

	ordered := make([]models.Slot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	var schedule []models.SlotSchedule
	for i := 0; i < len(ordered); i++ {
		slot := ordered[i]
		courses := slotCourses[slot.ID]
		if len(courses) == 0 {
			continue
		}

		result := AllocateRooms(courses, rooms, efficiency)
		schedule = append(schedule, models.SlotSchedule{
			Slot:     slot,
			Rooms:    result.RoomPlans,
			Courses:  result.CourseSummaries,
			Overflow: len(result.Overflow) > 0,
		})

		if len(result.Overflow) == 0 {
			continue
		}
		if len(result.RoomPlans) == 0 {
			continue
		}

		var overflowSlot models.Slot
		overflowSlot, slots = plan.CreateOverflow(slots)
		carried := make([]models.Course, 0, len(result.Overflow))
		for _, demand := range result.Overflow {
			course := demand.Course
			course.StudentCount = demand.Remaining
			carried = append(carried, course)
		}
		slotCourses[overflowSlot.ID] = append(slotCourses[overflowSlot.ID], carried...)
		ordered = append(ordered, overflowSlot)
	}

	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].Slot.Sequence < schedule[j].Slot.Sequence
	})
	return schedule, slots
}
