package scheduler

import (
	"sort"

	"github.com/hallplan/exam-scheduler-api/internal/models"
)

// AllocatorConfig tunes the slot allocator's soft constraints. The hard
// constraint (conflicting courses never share a slot) is not configurable.
type AllocatorConfig struct {
	// SpacingWindow is the sequence distance within which back-to-back exams
	// of the same semester are penalised.
	SpacingWindow int
	// BlockConflictingDays excludes the whole calendar day once a conflicting
	// course is placed anywhere on it. Stricter than plain graph coloring;
	// an intentional anti-clustering policy.
	BlockConflictingDays bool
	// TotalEffectiveCapacity is the summed effective capacity of all rooms,
	// used to normalise per-slot load in the score.
	TotalEffectiveCapacity int
}

// SlotAllocation is the outcome of the coloring pass: every course is mapped
// to exactly one slot, and the slot sequence may have grown via overflow.
type SlotAllocation struct {
	Assignments map[string]string // course code -> slot id
	Slots       []models.Slot
}

type slotUsage struct {
	totalStudents int
	courses       map[string]struct{}
	semesterLoad  map[string]int
}

// AllocateSlots assigns every course to a slot with a greedy, conflict-aware
// heuristic. Courses are placed in (conflict degree desc, student count desc,
// code asc) order; each candidate slot is scored and the cheapest wins. When
// no legal slot exists a fresh overflow slot is appended, so the allocator
// never fails to place a course.
func AllocateSlots(courses []models.Course, graph ConflictGraph, plan SlotPlan, slots []models.Slot, cfg AllocatorConfig) SlotAllocation {
	if cfg.SpacingWindow <= 0 {
		cfg.SpacingWindow = 3
	}
	if cfg.TotalEffectiveCapacity <= 0 {
		cfg.TotalEffectiveCapacity = 1
	}

	ordered := make([]models.Course, len(courses))
	copy(ordered, courses)
	sort.Slice(ordered, func(i, j int) bool {
		degreeI, degreeJ := graph.Degree(ordered[i].Code), graph.Degree(ordered[j].Code)
		if degreeI != degreeJ {
			return degreeI > degreeJ
		}
		if ordered[i].StudentCount != ordered[j].StudentCount {
			return ordered[i].StudentCount > ordered[j].StudentCount
		}
		return ordered[i].Code < ordered[j].Code
	})

	assignments := make(map[string]string, len(ordered))
	usage := make(map[string]*slotUsage)
	slotByID := make(map[string]models.Slot, len(slots))
	for _, slot := range slots {
		slotByID[slot.ID] = slot
	}
	semesterLastSequence := make(map[string]int)

	for _, course := range ordered {
		blockedSlots := make(map[string]struct{})
		blockedDays := make(map[int]struct{})
		for conflict := range graph[course.Code] {
			slotID, ok := assignments[conflict]
			if !ok {
				continue
			}
			blockedSlots[slotID] = struct{}{}
			if slot, ok := slotByID[slotID]; ok {
				blockedDays[slot.DayIndex(plan.SlotsPerDay)] = struct{}{}
			}
		}

		candidates := make([]models.Slot, 0, len(slots))
		for _, slot := range slots {
			if _, blocked := blockedSlots[slot.ID]; blocked {
				continue
			}
			if cfg.BlockConflictingDays {
				if _, blocked := blockedDays[slot.DayIndex(plan.SlotsPerDay)]; blocked {
					continue
				}
			}
			candidates = append(candidates, slot)
		}
		if len(candidates) == 0 {
			var overflow models.Slot
			overflow, slots = plan.CreateOverflow(slots)
			slotByID[overflow.ID] = overflow
			candidates = []models.Slot{overflow}
		}

		semester := semesterKey(course)
		sort.SliceStable(candidates, func(i, j int) bool {
			return slotScore(candidates[i], semester, usage, semesterLastSequence, cfg) <
				slotScore(candidates[j], semester, usage, semesterLastSequence, cfg)
		})

		chosen := candidates[0]
		assignments[course.Code] = chosen.ID

		u := usage[chosen.ID]
		if u == nil {
			u = &slotUsage{courses: make(map[string]struct{}), semesterLoad: make(map[string]int)}
			usage[chosen.ID] = u
		}
		u.totalStudents += course.StudentCount
		u.courses[course.Code] = struct{}{}
		u.semesterLoad[semester]++
		semesterLastSequence[semester] = chosen.Sequence
	}

	return SlotAllocation{Assignments: assignments, Slots: slots}
}

// slotScore ranks a candidate slot for one course: lower is better. Load
// balancing dominates, then same-semester stacking, then semester spacing,
// then a flat penalty for slots past the requested window, with a tiny
// earlier-is-better tie break.
func slotScore(slot models.Slot, semester string, usage map[string]*slotUsage, semesterLastSequence map[string]int, cfg AllocatorConfig) float64 {
	loadRatio := 0.0
	sameSemester := 0
	if u := usage[slot.ID]; u != nil {
		loadRatio = float64(u.totalStudents) / float64(cfg.TotalEffectiveCapacity)
		sameSemester = u.semesterLoad[semester]
	}

	spacingPenalty := 0.0
	if last, ok := semesterLastSequence[semester]; ok {
		if gap := slot.Sequence - last; gap < cfg.SpacingWindow {
			spacingPenalty = float64(cfg.SpacingWindow - gap)
			if spacingPenalty < 0 {
				spacingPenalty = 0
			}
		}
	}

	outsidePenalty := 0.0
	if slot.OutsideWindow {
		outsidePenalty = 5
	}

	return loadRatio*4 + float64(sameSemester)*2 + spacingPenalty + outsidePenalty + float64(slot.Sequence)*0.02
}

func semesterKey(course models.Course) string {
	if course.Semester == "" {
		return "UNKNOWN"
	}
	return course.Semester
}
