package scheduler

import (
	"math/rand"
	"sort"
	"time"

	"github.com/hallplan/exam-scheduler-api/internal/models"
	appErrors "github.com/hallplan/exam-scheduler-api/pkg/errors"
)

// Request is the immutable snapshot one scheduling run works from. The engine
// holds no state across runs; everything is recomputed from the request.
type Request struct {
	Enrollment []models.EnrollmentRecord
	Rooms      []models.Room
	Selected   []string

	StartDate         time.Time
	EndDate           time.Time // zero value: open-ended window
	SlotsPerDay       int
	SlotDurationHours float64
	Efficiency        float64

	// Seed drives all randomness in the run (seat refinement). Zero picks a
	// wall-clock seed; fix it for reproducible output.
	Seed int64

	// Progress, when set, receives coarse stage notifications. It must not
	// block; the engine calls it synchronously.
	Progress func(stage string, fraction float64)
}

// Result bundles everything one run produces.
type Result struct {
	Slots     []models.Slot         `json:"slots"`
	Schedule  []models.SlotSchedule `json:"schedule"`
	Seating   []models.RoomSeating  `json:"seating"`
	Analytics models.Analytics      `json:"analytics"`
	Stats     Stats                 `json:"stats"`
	Courses   []models.Course       `json:"courses"`
	Conflicts map[string][]string   `json:"conflicts"`
}

// Stats carries run-level counters for logging and metrics.
type Stats struct {
	CoursesScheduled int           `json:"coursesScheduled"`
	SlotsGenerated   int           `json:"slotsGenerated"`
	OverflowSlots    int           `json:"overflowSlots"`
	SeatingConflicts int           `json:"seatingConflicts"`
	Elapsed          time.Duration `json:"-"`
	ElapsedMillis    int64         `json:"elapsedMillis"`
}

// Config fixes the engine's tunables for its lifetime.
type Config struct {
	DefaultSlotsPerDay   int
	SpacingWindow        int
	BlockConflictingDays bool
	AnnealingIterations  int
}

// Engine runs the scheduling pipeline: enrollment index, conflict graph,
// slot coloring, room packing, seat placement, analytics.
type Engine struct {
	cfg Config
}

// New constructs an engine.
func New(cfg Config) *Engine {
	if cfg.DefaultSlotsPerDay <= 0 {
		cfg.DefaultSlotsPerDay = 2
	}
	if cfg.SpacingWindow <= 0 {
		cfg.SpacingWindow = 3
	}
	if cfg.AnnealingIterations <= 0 {
		cfg.AnnealingIterations = 200
	}
	return &Engine{cfg: cfg}
}

// Run executes one scheduling pass. The only hard failure is an empty course
// selection; capacity shortfalls degrade into overflow slots instead.
func (e *Engine) Run(req Request) (*Result, error) {
	if len(req.Selected) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoCoursesSelected, "")
	}

	started := time.Now()
	progress := req.Progress
	if progress == nil {
		progress = func(string, float64) {}
	}

	efficiency := clampEfficiency(req.Efficiency)
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	progress("index", 0.05)
	index := BuildEnrollmentIndex(req.Enrollment, req.Selected)
	if len(index.Courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoCoursesSelected, "selected courses have no enrollment records")
	}

	progress("conflicts", 0.15)
	graph := BuildConflictGraph(index)

	progress("slots", 0.25)
	plan := NewSlotPlan(req.StartDate, req.EndDate, req.SlotsPerDay, e.cfg.DefaultSlotsPerDay)
	if req.SlotDurationHours > 0 {
		plan.DurationHours = req.SlotDurationHours
	}
	slots := plan.Generate()
	initialSlots := len(slots)

	totalEffective := 0
	for _, room := range req.Rooms {
		totalEffective += room.EffectiveCapacity(efficiency)
	}

	progress("allocate", 0.40)
	allocation := AllocateSlots(index.Courses, graph, plan, slots, AllocatorConfig{
		SpacingWindow:          e.cfg.SpacingWindow,
		BlockConflictingDays:   e.cfg.BlockConflictingDays,
		TotalEffectiveCapacity: totalEffective,
	})

	progress("rooms", 0.60)
	courseByCode := make(map[string]models.Course, len(index.Courses))
	for _, course := range index.Courses {
		courseByCode[course.Code] = course
	}
	schedule, finalSlots := BuildSchedule(allocation, plan, courseByCode, req.Rooms, efficiency)

	progress("seating", 0.80)
	seating := BuildSeating(schedule, index, SeatingConfig{
		AnnealingIterations: e.cfg.AnnealingIterations,
	}, rng)

	seatingConflicts := 0
	for _, room := range seating {
		seatingConflicts += AdjacencyConflicts(room.Seats)
	}

	progress("analytics", 0.95)
	analytics := ComputeAnalytics(schedule)

	conflicts := make(map[string][]string, len(graph))
	for code, neighbors := range graph {
		list := make([]string, 0, len(neighbors))
		for neighbor := range neighbors {
			list = append(list, neighbor)
		}
		sort.Strings(list)
		conflicts[code] = list
	}

	elapsed := time.Since(started)
	progress("done", 1.0)

	return &Result{
		Slots:     finalSlots,
		Schedule:  schedule,
		Seating:   seating,
		Analytics: analytics,
		Courses:   index.Courses,
		Conflicts: conflicts,
		Stats: Stats{
			CoursesScheduled: len(index.Courses),
			SlotsGenerated:   len(finalSlots),
			OverflowSlots:    len(finalSlots) - initialSlots,
			SeatingConflicts: seatingConflicts,
			Elapsed:          elapsed,
			ElapsedMillis:    elapsed.Milliseconds(),
		},
	}, nil
}

func clampEfficiency(efficiency float64) float64 {
	if efficiency == 0 {
		return 0.9
	}
	if efficiency < 0.5 {
		return 0.5
	}
	if efficiency > 1 {
		return 1
	}
	return efficiency
}
