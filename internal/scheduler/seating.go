package scheduler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hallplan/exam-scheduler-api/internal/models"
)

const rowLabels = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SeatingConfig tunes the local-search refinement pass.
type SeatingConfig struct {
	AnnealingIterations int
	InitialTemperature  float64
	CoolingRate         float64
}

func (c SeatingConfig) withDefaults() SeatingConfig {
	if c.AnnealingIterations <= 0 {
		c.AnnealingIterations = 200
	}
	if c.InitialTemperature <= 0 {
		c.InitialTemperature = 1.0
	}
	if c.CoolingRate <= 0 || c.CoolingRate >= 1 {
		c.CoolingRate = 0.98
	}
	return c
}

// GenerateSeatGrid lays out a near-square grid for the room: rows is roughly
// sqrt of 80% of capacity, columns whatever covers the rest. This is a
// printable chart shape, not the room's literal furniture layout.
func GenerateSeatGrid(room models.Room) (seats []models.Seat, rows, cols int) {
	capacity := room.Capacity
	if capacity <= 0 {
		return nil, 0, 0
	}
	rows = int(math.Ceil(math.Sqrt(float64(capacity) * 0.8)))
	if rows < 1 {
		rows = 1
	}
	cols = (capacity + rows - 1) / rows

	seats = make([]models.Seat, 0, capacity)
	for row := 0; row < rows && len(seats) < capacity; row++ {
		for col := 0; col < cols && len(seats) < capacity; col++ {
			seats = append(seats, models.Seat{
				ID:  seatLabel(row, col),
				Row: row,
				Col: col,
			})
		}
	}
	return seats, rows, cols
}

func seatLabel(row, col int) string {
	if row < len(rowLabels) {
		return fmt.Sprintf("%c%d", rowLabels[row], col+1)
	}
	// Rooms beyond 26 rows get a two-letter prefix, spreadsheet style.
	first := rowLabels[row/len(rowLabels)-1]
	second := rowLabels[row%len(rowLabels)]
	return fmt.Sprintf("%c%c%d", first, second, col+1)
}

// findOptimalSeat picks the first free seat with no same-course neighbor,
// falling back to a fully isolated seat, then to any free seat.
func findOptimalSeat(seats []models.Seat, courseCode string) int {
	fallbackIsolated := -1
	fallbackAny := -1
	for i := range seats {
		if seats[i].Occupied {
			continue
		}
		if fallbackAny == -1 {
			fallbackAny = i
		}
		sameCourse := false
		anyNeighbor := false
		for _, j := range adjacentSeats(seats, seats[i].Row, seats[i].Col) {
			if !seats[j].Occupied {
				continue
			}
			anyNeighbor = true
			if seats[j].CourseCode == courseCode {
				sameCourse = true
				break
			}
		}
		if !sameCourse {
			return i
		}
		if !anyNeighbor && fallbackIsolated == -1 {
			fallbackIsolated = i
		}
	}
	if fallbackIsolated != -1 {
		return fallbackIsolated
	}
	return fallbackAny
}

// adjacentSeats returns indices of the 8-connected neighbors of (row, col).
func adjacentSeats(seats []models.Seat, row, col int) []int {
	var adjacent []int
	for i := range seats {
		dr := seats[i].Row - row
		dc := seats[i].Col - col
		if dr == 0 && dc == 0 {
			continue
		}
		if dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1 {
			adjacent = append(adjacent, i)
		}
	}
	return adjacent
}

// AdjacencyConflicts counts occupied neighbor pairs sharing a course, with
// each unordered pair contributing twice (once per endpoint). It is the
// objective the annealer minimises.
func AdjacencyConflicts(seats []models.Seat) int {
	conflicts := 0
	for i := range seats {
		if !seats[i].Occupied {
			continue
		}
		for _, j := range adjacentSeats(seats, seats[i].Row, seats[i].Col) {
			if seats[j].Occupied && seats[j].CourseCode == seats[i].CourseCode {
				conflicts++
			}
		}
	}
	return conflicts
}

// PlaceStudents seats the given students one by one with findOptimalSeat and
// refines the result with simulated annealing. The returned grid's conflict
// count never exceeds the greedy placement's: the annealer remembers the best
// layout it visited and restores it at the end.
func PlaceStudents(room models.Room, students []models.EnrollmentRecord, cfg SeatingConfig, rng *rand.Rand) ([]models.Seat, int, int) {
	cfg = cfg.withDefaults()
	seats, rows, cols := GenerateSeatGrid(room)
	if len(seats) == 0 {
		return nil, 0, 0
	}

	limit := len(students)
	if limit > len(seats) {
		limit = len(seats)
	}
	for i := 0; i < limit; i++ {
		student := students[i]
		idx := findOptimalSeat(seats, student.CourseCode)
		if idx < 0 {
			break
		}
		record := student
		seats[idx].Occupied = true
		seats[idx].Student = &record
		seats[idx].CourseCode = student.CourseCode
	}

	annealSeating(seats, cfg, rng)
	return seats, rows, cols
}

// annealSeating runs a fixed-budget simulated annealing pass over random
// occupied-seat swaps with Metropolis acceptance and geometric cooling.
func annealSeating(seats []models.Seat, cfg SeatingConfig, rng *rand.Rand) {
	occupied := make([]int, 0, len(seats))
	for i := range seats {
		if seats[i].Occupied {
			occupied = append(occupied, i)
		}
	}
	if len(occupied) < 2 || rng == nil {
		return
	}

	swap := func(a, b int) {
		seats[a].Student, seats[b].Student = seats[b].Student, seats[a].Student
		seats[a].CourseCode, seats[b].CourseCode = seats[b].CourseCode, seats[a].CourseCode
	}

	snapshot := func() []models.Seat {
		best := make([]models.Seat, len(seats))
		copy(best, seats)
		return best
	}

	currentScore := AdjacencyConflicts(seats)
	bestScore := currentScore
	best := snapshot()

	temperature := cfg.InitialTemperature
	for it := 0; it < cfg.AnnealingIterations; it++ {
		temperature *= cfg.CoolingRate
		i := occupied[rng.Intn(len(occupied))]
		j := occupied[rng.Intn(len(occupied))]
		if i == j {
			continue
		}
		swap(i, j)
		newScore := AdjacencyConflicts(seats)
		delta := float64(newScore - currentScore)
		if delta <= 0 || rng.Float64() < math.Exp(-delta/math.Max(0.001, temperature)) {
			currentScore = newScore
			if currentScore < bestScore {
				bestScore = currentScore
				best = snapshot()
			}
		} else {
			swap(i, j)
		}
	}

	if currentScore > bestScore {
		copy(seats, best)
	}
}

// BuildSeating walks the schedule in slot order and fills a seat grid for
// every room plan. A course spanning several rooms (or overflowing into a
// later slot) draws its students from the roster through a single cursor, so
// nobody is seated twice and nobody is dropped.
func BuildSeating(schedule []models.SlotSchedule, index *EnrollmentIndex, cfg SeatingConfig, rng *rand.Rand) []models.RoomSeating {
	cursors := make(map[string]int, len(index.Rosters))
	var seating []models.RoomSeating

	for _, slot := range schedule {
		for _, roomPlan := range slot.Rooms {
			var students []models.EnrollmentRecord
			for _, allocation := range roomPlan.Allocations {
				roster := index.Rosters[allocation.Course.Code]
				cursor := cursors[allocation.Course.Code]
				end := cursor + allocation.Students
				if end > len(roster) {
					end = len(roster)
				}
				students = append(students, roster[cursor:end]...)
				cursors[allocation.Course.Code] = end
			}
			if len(students) == 0 {
				continue
			}

			seats, rows, cols := PlaceStudents(roomPlan.Room, students, cfg, rng)
			seating = append(seating, models.RoomSeating{
				SlotID:   slot.Slot.ID,
				Room:     roomPlan.Room,
				Rows:     rows,
				Cols:     cols,
				Seats:    seats,
				Students: students,
			})
		}
	}
	return seating
}
