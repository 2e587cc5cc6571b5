package scheduler

import (
	"sort"

	"github.com/hallplan/exam-scheduler-api/internal/models"
)

// EnrollmentIndex holds the per-student and per-course views of the raw
// enrollment rows, restricted to the selected course codes. It is built once
// per run and never mutated afterwards.
type EnrollmentIndex struct {
	// StudentCourses maps roll number to the selected courses the student
	// sits, in record order.
	StudentCourses map[string][]string
	// Rosters maps course code to its students in record order. A student
	// appears once per enrolled course.
	Rosters map[string][]models.EnrollmentRecord
	// Courses are the selected courses aggregated from the rows, sorted by
	// code for deterministic iteration.
	Courses []models.Course
}

// BuildEnrollmentIndex groups enrollment rows by student and by course.
// Courses in selected but absent from records still get empty roster entries
// so downstream stages see every selected course.
func BuildEnrollmentIndex(records []models.EnrollmentRecord, selected []string) *EnrollmentIndex {
	selectedSet := make(map[string]struct{}, len(selected))
	for _, code := range selected {
		selectedSet[code] = struct{}{}
	}

	index := &EnrollmentIndex{
		StudentCourses: make(map[string][]string),
		Rosters:        make(map[string][]models.EnrollmentRecord, len(selected)),
	}
	for code := range selectedSet {
		index.Rosters[code] = nil
	}

	type courseAgg struct {
		name     string
		semester string
		students int
	}
	aggregates := make(map[string]*courseAgg, len(selected))

	for _, record := range records {
		if _, ok := selectedSet[record.CourseCode]; !ok {
			continue
		}
		index.StudentCourses[record.RollNumber] = append(index.StudentCourses[record.RollNumber], record.CourseCode)
		index.Rosters[record.CourseCode] = append(index.Rosters[record.CourseCode], record)

		agg := aggregates[record.CourseCode]
		if agg == nil {
			agg = &courseAgg{name: record.CourseName, semester: record.SessionLabel}
			aggregates[record.CourseCode] = agg
		}
		agg.students++
	}

	index.Courses = make([]models.Course, 0, len(aggregates))
	for code, agg := range aggregates {
		index.Courses = append(index.Courses, models.Course{
			Code:         code,
			Name:         agg.name,
			Semester:     agg.semester,
			StudentCount: agg.students,
		})
	}
	sort.Slice(index.Courses, func(i, j int) bool {
		return index.Courses[i].Code < index.Courses[j].Code
	})

	return index
}

// Course returns the aggregated course for a code, if present.
func (idx *EnrollmentIndex) Course(code string) (models.Course, bool) {
	for _, course := range idx.Courses {
		if course.Code == code {
			return course, true
		}
	}
	return models.Course{}, false
}
