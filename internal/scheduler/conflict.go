package scheduler

// ConflictGraph is an undirected graph over course codes. An edge means at
// least one student is enrolled in both courses, so they must never share an
// exam slot. The graph is symmetric and has no self-loops.
type ConflictGraph map[string]map[string]struct{}

// BuildConflictGraph derives the graph from the enrollment index. Every
// selected course gets an entry even when it conflicts with nothing.
func BuildConflictGraph(index *EnrollmentIndex) ConflictGraph {
	graph := make(ConflictGraph, len(index.Courses))
	for _, course := range index.Courses {
		graph[course.Code] = make(map[string]struct{})
	}

	for _, courses := range index.StudentCourses {
		for i := 0; i < len(courses); i++ {
			for j := i + 1; j < len(courses); j++ {
				a, b := courses[i], courses[j]
				if a == b {
					continue
				}
				if graph[a] == nil {
					graph[a] = make(map[string]struct{})
				}
				if graph[b] == nil {
					graph[b] = make(map[string]struct{})
				}
				graph[a][b] = struct{}{}
				graph[b][a] = struct{}{}
			}
		}
	}

	return graph
}

// Degree returns the number of courses conflicting with code.
func (g ConflictGraph) Degree(code string) int {
	return len(g[code])
}

// Conflicts reports whether two courses share at least one student.
func (g ConflictGraph) Conflicts(a, b string) bool {
	_, ok := g[a][b]
	return ok
}
