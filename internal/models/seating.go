package models

// Seat is one position in a generated room grid. Row and Col are zero-based;
// ID is the human label ("A1", "B7") used on printed charts.
type Seat struct {
	ID         string            `json:"id"`
	Row        int               `json:"row"`
	Col        int               `json:"col"`
	Occupied   bool              `json:"occupied"`
	Student    *EnrollmentRecord `json:"student,omitempty"`
	CourseCode string            `json:"courseCode,omitempty"`
}

// RoomSeating is the seat-level layout for one room in one slot.
type RoomSeating struct {
	SlotID   string             `json:"slotId"`
	Room     Room               `json:"room"`
	Rows     int                `json:"rows"`
	Cols     int                `json:"cols"`
	Seats    []Seat             `json:"seats"`
	Students []EnrollmentRecord `json:"students"`
}

// SeatedCount returns the number of occupied seats.
func (r RoomSeating) SeatedCount() int {
	count := 0
	for _, seat := range r.Seats {
		if seat.Occupied {
			count++
		}
	}
	return count
}
