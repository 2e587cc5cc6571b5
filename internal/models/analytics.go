package models

// RoomUtilization is the per-room breakdown of the analytics summary.
type RoomUtilization struct {
	Room          Room `json:"room"`
	TotalStudents int  `json:"totalStudents"`
	Sessions      int  `json:"sessions"`
	Utilization   int  `json:"utilization"`
}

// Analytics is derived read-only from a finished schedule; it feeds nothing
// back into the allocators.
type Analytics struct {
	TotalExams        int               `json:"totalExams"`
	TotalRoomsUsed    int               `json:"totalRoomsUsed"`
	TotalStudents     int               `json:"totalStudents"`
	OverallEfficiency int               `json:"overallEfficiency"`
	RoomBreakdown     []RoomUtilization `json:"roomBreakdown"`
}
