package dto

// UploadDatasetResponse summarises an accepted dataset upload.
type UploadDatasetResponse struct {
	DatasetID string           `json:"datasetId"`
	Kind      string           `json:"kind"`
	Records   int              `json:"records"`
	Skipped   int              `json:"skipped"`
	Warnings  []string         `json:"warnings,omitempty"`
	Preview   []map[string]any `json:"preview,omitempty"`
	Summary   map[string]int   `json:"summary,omitempty"`
	ExpiresAt string           `json:"expiresAt"`
}

// GenerateSampleRequest tunes the synthetic dataset generator.
type GenerateSampleRequest struct {
	Students           int   `json:"students" validate:"omitempty,min=1,max=20000"`
	CoursesPerSemester int   `json:"coursesPerSemester" validate:"omitempty,min=1,max=50"`
	Rooms              int   `json:"rooms" validate:"omitempty,min=1,max=200"`
	Seed               int64 `json:"seed"`
}

// DatasetDetailResponse returns a stored dataset's metadata and aggregates.
type DatasetDetailResponse struct {
	DatasetID string          `json:"datasetId"`
	Kind      string          `json:"kind"`
	Records   int             `json:"records"`
	Courses   []CourseSummary `json:"courses,omitempty"`
	Rooms     []RoomSummary   `json:"rooms,omitempty"`
	CreatedAt string          `json:"createdAt"`
	ExpiresAt string          `json:"expiresAt"`
}

// CourseSummary is the selectable-course view of an enrollment dataset.
type CourseSummary struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Semester     string `json:"semester"`
	StudentCount int    `json:"studentCount"`
}

// RoomSummary is the per-room view of a rooms dataset.
type RoomSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Capacity          int    `json:"capacity"`
	MaxWithSpacing    int    `json:"maxWithSpacing,omitempty"`
	Building          string `json:"building,omitempty"`
	EffectiveCapacity int    `json:"effectiveCapacity"`
}
