package models

import "math"

// Room describes a physical exam venue. MaxWithSpacing is the seat count once
// anti-cheating spacing is applied; capacity is the raw physical seat count.
type Room struct {
	ID             string `json:"roomId" csv:"room_id"`
	Name           string `json:"roomName" csv:"room_name"`
	Capacity       int    `json:"capacity" csv:"capacity"`
	Layout         string `json:"layout,omitempty" csv:"layout"`
	Rows           int    `json:"rows,omitempty" csv:"rows"`
	Building       string `json:"building,omitempty" csv:"building"`
	MaxWithSpacing int    `json:"maxWithSpacing,omitempty" csv:"max_with_spacing"`
}

// Key returns the identifier used to reference the room in plans and
// analytics, falling back to the display name when no id was supplied.
func (r Room) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// DisplayName returns the human-facing room label for charts and exports.
func (r Room) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// EffectiveCapacity scales the spaced seat count by the seating-density
// efficiency factor, floor-rounded. Falls back to raw capacity when the
// dataset carries no spacing figure. Never exceeds Capacity.
func (r Room) EffectiveCapacity(efficiency float64) int {
	base := r.MaxWithSpacing
	if base <= 0 {
		base = r.Capacity
	}
	effective := int(math.Floor(float64(base) * efficiency))
	if effective < 0 {
		return 0
	}
	if effective > r.Capacity {
		return r.Capacity
	}
	return effective
}

// RoomSummary describes a loaded room dataset.
type RoomSummary struct {
	TotalRooms    int `json:"totalRooms"`
	TotalCapacity int `json:"totalCapacity"`
}
