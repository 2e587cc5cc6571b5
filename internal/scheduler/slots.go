package scheduler

import (
	"fmt"
	"time"

	"github.com/hallplan/exam-scheduler-api/internal/models"
)

// SlotPlan generates and extends the ordered exam slot sequence. Slot dates
// follow per-day indexing arithmetic: slotIndex = (seq-1) mod slotsPerDay,
// dayOffset = (seq-1) / slotsPerDay. The same arithmetic drives overflow
// slots, so generation is a pure function of (start, end, slotsPerDay).
type SlotPlan struct {
	StartDate     time.Time
	EndDate       time.Time // zero value means open-ended window
	SlotsPerDay   int
	DurationHours float64
}

// NewSlotPlan normalises the window: end dates before the start are clamped
// to the start, non-positive slotsPerDay falls back to the given default.
func NewSlotPlan(start, end time.Time, slotsPerDay, defaultSlotsPerDay int) SlotPlan {
	if slotsPerDay <= 0 {
		slotsPerDay = defaultSlotsPerDay
	}
	if slotsPerDay <= 0 {
		slotsPerDay = 2
	}
	if !end.IsZero() && end.Before(start) {
		end = start
	}
	return SlotPlan{StartDate: start, EndDate: end, SlotsPerDay: slotsPerDay, DurationHours: 2}
}

// Generate builds slots 1..N where N covers every day of the requested
// window; with no end date a single day's worth of slots is produced.
func (p SlotPlan) Generate() []models.Slot {
	total := p.SlotsPerDay
	if !p.EndDate.IsZero() {
		days := int(p.EndDate.Sub(p.StartDate).Hours()/24) + 1
		if days < 1 {
			days = 1
		}
		if days*p.SlotsPerDay > total {
			total = days * p.SlotsPerDay
		}
	}

	slots := make([]models.Slot, 0, total)
	for sequence := 1; sequence <= total; sequence++ {
		slots = append(slots, p.slotFromSequence(sequence))
	}
	return slots
}

// CreateOverflow appends the next slot in sequence to the given slice and
// returns both the new slot and the extended slice.
func (p SlotPlan) CreateOverflow(slots []models.Slot) (models.Slot, []models.Slot) {
	sequence := 1
	if len(slots) > 0 {
		sequence = slots[len(slots)-1].Sequence + 1
	}
	slot := p.slotFromSequence(sequence)
	return slot, append(slots, slot)
}

func (p SlotPlan) slotFromSequence(sequence int) models.Slot {
	slotIndex := (sequence - 1) % p.SlotsPerDay
	dayOffset := (sequence - 1) / p.SlotsPerDay
	date := p.StartDate.AddDate(0, 0, dayOffset)
	outside := false
	if !p.EndDate.IsZero() {
		outside = date.After(p.EndDate)
	}
	return models.Slot{
		ID:            fmt.Sprintf("slot-%d", sequence),
		Sequence:      sequence,
		Date:          date,
		SlotIndex:     slotIndex,
		TimeLabel:     p.timeLabel(slotIndex),
		OutsideWindow: outside,
	}
}

// timeLabel renders the slot's time-of-day window. The exam day starts at
// 09:00 with a one hour gap between consecutive slots.
func (p SlotPlan) timeLabel(slotIndex int) string {
	duration := p.DurationHours
	if duration <= 0 {
		duration = 2
	}
	startMinutes := 9*60 + slotIndex*int((duration+1)*60)
	endMinutes := startMinutes + int(duration*60)
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		startMinutes/60, startMinutes%60, endMinutes/60, endMinutes%60)
}
