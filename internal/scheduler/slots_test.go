package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestSlotPlanGenerateCoversWindow(t *testing.T) {
	plan := NewSlotPlan(date(2026, 3, 2), date(2026, 3, 4), 2, 2)
	slots := plan.Generate()

	require.Len(t, slots, 6)
	assert.Equal(t, "slot-1", slots[0].ID)
	assert.Equal(t, 0, slots[0].SlotIndex)
	assert.Equal(t, 1, slots[1].SlotIndex)
	assert.Equal(t, date(2026, 3, 2), slots[0].Date)
	assert.Equal(t, date(2026, 3, 2), slots[1].Date)
	assert.Equal(t, date(2026, 3, 3), slots[2].Date)
	for _, slot := range slots {
		assert.False(t, slot.OutsideWindow)
	}
}

func TestSlotPlanGenerateDeterministic(t *testing.T) {
	plan := NewSlotPlan(date(2026, 3, 2), date(2026, 3, 6), 3, 2)
	first := plan.Generate()
	second := plan.Generate()
	assert.Equal(t, first, second)
}

func TestSlotPlanOpenEndedWindow(t *testing.T) {
	plan := NewSlotPlan(date(2026, 3, 2), time.Time{}, 2, 2)
	slots := plan.Generate()

	require.Len(t, slots, 2)
	for _, slot := range slots {
		assert.False(t, slot.OutsideWindow, "open-ended window never marks slots outside")
	}
}

func TestSlotPlanEndBeforeStartClamped(t *testing.T) {
	plan := NewSlotPlan(date(2026, 3, 10), date(2026, 3, 2), 2, 2)
	slots := plan.Generate()
	require.Len(t, slots, 2)
	assert.Equal(t, date(2026, 3, 10), slots[0].Date)
}

func TestSlotPlanCreateOverflowExtendsSequence(t *testing.T) {
	plan := NewSlotPlan(date(2026, 3, 2), date(2026, 3, 3), 2, 2)
	slots := plan.Generate()
	require.Len(t, slots, 4)

	overflow, extended := plan.CreateOverflow(slots)
	assert.Equal(t, 5, overflow.Sequence)
	assert.Equal(t, "slot-5", overflow.ID)
	assert.Equal(t, 0, overflow.SlotIndex)
	assert.Equal(t, date(2026, 3, 4), overflow.Date)
	assert.True(t, overflow.OutsideWindow)
	assert.Len(t, extended, 5)

	// Overflow slots follow the same arithmetic as generated ones.
	regenerated := NewSlotPlan(date(2026, 3, 2), date(2026, 3, 4), 2, 2).Generate()
	assert.Equal(t, regenerated[4].Date, overflow.Date)
	assert.Equal(t, regenerated[4].SlotIndex, overflow.SlotIndex)
}

func TestSlotPlanTimeLabels(t *testing.T) {
	plan := NewSlotPlan(date(2026, 3, 2), date(2026, 3, 2), 2, 2)
	slots := plan.Generate()
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00-11:00", slots[0].TimeLabel)
	assert.Equal(t, "12:00-14:00", slots[1].TimeLabel)

	plan.DurationHours = 3
	slots = plan.Generate()
	assert.Equal(t, "09:00-12:00", slots[0].TimeLabel)
	assert.Equal(t, "13:00-16:00", slots[1].TimeLabel)
}

func TestSlotPlanDefaultsSlotsPerDay(t *testing.T) {
	plan := NewSlotPlan(date(2026, 3, 2), time.Time{}, 0, 3)
	assert.Equal(t, 3, plan.SlotsPerDay)

	plan = NewSlotPlan(date(2026, 3, 2), time.Time{}, 0, 0)
	assert.Equal(t, 2, plan.SlotsPerDay)
}
