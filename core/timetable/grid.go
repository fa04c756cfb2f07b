package timetable

import (
	"sort"

	"github.com/google/uuid"
)

type cell struct {
	day    Weekday
	slotID uuid.UUID
}

// Grid is the static weekly structure: the ordered TimeSlot catalog crossed
// with the five weekdays, and the placement of at most one CourseSlot per
// (day, time slot). Pure and side-effect-free; a Grid is a snapshot, it never
// writes back.
type Grid struct {
	slots []TimeSlot // sorted by Position
	index map[uuid.UUID]int
	cells map[cell]CourseSlot
}

func NewGrid(slots []TimeSlot, placed []CourseSlot) *Grid {
	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	g := &Grid{
		slots: sorted,
		index: make(map[uuid.UUID]int, len(sorted)),
		cells: make(map[cell]CourseSlot, len(placed)),
	}
	for i, ts := range sorted {
		g.index[ts.ID] = i
	}
	for _, cs := range placed {
		g.cells[cell{cs.Day, cs.TimeSlotID}] = cs
	}
	return g
}

// SlotsForDay returns the ordered TimeSlot sequence for `day`.
// The catalog is shared by all weekdays; an invalid day yields nothing.
func (g *Grid) SlotsForDay(day Weekday) []TimeSlot {
	if !day.IsValid() {
		return nil
	}
	out := make([]TimeSlot, len(g.slots))
	copy(out, g.slots)
	return out
}

// Adjacent returns the slots surrounding `slotID` in sort order.
// Adjacency is positional: a gap in the label sequence (e.g. the lunch break)
// still counts as adjacent when no slot exists in between. Either side is nil
// at the edges, both are nil for an unknown slot.
func (g *Grid) Adjacent(slotID uuid.UUID) (prev, next *TimeSlot) {
	i, ok := g.index[slotID]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		p := g.slots[i-1]
		prev = &p
	}
	if i < len(g.slots)-1 {
		n := g.slots[i+1]
		next = &n
	}
	return prev, next
}

// TimeSlots returns the ordered slot catalog.
func (g *Grid) TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(g.slots))
	copy(out, g.slots)
	return out
}

// At returns the CourseSlot occupying (day, slotID), if any.
func (g *Grid) At(day Weekday, slotID uuid.UUID) (CourseSlot, bool) {
	cs, ok := g.cells[cell{day, slotID}]
	return cs, ok
}

// Slot returns the catalog entry with the given id.
func (g *Grid) Slot(slotID uuid.UUID) (TimeSlot, bool) {
	i, ok := g.index[slotID]
	if !ok {
		return TimeSlot{}, false
	}
	return g.slots[i], true
}

// Snapshot flattens the grid into a "day-label" keyed map, e.g.
// "monday-08:25-09:15". This is the shape the frontend consumes.
func (g *Grid) Snapshot() map[string]CourseSlot {
	out := make(map[string]CourseSlot, len(g.cells))
	for c, cs := range g.cells {
		if i, ok := g.index[c.slotID]; ok {
			out[c.day.String()+"-"+g.slots[i].Label] = cs
		}
	}
	return out
}
