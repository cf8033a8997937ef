package timeline

import "sort"

// Placement groups items by the row they belong to. Items without a row, or
// whose row is not among the indexed rows, land in the unassigned bucket.
type Placement[T any] struct {
	byRow      map[string][]T
	unassigned []T
}

// ForRow returns the items placed in a row.
func (p Placement[T]) ForRow(rowID string) []T { return p.byRow[rowID] }

// Unassigned returns the residual bucket.
func (p Placement[T]) Unassigned() []T { return p.unassigned }

// Count is the number of items placed in a row.
func (p Placement[T]) Count(rowID string) int { return len(p.byRow[rowID]) }

func index[T any](items []T, rows []Row, rowOf func(T) *string) Placement[T] {
	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		known[r.ID] = true
	}
	p := Placement[T]{byRow: make(map[string][]T)}
	for _, it := range items {
		id := rowOf(it)
		if id == nil || !known[*id] {
			p.unassigned = append(p.unassigned, it)
			continue
		}
		p.byRow[*id] = append(p.byRow[*id], it)
	}
	return p
}

// IndexMilestones places milestones by row, earliest start first.
func IndexMilestones(items []Milestone, rows []Row) Placement[Milestone] {
	sorted := make([]Milestone, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	return index(sorted, rows, func(m Milestone) *string { return m.RowID })
}

// IndexPinpoints places pinpoints by row, earliest date first.
func IndexPinpoints(items []Pinpoint, rows []Row) Placement[Pinpoint] {
	sorted := make([]Pinpoint, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return index(sorted, rows, func(p Pinpoint) *string { return &p.RowID })
}
