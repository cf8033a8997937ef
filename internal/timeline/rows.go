package timeline

import (
	"fmt"
	"sort"
)

// RowGroup is a top-level row and its children. The parent's label spans
// the whole group; every member still has its own lane.
type RowGroup struct {
	Parent   Row
	Children []Row
}

// Size is the number of lanes in the group.
func (g RowGroup) Size() int { return 1 + len(g.Children) }

// Height is the rendered height of the group.
func (g RowGroup) Height(rowHeight int) int { return g.Size() * rowHeight }

// Lanes lists the parent followed by its children.
func (g RowGroup) Lanes() []Row {
	out := make([]Row, 0, g.Size())
	out = append(out, g.Parent)
	return append(out, g.Children...)
}

// RowTree is a two-level index over a project's rows that is kept up to date
// on row mutations instead of being re-derived for every render.
type RowTree struct {
	rows     map[string]Row
	children map[string][]string
}

// NewRowTree indexes rows. Rows that would nest deeper than one level are
// kept but treated as top-level.
func NewRowTree(rows []Row) *RowTree {
	t := &RowTree{
		rows:     make(map[string]Row, len(rows)),
		children: make(map[string][]string),
	}
	for _, r := range rows {
		t.rows[r.ID] = r
	}
	for _, r := range rows {
		if p := t.parentOf(r); p != "" {
			t.children[p] = append(t.children[p], r.ID)
		}
	}
	return t
}

// parentOf returns the effective parent id of r, or "" when r is rendered at
// the top level (no parent, unknown parent, or a parent that is itself nested).
func (t *RowTree) parentOf(r Row) string {
	if r.ParentID == nil {
		return ""
	}
	p, ok := t.rows[*r.ParentID]
	if !ok || p.ParentID != nil || p.ID == r.ID {
		return ""
	}
	return p.ID
}

// Get looks up a row by id.
func (t *RowTree) Get(id string) (Row, bool) {
	r, ok := t.rows[id]
	return r, ok
}

// Len is the number of rows in the tree.
func (t *RowTree) Len() int { return len(t.rows) }

// Upsert inserts or replaces a row after checking the two-level invariant.
func (t *RowTree) Upsert(r Row) error {
	if r.ParentID != nil {
		if err := t.CheckParent(r.ID, *r.ParentID); err != nil {
			return err
		}
	}
	if old, ok := t.rows[r.ID]; ok {
		if p := t.parentOf(old); p != "" {
			t.children[p] = without(t.children[p], old.ID)
		}
	}
	t.rows[r.ID] = r
	if p := t.parentOf(r); p != "" {
		t.children[p] = append(t.children[p], r.ID)
	}
	return nil
}

// Remove deletes a row and its children.
func (t *RowTree) Remove(id string) {
	r, ok := t.rows[id]
	if !ok {
		return
	}
	for _, c := range t.children[id] {
		delete(t.rows, c)
	}
	delete(t.children, id)
	if p := t.parentOf(r); p != "" {
		t.children[p] = without(t.children[p], id)
	}
	delete(t.rows, id)
}

// CheckParent validates that rowID may be placed under parentID: the parent
// must exist, be top-level, and rowID must not already have children.
func (t *RowTree) CheckParent(rowID, parentID string) error {
	p, ok := t.rows[parentID]
	if !ok {
		return fmt.Errorf("parent %s: %w", parentID, ErrUnknownRow)
	}
	if p.ParentID != nil || parentID == rowID {
		return ErrNestedRow
	}
	if len(t.children[rowID]) > 0 {
		return ErrNestedRow
	}
	return nil
}

// Groups returns the top-level rows ordered by Order, each with its children
// ordered by Order.
func (t *RowTree) Groups() []RowGroup {
	var tops []Row
	for _, r := range t.rows {
		if t.parentOf(r) == "" {
			tops = append(tops, r)
		}
	}
	sortRows(tops)

	groups := make([]RowGroup, 0, len(tops))
	for _, top := range tops {
		g := RowGroup{Parent: top}
		for _, id := range t.children[top.ID] {
			g.Children = append(g.Children, t.rows[id])
		}
		sortRows(g.Children)
		groups = append(groups, g)
	}
	return groups
}

// GroupRows partitions a flat row list into two-level groups.
func GroupRows(rows []Row) []RowGroup {
	return NewRowTree(rows).Groups()
}

// Lanes flattens groups into render order.
func Lanes(groups []RowGroup) []Row {
	var out []Row
	for _, g := range groups {
		out = append(out, g.Lanes()...)
	}
	return out
}

// LaneAt hit-tests a vertical offset (relative to the top of the first lane)
// against the grouped layout.
func LaneAt(groups []RowGroup, rowHeight, y int) (Row, bool) {
	if rowHeight <= 0 || y < 0 {
		return Row{}, false
	}
	idx := y / rowHeight
	for _, g := range groups {
		if idx < g.Size() {
			return g.Lanes()[idx], true
		}
		idx -= g.Size()
	}
	return Row{}, false
}

// ValidateHierarchy checks that every parent reference points at an existing
// top-level row.
func ValidateHierarchy(rows []Row) error {
	byID := make(map[string]Row, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	for _, r := range rows {
		if r.ParentID == nil {
			continue
		}
		p, ok := byID[*r.ParentID]
		if !ok {
			return fmt.Errorf("row %s parent %s: %w", r.ID, *r.ParentID, ErrUnknownRow)
		}
		if p.ParentID != nil || p.ID == r.ID {
			return fmt.Errorf("row %s: %w", r.ID, ErrNestedRow)
		}
	}
	return nil
}

// SwapOrder exchanges the order of two top-level rows. Only those two rows
// change, so it yields exactly two commands (or none when dragged onto itself).
func SwapOrder(rows []Row, draggedID, targetID string) ([]PendingCommand, error) {
	if draggedID == targetID {
		return nil, nil
	}
	var dragged, target *Row
	for i := range rows {
		switch rows[i].ID {
		case draggedID:
			dragged = &rows[i]
		case targetID:
			target = &rows[i]
		}
	}
	if dragged == nil || target == nil {
		return nil, ErrUnknownRow
	}
	if !dragged.IsTopLevel() || !target.IsTopLevel() {
		return nil, ErrNotTopLevel
	}
	do, to := dragged.Order, target.Order
	return []PendingCommand{
		{Kind: KindRow, ItemID: dragged.ID, Patch: Patch{Order: &to}},
		{Kind: KindRow, ItemID: target.ID, Patch: Patch{Order: &do}},
	}, nil
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Order != rows[j].Order {
			return rows[i].Order < rows[j].Order
		}
		return rows[i].ID < rows[j].ID
	})
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
