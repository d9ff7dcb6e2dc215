package table

import (
	"cmp"
	"slices"
)

// Direction is the ordering applied to the active column.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "none"
	}
}

// SortState is the active column key (empty for none) and its direction.
// The zero value is unsorted.
type SortState struct {
	Key       string
	Direction Direction
}

// Active reports whether rows are currently ordered by a column.
func (s SortState) Active() bool {
	return s.Key != "" && s.Direction != Unsorted
}

// Toggle returns the state after the header of col is activated.
// Non-sortable columns leave the state unchanged; a different column starts
// ascending; the active column cycles ascending, descending, none.
func (s SortState) Toggle(col Column) SortState {
	if !col.Sortable {
		return s
	}
	if s.Key != col.Key || !s.Active() {
		return SortState{Key: col.Key, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Key: col.Key, Direction: Descending}
	}
	return SortState{}
}

// Sort returns records ordered by state. The input slice is never modified.
// When state is inactive or names a column that is not sortable, records are
// returned as given. The sort is stable so ties keep their relative order.
func (f *Formatter) Sort(records []Record, cols []Column, state SortState) []Record {
	if !state.Active() {
		return records
	}
	i := indexOf(cols, state.Key)
	if i < 0 || !cols[i].Sortable {
		return records
	}
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		c := f.Compare(a[state.Key], b[state.Key])
		if state.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

// Compare orders two raw cell values:
//   - nil sorts after any defined value; two nils are equal
//   - two ISO date-time strings compare chronologically
//   - two strings use locale collation
//   - two numbers compare numerically
//   - anything else compares the stringified values with locale collation
func (f *Formatter) Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		if isDateTime(as) && isDateTime(bs) {
			at, errA := parseDateTime(as)
			bt, errB := parseDateTime(bs)
			if errA == nil && errB == nil {
				return at.Compare(bt)
			}
		}
		return f.collator.CompareString(as, bs)
	}

	an, aIsNum := toNumber(a)
	bn, bIsNum := toNumber(b)
	if aIsNum && bIsNum {
		return cmp.Compare(an, bn)
	}

	return f.collator.CompareString(plainText(a), plainText(b))
}
