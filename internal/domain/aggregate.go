package domain

// Table is an immutable per-event-type aggregate. Rows keep the order in
// which each event type was first seen.
type Table struct {
	rows  []AggregateRow
	index map[string]int
}

// Len returns the number of event-type groups.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of the rows in first-seen order.
func (t *Table) Rows() []AggregateRow {
	if t == nil {
		return nil
	}
	out := make([]AggregateRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Get looks up the row for an exact event type.
func (t *Table) Get(eventType string) (AggregateRow, bool) {
	if t == nil {
		return AggregateRow{}, false
	}
	i, ok := t.index[eventType]
	if !ok {
		return AggregateRow{}, false
	}
	return t.rows[i], true
}

// Totals sums every row. EventType is left empty.
func (t *Table) Totals() AggregateRow {
	var total AggregateRow
	if t == nil {
		return total
	}
	for _, r := range t.rows {
		total.merge(r)
	}
	return total
}

// Accumulator builds a Table incrementally. It is not safe for concurrent
// use; parallel callers give each worker its own Accumulator and Merge them.
type Accumulator struct {
	rows  []AggregateRow
	index map[string]int
	count int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

// Add folds one normalized record into its event-type group.
func (a *Accumulator) Add(r NormalizedRecord) {
	a.row(r.EventType).add(r)
	a.count++
}

// Merge folds another accumulator's partial sums into a. Groups new to a are
// appended in other's order.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for _, r := range other.rows {
		a.row(r.EventType).merge(r)
	}
	a.count += other.count
}

// Records returns how many records have been added, including merged ones.
func (a *Accumulator) Records() int { return a.count }

// Table snapshots the current sums. Later Adds do not affect the result.
func (a *Accumulator) Table() *Table {
	rows := make([]AggregateRow, len(a.rows))
	copy(rows, a.rows)
	index := make(map[string]int, len(a.index))
	for k, v := range a.index {
		index[k] = v
	}
	return &Table{rows: rows, index: index}
}

func (a *Accumulator) row(eventType string) *AggregateRow {
	i, ok := a.index[eventType]
	if !ok {
		i = len(a.rows)
		a.rows = append(a.rows, AggregateRow{EventType: eventType})
		a.index[eventType] = i
	}
	return &a.rows[i]
}

// Aggregate groups normalized records by exact event type and sums each metric.
// An empty input yields an empty table.
func Aggregate(records []NormalizedRecord) *Table {
	acc := NewAccumulator()
	for _, r := range records {
		acc.Add(r)
	}
	return acc.Table()
}
