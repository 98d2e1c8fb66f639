package todo

import "github.com/nhle/todolist/internal/model"

// Group is one time bucket of entries.
type Group struct {
	State   model.TimeState
	Entries []model.Entry
}

// GroupByTimeState buckets entries by their stored time state in
// model.TimeStateOrder, preserving input order inside each bucket.
// Empty buckets are omitted. Entries with an unknown state count as NoDate.
func GroupByTimeState(entries []model.Entry) []Group {
	buckets := make(map[model.TimeState][]model.Entry)
	for _, e := range entries {
		state := e.TimeState
		if !state.Valid() {
			state = model.TimeStateNoDate
		}
		buckets[state] = append(buckets[state], e)
	}

	var groups []Group
	for _, state := range model.TimeStateOrder {
		if len(buckets[state]) > 0 {
			groups = append(groups, Group{State: state, Entries: buckets[state]})
		}
	}
	return groups
}
