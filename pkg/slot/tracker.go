package slot

// Tracker remembers every slot identity already reported during this run.
// It is owned by the scheduler and handed to each cycle; nothing is persisted
// across restarts, so a fresh process re-reports whatever is currently open.
type Tracker struct {
	seen map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Diff returns the subset of current that has not been seen before and marks
// every returned record as seen. Dates with nothing new are left out of the
// result, so callers can treat an empty map as "no news".
func (t *Tracker) Diff(current DateMap) DateMap {
	fresh := DateMap{}
	for date, records := range current {
		for _, r := range records {
			id := Identity(r)
			if _, ok := t.seen[id]; ok {
				continue
			}
			t.seen[id] = struct{}{}
			fresh[date] = append(fresh[date], r)
		}
	}
	return fresh
}

// Seen reports whether an identity has already been observed.
func (t *Tracker) Seen(id string) bool {
	_, ok := t.seen[id]
	return ok
}

// Observe marks an identity as seen without diffing.
func (t *Tracker) Observe(id string) {
	t.seen[id] = struct{}{}
}

// Len returns the number of identities tracked so far.
func (t *Tracker) Len() int {
	return len(t.seen)
}
