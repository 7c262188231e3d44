package slot

import (
	"sort"
	"strings"
)

// Record represents one bookable court slot observed on a page.
type Record struct {
	CourtName    string `json:"court_name"`
	TimeLabel    string `json:"time,omitempty"`
	Duration     string `json:"duration"`
	Price        string `json:"price"`
	Date         string `json:"date"`
	RawText      string `json:"text"`
	Interactable bool   `json:"clickable"`
}

// DateMap groups slot records by their ISO-8601 calendar date.
// Record order within a date is the scan order.
type DateMap map[string][]Record

// Identity returns the key under which two observations count as the same
// slot. Falls back to the raw node text when neither a court name nor a time
// label could be extracted.
func Identity(r Record) string {
	if r.CourtName == "" && r.TimeLabel == "" {
		return r.Date + "_" + r.RawText
	}
	return r.Date + "_" + r.CourtName + "_" + r.TimeLabel
}

// Total counts the records across all dates.
func (m DateMap) Total() int {
	n := 0
	for _, records := range m {
		n += len(records)
	}
	return n
}

// Dates returns the map's dates in ascending order.
func (m DateMap) Dates() []string {
	dates := make([]string, 0, len(m))
	for date := range m {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Merge appends other's records into m, keeping per-date scan order.
func (m DateMap) Merge(other DateMap) {
	for date, records := range other {
		m[date] = append(m[date], records...)
	}
}

// Times lists the time labels across all dates, in date order.
func (m DateMap) Times() []string {
	var times []string
	for _, date := range m.Dates() {
		for _, r := range m[date] {
			if r.TimeLabel != "" {
				times = append(times, r.TimeLabel)
			}
		}
	}
	return times
}

// FilterTimes keeps only records whose time label contains one of the wanted
// labels (case-insensitive). An empty wanted list keeps everything.
func (m DateMap) FilterTimes(wanted []string) DateMap {
	if len(wanted) == 0 {
		return m
	}
	out := DateMap{}
	for date, records := range m {
		for _, r := range records {
			for _, w := range wanted {
				if w != "" && strings.Contains(strings.ToLower(r.TimeLabel), strings.ToLower(w)) {
					out[date] = append(out[date], r)
					break
				}
			}
		}
	}
	return out
}
