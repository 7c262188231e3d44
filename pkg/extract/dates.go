package extract

import "time"

// DateTexts renders a calendar date the ways booking calendars commonly label
// it, most specific first. The date navigator clicks the first control whose
// text contains one of these.
func DateTexts(t time.Time) []string {
	return []string{
		t.Format("January 2, 2006"),
		t.Format("Mon 2"),
		t.Format("Monday 2"),
		t.Format("2"),
	}
}
