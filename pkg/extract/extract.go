package extract

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"courtwatch/pkg/slot"
)

// Element is a snapshot of one DOM node, taken in a single page query. The
// extractor never touches the live page; it works on these snapshots so the
// same logic runs against fixtures in tests.
type Element struct {
	Text      string  `json:"text"`
	Class     string  `json:"class"`
	ID        string  `json:"id"`
	Displayed bool    `json:"displayed"`
	Enabled   bool    `json:"enabled"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Node      int     `json:"node"`
}

// Ordered most-specific-first; the first match wins. Booking sites render
// times inconsistently, so the loose bare-clock pattern comes last.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Book\s+(\d{1,2}:\d{2}\s*(?:am|pm|AM|PM))`),
	regexp.MustCompile(`Book\s+(\d{1,2}:\d{2})`),
	regexp.MustCompile(`(\d{1,2}:\d{2}\s*(?:am|pm|AM|PM))`),
	regexp.MustCompile(`(\d{1,2}:\d{2})`),
}

var courtPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Court\s*(\d+)`),
	regexp.MustCompile(`(?i)Court\s*([A-Z]\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*Court`),
}

var pricePattern = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)

// Extract turns a page snapshot into slot records for one calendar date.
// elems is every button-like element on the page; labels are the court-label
// nodes used for the nearest-label fallback. Extraction never fails: elements
// that cannot be parsed are skipped and logged at debug level. Duplicate
// records for the same court and time are kept; collapsing them is the
// differ's job after all dates are merged.
func Extract(elems, labels []Element, date string, falsePositives []string) []slot.Record {
	var records []slot.Record
	for i, el := range elems {
		r, ok := extractOne(el, labels, date, falsePositives, i)
		if !ok {
			continue
		}
		records = append(records, r)
	}
	return records
}

func extractOne(el Element, labels []Element, date string, falsePositives []string, index int) (slot.Record, bool) {
	text := strings.TrimSpace(el.Text)
	if !strings.Contains(strings.ToLower(text), "book") {
		return slot.Record{}, false
	}
	for _, fp := range falsePositives {
		if fp != "" && strings.Contains(text, fp) {
			slog.Debug("Skipping false positive", "text", text)
			return slot.Record{}, false
		}
	}

	r := slot.Record{
		CourtName:    "",
		TimeLabel:    timeLabel(text),
		Duration:     "1 hour",
		Price:        "Unknown",
		Date:         date,
		RawText:      text,
		Interactable: el.Displayed && el.Enabled,
	}

	if name, ok := courtName(text); ok {
		r.CourtName = name
	} else if name, ok := nearestCourtLabel(el, labels); ok {
		r.CourtName = name
	} else {
		r.CourtName = synthesizeCourtName(index)
	}

	if price := pricePattern.FindString(text); price != "" {
		r.Price = price
	}

	// A record with no time must at least look like a time-bearing booking
	// control before it counts.
	if r.TimeLabel == "" && !strings.Contains(text, ":") {
		return slot.Record{}, false
	}
	return r, true
}

func timeLabel(text string) string {
	for _, re := range timePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func courtName(text string) (string, bool) {
	for _, re := range courtPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return "Court " + m[1], true
		}
	}
	return "", false
}

// nearestCourtLabel associates a booking control with the closest court-label
// node on the page, measured by Manhattan distance between screen positions.
// Handles markup where buttons and court headings are siblings rather than
// nested. Layout-dependent, so it only runs when the button text itself names
// no court.
func nearestCourtLabel(el Element, labels []Element) (string, bool) {
	best := ""
	bestDist := math.MaxFloat64
	for _, label := range labels {
		name, ok := courtName(label.Text)
		if !ok {
			continue
		}
		dist := math.Abs(el.X-label.X) + math.Abs(el.Y-label.Y)
		if dist < bestDist {
			bestDist = dist
			best = name
		}
	}
	return best, best != ""
}

func synthesizeCourtName(index int) string {
	return "Court " + strconv.Itoa(index+1)
}
