package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultFalsePositives = []string{
	"Booking Grid", "None", "N/A", "disabled",
	"unavailable", "closed", "maintenance",
}

func btn(text string) Element {
	return Element{Text: text, Displayed: true, Enabled: true}
}

func TestExtractBookingButtons(t *testing.T) {
	elems := []Element{
		btn("Book 6:00 am as 48hr"),
		btn("Booking Grid - None"),
		btn("Book 10:00 am"),
	}

	records := Extract(elems, nil, "2025-10-26", defaultFalsePositives)
	require.Len(t, records, 2)
	assert.Equal(t, "6:00 am", records[0].TimeLabel)
	assert.Equal(t, "10:00 am", records[1].TimeLabel)
}

func TestExtractRejectsFalsePositives(t *testing.T) {
	cases := []string{
		"Booking Grid - None",
		"Book now (unavailable)",
		"Booking closed",
		"Book 6:00 am (maintenance)",
	}
	for _, text := range cases {
		records := Extract([]Element{btn(text)}, nil, "2025-10-26", defaultFalsePositives)
		assert.Emptyf(t, records, "%q must be filtered", text)
	}
}

func TestExtractIgnoresNonBookingText(t *testing.T) {
	elems := []Element{
		btn("Reserve 6:00 am"),
		btn("Cancel"),
		btn(""),
	}
	assert.Empty(t, Extract(elems, nil, "2025-10-26", defaultFalsePositives))
}

func TestTimePatternPrecedence(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Book 6:00 am as 48hr", "6:00 am"},
		{"Book 10:00 AM", "10:00 AM"},
		{"Book 14:30", "14:30"},
		{"Court 3 open at 7:15 pm, Book", "7:15 pm"},
		{"Book slot 9:00", "9:00"},
	}
	for _, tc := range cases {
		records := Extract([]Element{btn(tc.text)}, nil, "2025-10-26", defaultFalsePositives)
		require.Lenf(t, records, 1, "text %q", tc.text)
		assert.Equalf(t, tc.want, records[0].TimeLabel, "text %q", tc.text)
	}
}

func TestColonHeuristicWithoutExtractableTime(t *testing.T) {
	// No recognizable clock value, but "book" plus a colon keeps it.
	records := Extract([]Element{btn("Book: morning slot 6 to 7")}, nil, "2025-10-26", defaultFalsePositives)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].TimeLabel)

	// Neither a time nor a colon drops it.
	records = Extract([]Element{btn("Book a court today")}, nil, "2025-10-26", defaultFalsePositives)
	assert.Empty(t, records)
}

func TestCourtNameFromText(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Court 3 Book 6:00 am", "Court 3"},
		{"court 12 Book 7:00 pm", "Court 12"},
		{"5 Court Book 8:00 am", "Court 5"},
	}
	for _, tc := range cases {
		records := Extract([]Element{btn(tc.text)}, nil, "2025-10-26", defaultFalsePositives)
		require.Lenf(t, records, 1, "text %q", tc.text)
		assert.Equalf(t, tc.want, records[0].CourtName, "text %q", tc.text)
	}
}

func TestNearestLabelAssociation(t *testing.T) {
	button := Element{Text: "Book 6:00 am", Displayed: true, Enabled: true, X: 100, Y: 210}
	labels := []Element{
		{Text: "Court 1", X: 100, Y: 50},
		{Text: "Court 2", X: 100, Y: 200},
		{Text: "Opening hours", X: 100, Y: 205},
	}

	records := Extract([]Element{button}, labels, "2025-10-26", defaultFalsePositives)
	require.Len(t, records, 1)
	assert.Equal(t, "Court 2", records[0].CourtName)
}

func TestSynthesizedCourtNameWithoutLabels(t *testing.T) {
	elems := []Element{
		btn("Book 6:00 am"),
		btn("Book 7:00 am"),
	}

	records := Extract(elems, nil, "2025-10-26", defaultFalsePositives)
	require.Len(t, records, 2)
	assert.Equal(t, "Court 1", records[0].CourtName)
	assert.Equal(t, "Court 2", records[1].CourtName)
}

func TestExtractDefaultsAndFlags(t *testing.T) {
	el := Element{Text: "Book 6:00 am $12.50", Displayed: true, Enabled: false}
	records := Extract([]Element{el}, nil, "2025-10-26", defaultFalsePositives)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "1 hour", r.Duration)
	assert.Equal(t, "$12.50", r.Price)
	assert.Equal(t, "2025-10-26", r.Date)
	assert.False(t, r.Interactable, "disabled control is observed but not interactable")
	assert.Equal(t, "Book 6:00 am $12.50", r.RawText)
}

func TestExtractKeepsDuplicates(t *testing.T) {
	elems := []Element{
		btn("Court 1 Book 6:00 am"),
		btn("Court 1 Book 6:00 am"),
	}

	// Dedup happens at diff time, not here.
	records := Extract(elems, nil, "2025-10-26", defaultFalsePositives)
	assert.Len(t, records, 2)
}
