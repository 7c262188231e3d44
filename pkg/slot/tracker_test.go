package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan() DateMap {
	return DateMap{
		"2025-10-26": {
			{Date: "2025-10-26", CourtName: "Court 1", TimeLabel: "6:00 am"},
			{Date: "2025-10-26", CourtName: "Court 2", TimeLabel: "8:00 am"},
		},
	}
}

func TestDiffFirstScanIsAllNew(t *testing.T) {
	tr := NewTracker()
	fresh := tr.Diff(scan())
	assert.Equal(t, 2, fresh.Total())
}

func TestDiffIsIdempotent(t *testing.T) {
	tr := NewTracker()
	tr.Diff(scan())

	// The identical scan again must produce nothing.
	second := tr.Diff(scan())
	assert.Equal(t, 0, second.Total())
	assert.Empty(t, second)
}

func TestDiffReturnsOnlyUnseen(t *testing.T) {
	tr := NewTracker()
	tr.Observe(Identity(Record{Date: "2025-10-26", CourtName: "Court 1", TimeLabel: "6:00 am"}))

	fresh := tr.Diff(scan())
	require.Len(t, fresh["2025-10-26"], 1)
	assert.Equal(t, "Court 2", fresh["2025-10-26"][0].CourtName)
}

func TestDiffOmitsDatesWithNothingNew(t *testing.T) {
	tr := NewTracker()
	tr.Diff(scan())

	next := scan()
	next["2025-10-27"] = []Record{{Date: "2025-10-27", CourtName: "Court 5", TimeLabel: "7:00 pm"}}

	fresh := tr.Diff(next)
	_, ok := fresh["2025-10-26"]
	assert.False(t, ok, "date with nothing new must be omitted entirely")
	assert.Len(t, fresh["2025-10-27"], 1)
}

func TestDiffCollapsesDuplicateRecords(t *testing.T) {
	tr := NewTracker()
	dup := DateMap{
		"2025-10-26": {
			{Date: "2025-10-26", CourtName: "Court 1", TimeLabel: "6:00 am", RawText: "Book 6:00 am"},
			{Date: "2025-10-26", CourtName: "Court 1", TimeLabel: "6:00 am", RawText: "Book 6:00 am as 48hr"},
		},
	}

	fresh := tr.Diff(dup)
	assert.Equal(t, 1, fresh.Total(), "extraction duplicates collapse at diff time")
}

func TestTrackerGrowsMonotonically(t *testing.T) {
	tr := NewTracker()
	tr.Diff(scan())
	before := tr.Len()
	tr.Diff(scan())
	assert.Equal(t, before, tr.Len())

	next := DateMap{"2025-10-28": {{Date: "2025-10-28", CourtName: "Court 9", TimeLabel: "1:00 pm"}}}
	tr.Diff(next)
	assert.Equal(t, before+1, tr.Len())
}
