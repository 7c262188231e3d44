package monitor

import (
	"errors"
	"testing"
	"time"

	"courtwatch/pkg/config"
	"courtwatch/pkg/slot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts one session. The scheduler acquires a fresh gateway per
// cycle, so the factory in the tests counts constructions as well.
type fakeGateway struct {
	loginOK     bool
	navigateErr error
	goToDateOK  bool
	slots       map[string][]slot.Record
	extractErr  error

	visitedDates []string
	extracted    []string
	closed       bool
}

func (g *fakeGateway) Login(config.Credentials) bool { return g.loginOK }

func (g *fakeGateway) Navigate(string) error { return g.navigateErr }

func (g *fakeGateway) GoToDate(target time.Time) bool {
	g.visitedDates = append(g.visitedDates, target.Format("2006-01-02"))
	return g.goToDateOK
}

func (g *fakeGateway) ExtractSlots(date string) ([]slot.Record, error) {
	g.extracted = append(g.extracted, date)
	if g.extractErr != nil {
		return nil, g.extractErr
	}
	return g.slots[date], nil
}

func (g *fakeGateway) Close() { g.closed = true }

type fakeNotifier struct {
	batches []slot.DateMap
}

func (n *fakeNotifier) Notify(batch slot.DateMap) bool {
	n.batches = append(n.batches, batch)
	return true
}

func fixedNow() time.Time {
	return time.Date(2025, 10, 26, 8, 0, 0, 0, time.UTC)
}

func record(date, court, label string) slot.Record {
	return slot.Record{Date: date, CourtName: court, TimeLabel: label, Duration: "1 hour", Price: "Unknown"}
}

func testParams(t *testing.T, factory func() Gateway, notifier Notifier) Params {
	t.Helper()
	profile, err := config.ProfileFor("BTC")
	require.NoError(t, err)
	return Params{
		Profile:    profile,
		Tracker:    slot.NewTracker(),
		Notifier:   notifier,
		NewSession: factory,
		Interval:   5 * time.Minute,
	}
}

func TestCycleNotifiesNewSlots(t *testing.T) {
	gw := &fakeGateway{
		loginOK:    true,
		goToDateOK: true,
		slots: map[string][]slot.Record{
			"2025-10-26": {record("2025-10-26", "Court 1", "6:00 am")},
			"2025-10-27": {record("2025-10-27", "Court 2", "7:00 pm")},
		},
	}
	notifier := &fakeNotifier{}
	s := New(testParams(t, func() Gateway { return gw }, notifier))
	s.now = fixedNow

	require.NoError(t, s.Cycle())
	require.Len(t, notifier.batches, 1)
	assert.Equal(t, 2, notifier.batches[0].Total())
	assert.Equal(t, []string{"2025-10-26", "2025-10-27", "2025-10-28"}, gw.visitedDates)
	assert.True(t, gw.closed, "session must be released after the cycle")
}

func TestCycleSecondScanUnchangedDoesNotNotify(t *testing.T) {
	slots := map[string][]slot.Record{
		"2025-10-26": {record("2025-10-26", "Court 1", "6:00 am")},
	}
	notifier := &fakeNotifier{}
	s := New(testParams(t, func() Gateway {
		return &fakeGateway{loginOK: true, goToDateOK: true, slots: slots}
	}, notifier))
	s.now = fixedNow

	require.NoError(t, s.Cycle())
	require.NoError(t, s.Cycle())
	assert.Len(t, notifier.batches, 1, "unchanged availability must notify only once")
}

func TestCycleTimeFilterDropsUnwantedSlots(t *testing.T) {
	gw := &fakeGateway{
		loginOK:    true,
		goToDateOK: true,
		slots: map[string][]slot.Record{
			"2025-10-26": {
				record("2025-10-26", "Court 1", "6:00 am"),
				record("2025-10-26", "Court 2", "7:00 pm"),
			},
		},
	}
	notifier := &fakeNotifier{}
	params := testParams(t, func() Gateway { return gw }, notifier)
	params.WantedTimes = []string{"7:00 pm"}
	s := New(params)
	s.now = fixedNow

	require.NoError(t, s.Cycle())
	require.Len(t, notifier.batches, 1)
	assert.Equal(t, 1, notifier.batches[0].Total())
	assert.Equal(t, "Court 2", notifier.batches[0]["2025-10-26"][0].CourtName)
}

func TestCycleFailedLoginIsNonFatal(t *testing.T) {
	gw := &fakeGateway{loginOK: false, goToDateOK: true}
	s := New(testParams(t, func() Gateway { return gw }, &fakeNotifier{}))
	s.now = fixedNow

	assert.NoError(t, s.Cycle())
}

func TestCycleNavigationFailureAborts(t *testing.T) {
	gw := &fakeGateway{loginOK: true, navigateErr: errors.New("net::ERR_CONNECTION_REFUSED")}
	s := New(testParams(t, func() Gateway { return gw }, &fakeNotifier{}))
	s.now = fixedNow

	err := s.Cycle()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking page")
	assert.True(t, gw.closed, "session must be released on the error path too")
}

func TestScanDatesFallsBackToCurrentPage(t *testing.T) {
	gw := &fakeGateway{
		loginOK:    true,
		goToDateOK: false,
		slots: map[string][]slot.Record{
			"2025-10-26": {record("2025-10-26", "Court 4", "9:00 am")},
		},
	}
	notifier := &fakeNotifier{}
	s := New(testParams(t, func() Gateway { return gw }, notifier))
	s.now = fixedNow

	require.NoError(t, s.Cycle())
	// All three date navigations failed, then the rendered page was scanned
	// once under today's date.
	assert.Equal(t, []string{"2025-10-26"}, gw.extracted)
	require.Len(t, notifier.batches, 1)
	assert.Equal(t, "Court 4", notifier.batches[0]["2025-10-26"][0].CourtName)
}

func TestCycleRecoversFromPanic(t *testing.T) {
	s := New(testParams(t, func() Gateway { panic("browser crashed") }, &fakeNotifier{}))
	s.now = fixedNow

	err := s.Cycle()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic during cycle")
}

func TestRunHonorsMaxAttempts(t *testing.T) {
	var sessions int
	notifier := &fakeNotifier{}
	params := testParams(t, func() Gateway {
		sessions++
		return &fakeGateway{loginOK: true, goToDateOK: true}
	}, notifier)
	params.MaxAttempts = 2
	s := New(params)
	s.now = fixedNow

	var sleeps []time.Duration
	s.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	s.Run()

	assert.Equal(t, 2, sessions, "exactly max_attempts cycles")
	require.Len(t, sleeps, 1, "no sleep after the final cycle")
	assert.Equal(t, 5*time.Minute, sleeps[0])
}

func TestRunBacksOffAfterFailedCycle(t *testing.T) {
	var sessions int
	params := testParams(t, func() Gateway {
		sessions++
		if sessions == 1 {
			return &fakeGateway{loginOK: true, navigateErr: errors.New("timeout")}
		}
		return &fakeGateway{loginOK: true, goToDateOK: true}
	}, &fakeNotifier{})
	params.MaxAttempts = 2
	params.Backoff = 10 * time.Second
	s := New(params)
	s.now = fixedNow

	var sleeps []time.Duration
	s.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	s.Run()

	assert.Equal(t, 2, sessions, "failed cycle must be retried")
	require.Len(t, sleeps, 1)
	assert.Equal(t, 10*time.Second, sleeps[0], "retry uses the backoff, not the interval")
}

func TestStopEndsRunPromptly(t *testing.T) {
	notifier := &fakeNotifier{}
	s := New(testParams(t, func() Gateway {
		return &fakeGateway{loginOK: true, goToDateOK: true}
	}, notifier))
	s.now = fixedNow
	s.tick = time.Millisecond

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(testParams(t, func() Gateway { return &fakeGateway{} }, &fakeNotifier{}))
	s.Stop()
	s.Stop()
}
