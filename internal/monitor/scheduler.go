package monitor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"courtwatch/pkg/config"
	"courtwatch/pkg/slot"
)

// Gateway is the slice of the browser session the scheduler drives. A fresh
// gateway is acquired per cycle and released on every exit path.
type Gateway interface {
	Login(config.Credentials) bool
	Navigate(url string) error
	GoToDate(time.Time) bool
	ExtractSlots(date string) ([]slot.Record, error)
	Close()
}

// Notifier delivers a batch of newly observed slots.
type Notifier interface {
	Notify(batch slot.DateMap) bool
}

// Scheduler runs the extract-diff-notify cycle on an interval. Exactly one
// cycle executes at a time; the only concurrency primitive is the stop
// channel, checked between one-second sleep ticks so shutdown signals are
// honored promptly.
type Scheduler struct {
	profile     config.Profile
	creds       config.Credentials
	tracker     *slot.Tracker
	notifier    Notifier
	newSession  func() Gateway
	interval    time.Duration
	backoff     time.Duration
	maxAttempts int
	dateOffsets []int
	wantedTimes []string
	saveReports bool
	reportsDir  string

	tick  time.Duration
	sleep func(time.Duration)
	now   func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Params collects the scheduler's construction knobs.
type Params struct {
	Profile     config.Profile
	Credentials config.Credentials
	Tracker     *slot.Tracker
	Notifier    Notifier
	NewSession  func() Gateway
	Interval    time.Duration
	Backoff     time.Duration
	MaxAttempts int
	DateOffsets []int
	WantedTimes []string
	SaveReports bool
	ReportsDir  string
}

// New builds a scheduler. Backoff defaults to one minute and the tracked
// dates default to today, tomorrow and the day after.
func New(p Params) *Scheduler {
	if p.Backoff <= 0 {
		p.Backoff = time.Minute
	}
	if len(p.DateOffsets) == 0 {
		p.DateOffsets = []int{0, 1, 2}
	}
	s := &Scheduler{
		profile:     p.Profile,
		creds:       p.Credentials,
		tracker:     p.Tracker,
		notifier:    p.Notifier,
		newSession:  p.NewSession,
		interval:    p.Interval,
		backoff:     p.Backoff,
		maxAttempts: p.MaxAttempts,
		dateOffsets: p.DateOffsets,
		wantedTimes: p.WantedTimes,
		saveReports: p.SaveReports,
		reportsDir:  p.ReportsDir,
		tick:        time.Second,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
	s.sleep = s.sleepInterruptible
	return s
}

// Stop requests a graceful shutdown. Safe to call from a signal handler
// goroutine and more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Scheduler) stopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Run executes cycles until Stop is called or the attempt bound is reached.
// A failing cycle never terminates the loop; it is logged and retried after
// the shorter backoff.
func (s *Scheduler) Run() {
	slog.Info("Starting monitoring",
		"facility", s.profile.Name,
		"interval", s.interval,
		"max_attempts", s.maxAttempts)

	attempt := 0
	for !s.stopped() {
		attempt++
		slog.Info("Monitoring cycle", "attempt", attempt)

		if err := s.Cycle(); err != nil {
			slog.Error("Error during monitoring cycle", "error", err)
			if s.maxAttempts > 0 && attempt >= s.maxAttempts {
				break
			}
			s.sleep(s.backoff)
			continue
		}

		if s.maxAttempts > 0 && attempt >= s.maxAttempts {
			slog.Info("Reached maximum attempts, stopping", "max_attempts", s.maxAttempts)
			break
		}

		slog.Info("✓ Cycle complete", "next_check_in", s.interval)
		s.sleep(s.interval)
	}

	slog.Info("Monitoring stopped", "attempts", attempt)
}

// Cycle runs one poll: acquire a session, log in, reach the booking page,
// scan the tracked dates, diff, and notify when something is new. Only a
// booking page that cannot be reached aborts the cycle.
func (s *Scheduler) Cycle() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during cycle: %v", r)
		}
	}()

	sess := s.newSession()
	defer sess.Close()

	// Login failures are non-fatal: the calendar is often browsable
	// anonymously, so the cycle proceeds optimistically.
	if !sess.Login(s.creds) {
		slog.Warn("Login failed, continuing anyway")
	}

	if err := sess.Navigate(s.profile.BookingURL); err != nil {
		return fmt.Errorf("failed to navigate to booking page: %w", err)
	}

	current := s.scanDates(sess)
	if len(s.wantedTimes) > 0 {
		current = current.FilterTimes(s.wantedTimes)
	}

	if s.saveReports && current.Total() > 0 {
		if err := writeReport(s.reportsDir, current, s.now()); err != nil {
			slog.Warn("Failed to write scan report", "error", err)
		}
	}

	fresh := s.tracker.Diff(current)
	if fresh.Total() > 0 {
		slog.Info("🎾 NEW COURTS DETECTED!", "count", fresh.Total())
		s.notifier.Notify(fresh)
	} else if current.Total() > 0 {
		slog.Info("Found courts but no new ones since last check", "count", current.Total())
	} else {
		slog.Info("✓ No new courts")
	}
	return nil
}

// scanDates walks the tracked dates, navigating and extracting per date. If
// navigation fails for every date, whatever page is currently rendered is
// scanned once and tagged with today's date.
func (s *Scheduler) scanDates(sess Gateway) slot.DateMap {
	merged := slot.DateMap{}
	navigated := false

	for _, offset := range s.dateOffsets {
		target := s.now().AddDate(0, 0, offset)
		date := target.Format("2006-01-02")
		slog.Info("Checking date", "date", date, "offset", offset)

		if !sess.GoToDate(target) {
			slog.Warn("Failed to navigate to date", "date", date)
			continue
		}
		navigated = true

		records, err := sess.ExtractSlots(date)
		if err != nil {
			slog.Error("Extraction failed", "date", date, "error", err)
			continue
		}
		slog.Info("Scan finished", "date", date, "slots", len(records))
		merged.Merge(slot.DateMap{date: records})
	}

	if !navigated {
		slog.Warn("Date navigation failed for all dates, falling back to current page scan")
		date := s.now().Format("2006-01-02")
		records, err := sess.ExtractSlots(date)
		if err != nil {
			slog.Error("Fallback extraction failed", "error", err)
			return merged
		}
		if len(records) > 0 {
			merged.Merge(slot.DateMap{date: records})
		}
	}
	return merged
}

// sleepInterruptible waits out a duration in small ticks so Stop takes effect
// within a tick rather than at the end of a long sleep.
func (s *Scheduler) sleepInterruptible(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		select {
		case <-s.stopCh:
			return
		case <-time.After(s.tick):
		}
	}
}
