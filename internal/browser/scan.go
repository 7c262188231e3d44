package browser

import (
	"log/slog"

	"courtwatch/pkg/extract"
	"courtwatch/pkg/slot"
)

// ExtractSlots snapshots the current page and extracts the bookable slots for
// the given calendar date. Per-element parse failures are absorbed by the
// extractor; only a failed page snapshot surfaces as an error.
func (s *Session) ExtractSlots(date string) ([]slot.Record, error) {
	elems, err := s.Buttons()
	if err != nil {
		return nil, err
	}
	slog.Debug("Snapshot taken", "buttons", len(elems))

	labels, err := s.CourtLabels()
	if err != nil {
		// The nearest-label fallback is optional; extraction still works
		// from button text alone.
		slog.Debug("Court label snapshot failed", "error", err)
		labels = nil
	}

	records := extract.Extract(elems, labels, date, s.profile.FalsePositives)
	for _, r := range records {
		slog.Info("Found booking button", "court", r.CourtName, "time", r.TimeLabel, "text", r.RawText)
	}
	return records, nil
}

// BookingURL exposes the profile's booking page address.
func (s *Session) BookingURL() string {
	return s.profile.BookingURL
}
