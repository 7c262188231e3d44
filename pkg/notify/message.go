package notify

import (
	"fmt"
	"strings"
	"time"

	"courtwatch/pkg/config"
	"courtwatch/pkg/slot"
)

const smsSlotLimit = 3

// EmailSubject renders the alert subject line for a batch.
func EmailSubject(profile config.Profile, batch slot.DateMap) string {
	return fmt.Sprintf("🎾 %s Courts Available - %d slots found!", profile.Name, batch.Total())
}

// EmailBody renders the full alert: a count header, slots grouped by date as
// "court at time (price)", and the booking link as the call to action.
func EmailBody(profile config.Profile, batch slot.DateMap, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎾 %s - COURTS AVAILABLE! 🎾\n\n", strings.ToUpper(profile.DisplayName))
	fmt.Fprintf(&b, "Great news! %d court slots have become available:\n", batch.Total())

	counter := 1
	for _, date := range batch.Dates() {
		fmt.Fprintf(&b, "\n📅 %s:\n", prettyDate(date))
		for _, r := range batch[date] {
			timeLabel := r.TimeLabel
			if timeLabel == "" {
				timeLabel = "N/A"
			}
			fmt.Fprintf(&b, "   %d. %s at %s (%s)\n", counter, r.CourtName, timeLabel, r.Price)
			counter++
		}
	}

	fmt.Fprintf(&b, "\n⏰ Time: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "🌐 Booking URL: %s\n", profile.BookingURL)
	b.WriteString("\nHurry up and book your court! 🏃\n\n---\ncourtwatch 🤖\n")
	return b.String()
}

// SMSBody renders the short alert: the count, at most three slot times, an
// overflow suffix, and the booking link.
func SMSBody(profile config.Profile, batch slot.DateMap) string {
	total := batch.Total()
	var b strings.Builder
	fmt.Fprintf(&b, "🎾 %s: %d courts available! ", profile.Name, total)

	shown := 0
	for _, t := range batch.Times() {
		if shown >= smsSlotLimit {
			break
		}
		b.WriteString(t)
		b.WriteString(" ")
		shown++
	}
	if total > smsSlotLimit {
		fmt.Fprintf(&b, "+%d more ", total-smsSlotLimit)
	}
	fmt.Fprintf(&b, "Book: %s", profile.BookingURL)
	return b.String()
}

func prettyDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}
