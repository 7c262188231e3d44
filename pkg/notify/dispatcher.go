package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"courtwatch/pkg/config"
	"courtwatch/pkg/slot"
)

// Past this many cached batch keys the cache is pruned to the newest half,
// so a long-running process does not accumulate keys forever.
const dedupLimit = 100

// Dispatcher delivers a batch of newly available slots over the configured
// channels in order: email, SMS gateways, and always the local console sink
// as a durability backstop. A batch with a dedup key it has already handled
// is silently dropped.
type Dispatcher struct {
	relay    Relay
	profile  config.Profile
	creds    config.Credentials
	console  io.Writer
	noNotify bool

	sent  map[string]struct{}
	order []string

	now func() time.Time
}

// NewDispatcher wires a dispatcher for one facility. Pass nil console to
// write the backstop to stdout.
func NewDispatcher(relay Relay, profile config.Profile, creds config.Credentials, console io.Writer, noNotify bool) *Dispatcher {
	if console == nil {
		console = os.Stdout
	}
	return &Dispatcher{
		relay:    relay,
		profile:  profile,
		creds:    creds,
		console:  console,
		noNotify: noNotify,
		sent:     make(map[string]struct{}),
		now:      time.Now,
	}
}

// DedupKey identifies a batch by the sorted identities of every slot in it,
// so a second attempt with byte-identical content never re-sends.
func DedupKey(batch slot.DateMap) string {
	var ids []string
	for _, records := range batch {
		for _, r := range records {
			ids = append(ids, slot.Identity(r))
		}
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// Notify delivers the batch. It returns true on every path where the
// information reached at least the local sink; only an escaped panic yields
// false.
func (d *Dispatcher) Notify(batch slot.DateMap) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("❌ Panic during notification dispatch", "panic", r)
			ok = false
		}
	}()

	if batch.Total() == 0 {
		return true
	}

	key := DedupKey(batch)
	if _, seen := d.sent[key]; seen {
		slog.Info("Notification already sent for this court combination", "key", key)
		return true
	}

	delivered := false
	if d.noNotify {
		slog.Info("📱 Remote notifications skipped (--no-notify)")
	} else {
		if d.sendEmail(batch) {
			delivered = true
		}
		if d.sendSMS(batch) {
			delivered = true
		}
	}

	// The batch always lands in the local sink, whatever the remote channels
	// did, so a dead relay never loses the information.
	d.writeConsole(batch)
	if !delivered {
		slog.Warn("All remote channels failed, batch written to local sink only")
	}

	d.record(key)
	return true
}

func (d *Dispatcher) sendEmail(batch slot.DateMap) bool {
	if d.creds.NotificationEmail == "" {
		slog.Warn("No notification email configured, skipping email channel")
		return false
	}
	subject := EmailSubject(d.profile, batch)
	body := EmailBody(d.profile, batch, d.now())

	// One attempt only; a failing relay is not retried, the next channel
	// takes over.
	if err := d.relay.Send(d.creds.Sender(), d.creds.NotificationEmail, subject, body); err != nil {
		slog.Warn("Email channel failed", "error", err)
		return false
	}
	slog.Info("📧 Email notification sent", "to", d.creds.NotificationEmail)
	return true
}

func (d *Dispatcher) sendSMS(batch slot.DateMap) bool {
	if d.creds.PhoneNumber == "" {
		return false
	}
	body := SMSBody(d.profile, batch)
	for _, addr := range d.profile.GatewayAddresses(d.creds.PhoneNumber) {
		slog.Info("Trying SMS gateway", "gateway", addr)
		if err := d.relay.Send(d.creds.Sender(), addr, "", body); err != nil {
			slog.Warn("SMS gateway failed", "gateway", addr, "error", err)
			continue
		}
		slog.Info("📱 SMS notification sent", "gateway", addr)
		return true
	}
	return false
}

func (d *Dispatcher) writeConsole(batch slot.DateMap) {
	fmt.Fprintf(d.console, "\n🎾 %d NEW COURT SLOTS\n", batch.Total())
	fmt.Fprintln(d.console, strings.Repeat("=", 50))
	for _, date := range batch.Dates() {
		fmt.Fprintf(d.console, "📅 %s\n", prettyDate(date))
		for _, r := range batch[date] {
			fmt.Fprintf(d.console, "   %s at %s (%s)\n", r.CourtName, r.TimeLabel, r.Price)
		}
	}
	fmt.Fprintf(d.console, "🌐 %s\n", d.profile.BookingURL)
	fmt.Fprintln(d.console, strings.Repeat("=", 50))
}

func (d *Dispatcher) record(key string) {
	d.sent[key] = struct{}{}
	d.order = append(d.order, key)
	if len(d.order) > dedupLimit {
		keep := d.order[len(d.order)-dedupLimit/2:]
		pruned := make(map[string]struct{}, len(keep))
		for _, k := range keep {
			pruned[k] = struct{}{}
		}
		d.sent = pruned
		d.order = append([]string(nil), keep...)
		slog.Info("Cleared old notification keys to prevent memory buildup")
	}
}

// TestNotification pushes a synthetic two-slot batch through the full
// dispatch path so the channels can be verified end to end.
func (d *Dispatcher) TestNotification() bool {
	today := d.now().Format("2006-01-02")
	batch := slot.DateMap{
		today: {
			{CourtName: "Court 1", TimeLabel: "6:00 am", Duration: "1 hour", Price: "Unknown", Date: today, RawText: "Book 6:00 am", Interactable: true},
			{CourtName: "Court 2", TimeLabel: "7:00 am", Duration: "1 hour", Price: "Unknown", Date: today, RawText: "Book 7:00 am", Interactable: true},
		},
	}
	slog.Info("🧪 Sending test notification")
	return d.Notify(batch)
}
