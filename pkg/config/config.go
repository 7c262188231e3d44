package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Options holds the process-wide settings, populated from flags and
// environment variables.
type Options struct {
	Facility        string `long:"facility" env:"COURTWATCH_FACILITY" default:"BTC" description:"Facility profile to monitor (BTC or UBC)"`
	IntervalMinutes int    `long:"interval" env:"COURTWATCH_INTERVAL" default:"5" description:"Minutes between scans in monitor mode"`
	TimeslotSeconds int    `long:"timeslot-interval" env:"COURTWATCH_TIMESLOT_INTERVAL" default:"30" description:"Seconds between scans in timeslot mode"`
	MaxAttempts     int    `long:"max-attempts" env:"COURTWATCH_MAX_ATTEMPTS" default:"0" description:"Maximum number of scan attempts (0 = unlimited)"`
	Headless        bool   `long:"headless" env:"COURTWATCH_HEADLESS" description:"Run the browser headless"`
	PageTimeout     int    `long:"page-timeout" env:"COURTWATCH_PAGE_TIMEOUT" default:"15" description:"Page load timeout in seconds"`
	SaveReports     bool   `long:"save" env:"COURTWATCH_SAVE" description:"Write each non-empty scan to a JSON report file"`
	ReportsDir      string `long:"reports-dir" env:"COURTWATCH_REPORTS_DIR" default:"reports" description:"Directory for scan report files"`
	Times           string `long:"times" env:"COURTWATCH_TIMES" description:"Comma-separated time labels to watch in timeslot mode (e.g. '6:00 am,7:00 am')"`
	NoNotify        bool   `long:"no-notify" description:"Disable remote notifications"`
	Debug           bool   `long:"debug" env:"COURTWATCH_DEBUG" description:"Enable debug logging"`

	Args struct {
		Mode string `positional-arg-name:"mode" description:"scan, monitor, timeslots or notify-test"`
	} `positional-args:"yes"`
}

// Load parses flags and environment into Options. A nil Options with a nil
// error means help was requested.
func Load(args []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if opts.Args.Mode == "" {
		opts.Args.Mode = "monitor"
	}
	return &opts, nil
}

// Interval returns the monitor-mode scan interval.
func (o *Options) Interval() time.Duration {
	return time.Duration(o.IntervalMinutes) * time.Minute
}

// TimeslotInterval returns the timeslot-mode scan interval.
func (o *Options) TimeslotInterval() time.Duration {
	return time.Duration(o.TimeslotSeconds) * time.Second
}

// WantedTimes splits the --times filter into trimmed labels.
func (o *Options) WantedTimes() []string {
	if strings.TrimSpace(o.Times) == "" {
		return nil
	}
	parts := strings.Split(o.Times, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Credentials carries the facility-scoped secrets and notification targets,
// read from environment variables under the profile's prefix.
type Credentials struct {
	Username          string
	Password          string
	NotificationEmail string
	PhoneNumber       string
	SMTPEmail         string
	SMTPPassword      string
	SendGridAPIKey    string
}

// LoadCredentials reads the prefixed environment keys for a profile, e.g.
// BTC_USERNAME, BTC_PASSWORD, BTC_NOTIFICATION_EMAIL.
func LoadCredentials(prefix string) Credentials {
	get := func(key string) string { return os.Getenv(prefix + "_" + key) }
	return Credentials{
		Username:          get("USERNAME"),
		Password:          get("PASSWORD"),
		NotificationEmail: get("NOTIFICATION_EMAIL"),
		PhoneNumber:       get("PHONE_NUMBER"),
		SMTPEmail:         get("GMAIL_APP_EMAIL"),
		SMTPPassword:      get("GMAIL_APP_PASSWORD"),
		SendGridAPIKey:    get("SENDGRID_API_KEY"),
	}
}

// Missing lists the credential keys required for notifications that are not
// set. Login credentials are not required: some facilities allow anonymous
// browsing of the booking calendar.
func (c Credentials) Missing() []string {
	var missing []string
	if c.NotificationEmail == "" {
		missing = append(missing, "NOTIFICATION_EMAIL")
	}
	if c.SMTPEmail == "" && c.SendGridAPIKey == "" {
		missing = append(missing, "GMAIL_APP_EMAIL")
	}
	if c.SMTPPassword == "" && c.SendGridAPIKey == "" {
		missing = append(missing, "GMAIL_APP_PASSWORD")
	}
	return missing
}

// Sender returns the identity used as the mail From address.
func (c Credentials) Sender() string {
	if c.SMTPEmail != "" {
		return c.SMTPEmail
	}
	return c.NotificationEmail
}
