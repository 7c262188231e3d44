package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"courtwatch/internal/browser"
	"courtwatch/internal/monitor"
	"courtwatch/pkg/config"
	"courtwatch/pkg/notify"
	"courtwatch/pkg/slot"
)

func main() {
	opts, err := config.Load(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	if opts == nil { // help requested
		return
	}

	setupLogging(opts.Debug)

	profile, err := config.ProfileFor(opts.Facility)
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	creds := config.LoadCredentials(profile.EnvPrefix)
	noNotify := opts.NoNotify
	if missing := creds.Missing(); len(missing) > 0 {
		slog.Warn("⚠️ Notification credentials not set properly, remote notifications disabled",
			"missing", strings.Join(missing, ", "), "prefix", profile.EnvPrefix)
		noNotify = true
	}

	relay := notify.RelayFor(profile, creds)
	dispatcher := notify.NewDispatcher(relay, profile, creds, nil, noNotify)

	mode := strings.ToLower(opts.Args.Mode)
	if mode == "" {
		mode = "monitor"
	}

	if mode == "notify-test" {
		if !dispatcher.TestNotification() {
			slog.Error("Notification test failed")
			os.Exit(1)
		}
		return
	}

	params := monitor.Params{
		Profile:     profile,
		Credentials: creds,
		Tracker:     slot.NewTracker(),
		Notifier:    dispatcher,
		NewSession: func() monitor.Gateway {
			return browser.New(profile, opts.Headless, time.Duration(opts.PageTimeout)*time.Second)
		},
		MaxAttempts: opts.MaxAttempts,
		SaveReports: opts.SaveReports,
		ReportsDir:  opts.ReportsDir,
	}

	switch mode {
	case "scan":
		params.Interval = opts.Interval()
		params.MaxAttempts = 1
	case "monitor":
		params.Interval = opts.Interval()
		params.Backoff = time.Minute
	case "timeslots":
		// Faster cadence watching tomorrow only, optionally filtered to the
		// time labels the user cares about.
		params.Interval = opts.TimeslotInterval()
		params.Backoff = 10 * time.Second
		params.DateOffsets = []int{1}
		params.WantedTimes = opts.WantedTimes()
	default:
		slog.Error("Unknown mode", "mode", mode)
		os.Exit(1)
	}

	sched := monitor.New(params)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig.String())
		sched.Stop()
	}()

	slog.Info("courtwatch started - press Ctrl+C to stop",
		"facility", profile.DisplayName, "mode", mode, "version", config.Version)
	sched.Run()
}
