package browser

import (
	"log/slog"
	"strings"
	"time"

	"courtwatch/pkg/config"
)

var usernameSelectors = []string{
	`input[type='email']`,
	`input[name='email']`,
	`input[name='username']`,
	`input[name='user']`,
	`input[id*='email']`,
	`input[id*='username']`,
	`input[placeholder*='email']`,
	`input[placeholder*='Email']`,
}

var passwordSelectors = []string{
	`input[type='password']`,
	`input[name='password']`,
	`input[name='pass']`,
	`input[id*='password']`,
}

var submitSelectors = []string{
	`button[type='submit']`,
	`input[type='submit']`,
	`button[class*='login']`,
	`button[class*='submit']`,
	`button[id*='login']`,
}

var loginSuccessTokens = []string{
	"logout", "sign out", "profile", "dashboard", "welcome",
	"my account", "account", "user menu",
}

// Login walks the profile's candidate login URLs and tries to authenticate on
// each until one works. Missing credentials skip login entirely; a failed
// login is reported but callers proceed anyway, since some facilities allow
// anonymous browsing of the calendar.
func (s *Session) Login(creds config.Credentials) bool {
	if creds.Username == "" || creds.Password == "" {
		slog.Warn("No login credentials provided, skipping login")
		return true
	}

	for _, url := range s.profile.LoginURLs {
		slog.Info("Trying login URL", "url", url)
		if err := s.Navigate(url); err != nil {
			slog.Debug("Login page failed to load", "url", url, "error", err)
			continue
		}
		ok, err := s.attemptLogin(creds)
		if err != nil {
			slog.Debug("Login attempt failed", "url", url, "error", err)
			continue
		}
		if ok {
			slog.Info("Login successful")
			return true
		}
	}

	slog.Warn("Could not find login form or login failed")
	return false
}

func (s *Session) attemptLogin(creds config.Credentials) (bool, error) {
	if ok, err := s.SetValue(usernameSelectors, creds.Username); err != nil || !ok {
		return false, err
	}
	if ok, err := s.SetValue(passwordSelectors, creds.Password); err != nil || !ok {
		return false, err
	}
	if ok, err := s.ClickFirst(submitSelectors); err != nil || !ok {
		return false, err
	}
	time.Sleep(settleDelay)
	return s.loginSucceeded(), nil
}

// loginSucceeded treats a redirect off the login page, a success token on the
// page, or reaching the booking surface as logged in.
func (s *Session) loginSucceeded() bool {
	url, err := s.CurrentURL()
	if err != nil {
		return false
	}
	lowered := strings.ToLower(url)
	if !strings.Contains(lowered, "login") && !strings.Contains(lowered, "signin") {
		return true
	}
	if strings.Contains(lowered, "booking") || strings.Contains(lowered, "grid") {
		return true
	}

	text, err := s.PageText()
	if err != nil {
		return false
	}
	page := strings.ToLower(text)
	for _, token := range loginSuccessTokens {
		if strings.Contains(page, token) {
			return true
		}
	}
	return false
}
