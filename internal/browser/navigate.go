package browser

import (
	"log/slog"
	"strings"
	"time"

	"courtwatch/pkg/extract"
)

var nextDaySelectors = []string{
	`button[class*='next']`,
	`button[class*='arrow']`,
	`button[class*='forward']`,
	`a[class*='next']`,
	`div[class*='next']`,
	`button[title*='next']`,
	`button[aria-label*='next']`,
}

var dateInputSelectors = []string{
	`input[type='date']`,
	`input[class*='date']`,
}

// GoToDate tries to bring the booking calendar to the target date. Strategies
// run in order, first success wins: click a control labelled with the date,
// click a generic next-day control, or set a native date input. A false
// return means the caller should fall back to whatever is rendered; it is
// never fatal.
func (s *Session) GoToDate(target time.Time) bool {
	strategies := []struct {
		name string
		run  func(time.Time) (bool, error)
	}{
		{"date toggle", s.clickDateToggle},
		{"next-day control", s.clickNextDay},
		{"date input", s.fillDateInput},
	}

	for _, strat := range strategies {
		ok, err := strat.run(target)
		if err != nil {
			slog.Debug("Date navigation strategy failed", "strategy", strat.name, "error", err)
			continue
		}
		if ok {
			slog.Info("Navigated to date", "date", target.Format("2006-01-02"), "strategy", strat.name)
			return true
		}
	}

	slog.Warn("Could not find date toggle", "date", target.Format("2006-01-02"))
	return false
}

// clickDateToggle looks for a clickable element whose text contains the
// target date in one of its common rendered forms.
func (s *Session) clickDateToggle(target time.Time) (bool, error) {
	elems, err := s.Buttons()
	if err != nil {
		return false, err
	}
	for _, candidate := range extract.DateTexts(target) {
		if el, ok := findByText(elems, candidate); ok {
			if err := s.ClickNode(el.Node); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *Session) clickNextDay(time.Time) (bool, error) {
	return s.ClickFirst(nextDaySelectors)
}

func (s *Session) fillDateInput(target time.Time) (bool, error) {
	return s.SetValue(dateInputSelectors, target.Format("2006-01-02"))
}

func findByText(elems []extract.Element, text string) (extract.Element, bool) {
	for _, el := range elems {
		if el.Displayed && el.Enabled && strings.Contains(el.Text, text) {
			return el, true
		}
	}
	return extract.Element{}, false
}
