package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"courtwatch/pkg/config"
	"courtwatch/pkg/extract"

	"github.com/chromedp/chromedp"
)

const settleDelay = 2 * time.Second

// Session owns a Chrome instance for the duration of one monitoring cycle.
// The scheduler acquires it at the top of a cycle and must Close it on every
// exit path.
type Session struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	ctx         context.Context
	cancelTab   context.CancelFunc
	profile     config.Profile
	pageTimeout time.Duration
}

// New starts a browser for the given facility profile.
func New(profile config.Profile, headless bool, pageTimeout time.Duration) *Session {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
	)
	if headless {
		opts = append(opts, chromedp.Headless)
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelTab := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			msg := fmt.Sprintf(format, args...)
			if (strings.Contains(msg, "error") || strings.Contains(msg, "failed")) &&
				!strings.Contains(msg, "cookiePart") &&
				!strings.Contains(msg, "unmarshal event") {
				slog.Warn("🌐 browser", "msg", msg)
			}
		}),
	)

	if pageTimeout <= 0 {
		pageTimeout = 15 * time.Second
	}

	return &Session{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		ctx:         ctx,
		cancelTab:   cancelTab,
		profile:     profile,
		pageTimeout: pageTimeout,
	}
}

// Close tears down the tab and the browser process.
func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
	slog.Info("Browser session closed")
}

func (s *Session) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Navigate loads a URL and waits for the document body.
func (s *Session) Navigate(url string) error {
	return s.run(
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// CurrentURL returns the tab's current location.
func (s *Session) CurrentURL() (string, error) {
	var url string
	if err := s.run(chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// PageText returns the visible text of the whole page.
func (s *Session) PageText() (string, error) {
	var text string
	err := s.run(chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text))
	if err != nil {
		return "", err
	}
	return text, nil
}

// Buttons snapshots every button-like element on the page in a single DOM
// query. One broad query over all clickables is deliberate: narrow selectors
// are brittle against markup this code has never seen. Each node is tagged
// with an index attribute so it can be clicked later.
func (s *Session) Buttons() ([]extract.Element, error) {
	const script = `
		(() => {
			const nodes = Array.from(document.querySelectorAll(
				"button, a, [role='button'], input[type='button'], input[type='submit']"));
			return nodes.map((el, i) => {
				el.setAttribute('data-cw-node', String(i));
				const rect = el.getBoundingClientRect();
				const style = window.getComputedStyle(el);
				return {
					text: (el.innerText || el.value || '').trim(),
					class: typeof el.className === 'string' ? el.className : '',
					id: el.id || '',
					displayed: rect.width > 0 && rect.height > 0 &&
						style.visibility !== 'hidden' && style.display !== 'none',
					enabled: !el.disabled,
					x: rect.x,
					y: rect.y,
					node: i,
				};
			});
		})()
	`
	var elems []extract.Element
	if err := s.run(chromedp.Evaluate(script, &elems)); err != nil {
		return nil, fmt.Errorf("snapshot buttons: %w", err)
	}
	return elems, nil
}

// CourtLabels snapshots the elements that name a court somewhere on the page,
// for the nearest-label association in the extractor.
func (s *Session) CourtLabels() ([]extract.Element, error) {
	const script = `
		(() => {
			const nodes = Array.from(document.querySelectorAll(
				"th, td, div, span, h1, h2, h3, h4, label"));
			const out = [];
			nodes.forEach((el, i) => {
				const text = (el.innerText || '').trim();
				if (!/court\s*[A-Z]?\d+/i.test(text) || text.length > 40) return;
				const rect = el.getBoundingClientRect();
				out.push({
					text: text,
					class: typeof el.className === 'string' ? el.className : '',
					id: el.id || '',
					displayed: rect.width > 0 && rect.height > 0,
					enabled: true,
					x: rect.x,
					y: rect.y,
					node: i,
				});
			});
			return out;
		})()
	`
	var elems []extract.Element
	if err := s.run(chromedp.Evaluate(script, &elems)); err != nil {
		return nil, fmt.Errorf("snapshot court labels: %w", err)
	}
	return elems, nil
}

// ClickNode clicks an element previously tagged by Buttons and waits a fixed
// settle delay for the page to react.
func (s *Session) ClickNode(node int) error {
	sel := fmt.Sprintf(`[data-cw-node="%d"]`, node)
	if err := s.run(chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return err
	}
	time.Sleep(settleDelay)
	return nil
}

// ClickFirst clicks the first visible element matching any of the selectors.
// Not finding one is an expected outcome, not an error.
func (s *Session) ClickFirst(selectors []string) (bool, error) {
	sel, ok, err := s.firstVisible(selectors)
	if err != nil || !ok {
		return false, err
	}
	if err := s.run(chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return false, err
	}
	time.Sleep(settleDelay)
	return true, nil
}

// SetValue writes a value into the first visible element matching any of the
// selectors, for native date inputs and login fields.
func (s *Session) SetValue(selectors []string, value string) (bool, error) {
	sel, ok, err := s.firstVisible(selectors)
	if err != nil || !ok {
		return false, err
	}
	err = s.run(
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

// firstVisible probes a selector chain and reports the first one that matches
// a visible element on the page.
func (s *Session) firstVisible(selectors []string) (string, bool, error) {
	const script = `
		((selectors) => {
			for (const sel of selectors) {
				let el;
				try { el = document.querySelector(sel); } catch (e) { continue; }
				if (!el) continue;
				const rect = el.getBoundingClientRect();
				if (rect.width > 0 && rect.height > 0) return sel;
			}
			return '';
		})(%s)
	`
	quoted := make([]string, len(selectors))
	for i, sel := range selectors {
		quoted[i] = fmt.Sprintf("%q", sel)
	}
	js := fmt.Sprintf(script, "["+strings.Join(quoted, ",")+"]")

	var match string
	if err := s.run(chromedp.Evaluate(js, &match)); err != nil {
		return "", false, err
	}
	return match, match != "", nil
}
