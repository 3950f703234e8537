// Package rodbrowser is a go-rod implementation of the browser actions the
// form checks need. It drives a locally installed Chrome or Chromium over
// the DevTools protocol and does not need the Playwright driver.
package rodbrowser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the launched browser.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Bin is an explicit browser binary. Empty lets the launcher find or
	// download one.
	Bin string

	// Timeout bounds actions that have no timeout of their own
	Timeout time.Duration

	// Width and Height set the viewport. Zero uses 1280x720.
	Width  int
	Height int
}

// Session is one launched browser with the page under test.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Start launches the browser, connects to it and opens a blank page.
func Start(ctx context.Context, opts Options) (*Session, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1280, 720
	}

	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	return &Session{
		launcher: l,
		browser:  browser,
		page:     page,
		timeout:  opts.Timeout,
	}, nil
}

// Goto navigates and waits for DOMContentLoaded.
func (s *Session) Goto(url string, timeout time.Duration) error {
	if timeout == 0 {
		timeout = s.timeout
	}
	page := s.page.Timeout(timeout)

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	wait()
	return nil
}

// Evaluate runs a JavaScript expression or function in the page.
func (s *Session) Evaluate(script string) error {
	if _, err := s.page.Timeout(s.timeout).Eval(script); err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}
	return nil
}

// WaitFor waits until an element matching selector exists and is visible.
func (s *Session) WaitFor(selector string, timeout time.Duration) error {
	if selector == "" {
		return fmt.Errorf("selector is required for wait")
	}
	if timeout == 0 {
		timeout = s.timeout
	}

	el, err := s.page.Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("wait for %s failed: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("wait for %s failed: %w", selector, err)
	}
	return nil
}

// Fill clears the input and inserts value in one step.
func (s *Session) Fill(selector, value string) error {
	el, err := s.element(selector)
	if err != nil {
		return err
	}
	if err := s.clear(el); err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	if value == "" {
		return nil
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

// Type focuses the element and presses one key per character, pausing
// delay between keys.
func (s *Session) Type(selector, text string, delay time.Duration) error {
	el, err := s.element(selector)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("type into %s failed: %w", selector, err)
	}

	for _, r := range text {
		if isTypeable(r) {
			err = s.page.Keyboard.Type(input.Key(r))
		} else {
			err = s.page.InsertText(string(r))
		}
		if err != nil {
			return fmt.Errorf("type into %s failed: %w", selector, err)
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}

// InputValue reads the element's value property.
func (s *Session) InputValue(selector string) (string, error) {
	el, err := s.element(selector)
	if err != nil {
		return "", err
	}
	res, err := el.Eval(`() => this.value`)
	if err != nil {
		return "", fmt.Errorf("read value of %s failed: %w", selector, err)
	}
	return res.Value.Str(), nil
}

// SelectOption selects the option whose value attribute equals value.
func (s *Session) SelectOption(selector, value string) error {
	el, err := s.element(selector)
	if err != nil {
		return err
	}
	if err := el.Select([]string{optionSelector(value)}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("select %q in %s failed: %w", value, selector, err)
	}
	return nil
}

// ClickButton clicks the first button whose text is exactly name.
func (s *Session) ClickButton(name string) error {
	el, err := s.page.Timeout(s.timeout).ElementR("button", buttonPattern(name))
	if err != nil {
		return fmt.Errorf("click button %q failed: %w", name, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click button %q failed: %w", name, err)
	}
	return nil
}

// Screenshot writes a full page PNG to path.
func (s *Session) Screenshot(path string) error {
	data, err := s.page.Screenshot(true, nil)
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

// Content returns the rendered HTML of the page.
func (s *Session) Content() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}
	return html, nil
}

// Close closes the browser and removes the launcher's profile directory.
// Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors closing browser: %w", errors.Join(errs...))
		}
	})
	return s.closeErr
}

func (s *Session) element(selector string) (*rod.Element, error) {
	el, err := s.page.Timeout(s.timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element %s not found: %w", selector, err)
	}
	return el, nil
}

// clear selects the element's text and deletes it with a key press so
// the page receives an input event.
func (s *Session) clear(el *rod.Element) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return s.page.Keyboard.Type(input.Backspace)
}

func isTypeable(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ' '
}

func optionSelector(value string) string {
	return `option[value="` + value + `"]`
}

// buttonPattern anchors name so "Next" does not match "Next.js".
func buttonPattern(name string) string {
	return "^" + regexp.QuoteMeta(name) + "$"
}
