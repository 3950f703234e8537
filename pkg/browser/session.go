package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Goto navigates the page and waits for the session's load state.
func (s *Session) Goto(url string, timeout time.Duration) error {
	waitUntil := playwright.WaitUntilState(s.WaitUntil)
	opts := playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
	}
	if timeout > 0 {
		opts.Timeout = playwright.Float(milliseconds(timeout))
	}

	if _, err := s.Page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// Evaluate runs a JavaScript expression in the page and discards its result.
func (s *Session) Evaluate(script string) error {
	if _, err := s.Page.Evaluate(script); err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}
	return nil
}

// WaitFor waits until an element matching selector is visible.
func (s *Session) WaitFor(selector string, timeout time.Duration) error {
	if selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	opts := playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateVisible,
	}
	if timeout > 0 {
		opts.Timeout = playwright.Float(milliseconds(timeout))
	}

	if err := s.Page.Locator(selector).WaitFor(opts); err != nil {
		return fmt.Errorf("wait for %s failed: %w", selector, err)
	}
	return nil
}

// Fill replaces the value of an input in one step.
func (s *Session) Fill(selector, value string) error {
	if err := s.Page.Locator(selector).Fill(value); err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

// Type sends text one key at a time so the page sees every input event.
func (s *Session) Type(selector, text string, delay time.Duration) error {
	opts := playwright.LocatorPressSequentiallyOptions{}
	if delay > 0 {
		opts.Delay = playwright.Float(milliseconds(delay))
	}

	if err := s.Page.Locator(selector).PressSequentially(text, opts); err != nil {
		return fmt.Errorf("type into %s failed: %w", selector, err)
	}
	return nil
}

// InputValue reads the current value of an input, textarea or select.
func (s *Session) InputValue(selector string) (string, error) {
	value, err := s.Page.Locator(selector).InputValue()
	if err != nil {
		return "", fmt.Errorf("read value of %s failed: %w", selector, err)
	}
	return value, nil
}

// SelectOption selects the option with the given value in a select element.
func (s *Session) SelectOption(selector, value string) error {
	_, err := s.Page.Locator(selector).SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
	if err != nil {
		return fmt.Errorf("select %q in %s failed: %w", value, selector, err)
	}
	return nil
}

// ClickButton clicks the button whose accessible name is exactly name.
func (s *Session) ClickButton(name string) error {
	button := s.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(true),
	})
	if err := button.Click(); err != nil {
		return fmt.Errorf("click button %q failed: %w", name, err)
	}

	// Update current URL in case click caused navigation
	s.CurrentURL = s.Page.URL()
	return nil
}

// Screenshot writes a full page PNG to path.
func (s *Session) Screenshot(path string) error {
	_, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// Content returns the rendered HTML of the page.
func (s *Session) Content() (string, error) {
	html, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}
	return html, nil
}

// Close releases the page, context and browser. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.Page.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.Context.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, err)
		}
		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors closing session %q: %w", s.Name, errors.Join(errs...))
		}
	})
	return s.closeErr
}
