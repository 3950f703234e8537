// Package browser drives Chromium through Playwright for the form checks.
//
// A SessionManager owns the Playwright driver process. Each Session wraps one
// browser, its context and the page under test, and exposes the small set of
// primitive actions a scenario needs: navigation, waiting for a selector,
// filling, typing key by key, reading input values, selecting options,
// clicking buttons by accessible name and capturing screenshots.
//
// # Session Lifecycle
//
//  1. Initialize: start (and optionally install) the Playwright driver
//  2. StartSession: launch Chromium and open a page
//  3. Use: the scenario runner calls Session methods in order
//  4. Close: CloseSession or Shutdown releases the browser
//
// # Example Usage
//
//	manager := browser.NewSessionManager()
//	if err := manager.Initialize(true); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("osa", browser.SessionOptions{
//	    Headless: true,
//	})
//	err = session.Goto("http://localhost:3000/get-officials", 0)
//	err = session.Type("#billingPhone", "4035551234", 50*time.Millisecond)
//	value, err := session.InputValue("#billingPhone")
package browser
