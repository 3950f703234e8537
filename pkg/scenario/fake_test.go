package scenario

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/osa-formcheck/pkg/mask"
)

// fakeDriver emulates the OSA wizard: each Next click reveals the next
// step's fields, and typed values pass through the field's mask.
type fakeDriver struct {
	steps  [][]string
	step   int
	masks  map[string]mask.Kind
	values map[string]string

	// failures maps "op selector" to the error that call returns
	failures map[string]error
	// noButton disables the Next button on the listed steps
	noButton map[int]bool

	calls       []string
	screenshots []string
	closed      int
}

func newOSAFake() *fakeDriver {
	return &fakeDriver{
		steps: [][]string{
			{"#organizationName"},
			{"#billingContactName", "#billingEmail", "#billingPhone", "#billingAddress", "#billingCity", "#billingProvince", "#billingPostalCode"},
			{"#eventContactName", "#eventContactEmail", "#eventContactPhone"},
		},
		masks: map[string]mask.Kind{
			"#billingPhone":      mask.KindPhone,
			"#billingPostalCode": mask.KindPostalCode,
			"#eventContactPhone": mask.KindPhone,
		},
		values:   make(map[string]string),
		failures: make(map[string]error),
		noButton: make(map[int]bool),
	}
}

func (f *fakeDriver) record(op, arg string) error {
	f.calls = append(f.calls, op+" "+arg)
	return f.failures[op+" "+arg]
}

func (f *fakeDriver) visible(selector string) bool {
	if f.step >= len(f.steps) {
		return false
	}
	for _, s := range f.steps[f.step] {
		if s == selector {
			return true
		}
	}
	return false
}

func (f *fakeDriver) Goto(url string, timeout time.Duration) error {
	return f.record("goto", url)
}

func (f *fakeDriver) Evaluate(script string) error {
	return f.record("eval", script)
}

func (f *fakeDriver) WaitFor(selector string, timeout time.Duration) error {
	if err := f.record("wait", selector); err != nil {
		return err
	}
	if !f.visible(selector) {
		return fmt.Errorf("timeout %s exceeded waiting for %s", timeout, selector)
	}
	return nil
}

func (f *fakeDriver) Fill(selector, value string) error {
	if err := f.record("fill", selector); err != nil {
		return err
	}
	if !f.visible(selector) {
		return fmt.Errorf("element %s not found", selector)
	}
	f.values[selector] = mask.Apply(f.masks[selector], value)
	return nil
}

func (f *fakeDriver) Type(selector, text string, delay time.Duration) error {
	if err := f.record("type", selector); err != nil {
		return err
	}
	if !f.visible(selector) {
		return fmt.Errorf("element %s not found", selector)
	}
	for _, r := range text {
		f.values[selector] = mask.Apply(f.masks[selector], f.values[selector]+string(r))
	}
	return nil
}

func (f *fakeDriver) InputValue(selector string) (string, error) {
	if err := f.record("value", selector); err != nil {
		return "", err
	}
	if !f.visible(selector) {
		return "", fmt.Errorf("element %s not found", selector)
	}
	return f.values[selector], nil
}

func (f *fakeDriver) SelectOption(selector, value string) error {
	if err := f.record("select", selector); err != nil {
		return err
	}
	if !f.visible(selector) {
		return fmt.Errorf("element %s not found", selector)
	}
	f.values[selector] = value
	return nil
}

func (f *fakeDriver) ClickButton(name string) error {
	if err := f.record("click", name); err != nil {
		return err
	}
	if f.noButton[f.step] || f.step >= len(f.steps)-1 {
		return fmt.Errorf("button %q not found", name)
	}
	f.step++
	return nil
}

func (f *fakeDriver) Screenshot(path string) error {
	if err := f.record("screenshot", path); err != nil {
		return err
	}
	f.screenshots = append(f.screenshots, path)
	return nil
}

func (f *fakeDriver) Content() (string, error) {
	if err := f.record("content", ""); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<html><body><form>")
	if f.step < len(f.steps) {
		for _, sel := range f.steps[f.step] {
			id := strings.TrimPrefix(sel, "#")
			if id == "billingProvince" {
				fmt.Fprintf(&b, `<select id="%s"><option value="AB">Alberta</option></select>`, id)
				continue
			}
			fmt.Fprintf(&b, `<input id="%s">`, id)
		}
	}
	b.WriteString("</form></body></html>")
	return b.String(), nil
}

func (f *fakeDriver) Close() error {
	f.closed++
	return nil
}

// recordingReporter keeps every line it is given.
type recordingReporter struct {
	mu      sync.Mutex
	lines   []string
	summary *Result
}

func (r *recordingReporter) add(kind, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, kind+": "+fmt.Sprintf(format, args...))
}

func (r *recordingReporter) Header(message string) { r.add("header", "%s", message) }
func (r *recordingReporter) Section(title string) { r.add("section", "%s", title) }
func (r *recordingReporter) Infof(format string, args ...interface{}) { r.add("info", format, args...) }
func (r *recordingReporter) Warningf(format string, args ...interface{}) { r.add("warn", format, args...) }
func (r *recordingReporter) Pass(format string, args ...interface{}) { r.add("pass", format, args...) }
func (r *recordingReporter) Fail(format string, args ...interface{}) { r.add("fail", format, args...) }
func (r *recordingReporter) Note(format string, args ...interface{}) { r.add("note", format, args...) }
func (r *recordingReporter) Summary(result *Result) { r.summary = result }

func (r *recordingReporter) count(kind string) int {
	n := 0
	for _, l := range r.lines {
		if strings.HasPrefix(l, kind+": ") {
			n++
		}
	}
	return n
}

// sleepRecorder replaces real sleeps in tests.
type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.slept = append(s.slept, d)
	return nil
}
