package fixture

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/osa-formcheck/pkg/domcheck"
	"github.com/entrhq/osa-formcheck/pkg/mask"
)

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHandler_Page(t *testing.T) {
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)

	resp, body := get(t, server.Client(), server.URL+PagePath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	snap, err := domcheck.ParseString(body)
	require.NoError(t, err)
	assert.True(t, snap.Has("osaForm"))
	assert.True(t, snap.Has("stepIndicator"))

	// Fields are rendered by script, one step at a time.
	assert.False(t, snap.Has("organizationName"))
	for _, id := range []string{
		"organizationName",
		"billingContactName", "billingEmail", "billingPhone", "billingAddress",
		"billingCity", "billingProvince", "billingPostalCode",
		"eventContactName", "eventContactEmail", "eventContactPhone",
	} {
		assert.Contains(t, body, `"`+id+`"`, "page script should render %s", id)
	}
	assert.Contains(t, body, `"AB"`)
	assert.Contains(t, body, `>Next</button>`)
}

func TestHandler_Static(t *testing.T) {
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)

	resp, body := get(t, server.Client(), server.URL+"/static/masks.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "function formatPhoneNumber")

	resp, _ = get(t, server.Client(), server.URL+"/static/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_RootRedirect(t *testing.T) {
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)

	client := server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, _ := get(t, client, server.URL+"/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, PagePath, resp.Header.Get("Location"))

	resp, _ = get(t, client, server.URL+"/other")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	server := httptest.NewServer(Handler())
	t.Cleanup(server.Close)

	resp, err := server.Client().Post(server.URL+PagePath, "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStartAndClose(t *testing.T) {
	srv, err := Start("127.0.0.1:0")
	require.NoError(t, err)
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+$`, srv.URL)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, _ := get(t, client, srv.URL+PagePath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Close(ctx))

	_, err = client.Get(srv.URL + PagePath)
	assert.Error(t, err)
}

func TestStart_BadAddress(t *testing.T) {
	_, err := Start("127.0.0.1:-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

// loadMasks evaluates the page's formatter script.
func loadMasks(t *testing.T) (phone, postal func(string) string) {
	t.Helper()
	src, err := fs.ReadFile(Assets(), "masks.js")
	require.NoError(t, err)

	vm := goja.New()
	_, err = vm.RunString(string(src))
	require.NoError(t, err)

	wrap := func(name string) func(string) string {
		fn, ok := goja.AssertFunction(vm.Get(name))
		require.True(t, ok, "%s is not a function", name)
		return func(s string) string {
			v, err := fn(goja.Undefined(), vm.ToValue(s))
			require.NoError(t, err)
			return v.String()
		}
	}
	return wrap("formatPhoneNumber"), wrap("formatPostalCode")
}

// typeInto replays input one keystroke at a time through format, the way
// the page's input handler sees it.
func typeInto(format func(string) string, input string) []string {
	var states []string
	current := ""
	for _, r := range input {
		current = format(current + string(r))
		states = append(states, current)
	}
	return states
}

func TestMasks_MatchGoFormatters(t *testing.T) {
	phone, postal := loadMasks(t)

	tests := []struct {
		kind   mask.Kind
		format func(string) string
		input  string
	}{
		{mask.KindPhone, phone, "4035551234"},
		{mask.KindPhone, phone, "7801234567"},
		{mask.KindPhone, phone, "403-555-1234 ext 9"},
		{mask.KindPhone, phone, "1"},
		{mask.KindPostalCode, postal, "t2p1a1"},
		{mask.KindPostalCode, postal, "a1b2c3"},
		{mask.KindPostalCode, postal, "t2p 1a1 extra"},
		{mask.KindPostalCode, postal, "k1a"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, mask.Progressive(tt.kind, tt.input), typeInto(tt.format, tt.input))
			assert.Equal(t, mask.Apply(tt.kind, tt.input), tt.format(tt.input))
		})
	}
}

func TestMasks_ExpectedValues(t *testing.T) {
	phone, postal := loadMasks(t)

	assert.Equal(t, "(403) 555-1234", phone("4035551234"))
	assert.Equal(t, "(780) 123-4567", phone("7801234567"))
	assert.Equal(t, "T2P 1A1", postal("t2p1a1"))
	assert.Equal(t, "A1B 2C3", postal("a1b2c3"))
}
