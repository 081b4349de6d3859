package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sweeney/drpiro/internal/api"
	"github.com/sweeney/drpiro/internal/pins"
	"github.com/sweeney/drpiro/internal/shell"
	"github.com/sweeney/drpiro/internal/status"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type testEnv struct {
	ts      *httptest.Server
	shell   *shell.Shell
	backend *api.Fake
	clock   clockwork.FakeClock
	client  *http.Client
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	backend := api.NewFake(pins.Config{Pins: []int{18, 19, 20}, Triggered: []int{18}, Duration: 2})
	clock := clockwork.NewFakeClock()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.Config{APIURL: "http://localhost:8000", HTTPAddr: ":8080"})
	sh := shell.New(backend, shell.Options{Clock: clock, Tracker: tr})
	t.Cleanup(sh.Close)
	sh.Mount(context.Background())

	srv := New(":0", sh)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{ts: ts, shell: sh, backend: backend, clock: clock, client: client}
}

func (e *testEnv) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	assert.NilError(t, err)
	return string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, form)
	assert.NilError(t, err)
	resp.Body.Close()
	return resp
}

func (e *testEnv) postOK(t *testing.T, path string, form url.Values) {
	t.Helper()
	resp := e.post(t, path, form)
	assert.Equal(t, resp.StatusCode, http.StatusSeeOther)
	assert.Equal(t, resp.Header.Get("Location"), "/")
}

func TestIndexRendersLaunchers(t *testing.T) {
	e := newTestServer(t)
	body := e.get(t, "/")

	for _, want := range []string{"Launcher 1", "Launcher 2", "Launcher 3", "/launchers/2/fire"} {
		assert.Check(t, is.Contains(body, want))
	}
	// Pin 18 is triggered so launcher 1 starts disabled.
	assert.Check(t, is.Contains(body, `<form method="post" action="/launchers/1/fire"><button class="fire" type="submit" disabled>`))
	assert.Check(t, is.Contains(body, `<form method="post" action="/launchers/2/fire"><button class="fire" type="submit">`))
	assert.Check(t, !strings.Contains(body, "Launching"))
	assert.Check(t, !strings.Contains(body, `http-equiv="refresh"`))
	assert.Check(t, !strings.Contains(body, "Configs"))
}

func TestIndexHTMLAlias(t *testing.T) {
	e := newTestServer(t)
	assert.Check(t, is.Contains(e.get(t, "/index.html"), "Launcher 1"))
}

func TestIndexEmptyConfig(t *testing.T) {
	e := newTestServer(t)
	e.backend.SetConfig(pins.Empty)
	assert.NilError(t, e.shell.Refresh(context.Background()))

	body := e.get(t, "/")
	assert.Check(t, is.Contains(body, "No launchers configured."))
	assert.Check(t, !strings.Contains(body, "Launcher 1"))
}

func TestFireShowsNotice(t *testing.T) {
	e := newTestServer(t)
	e.postOK(t, "/launchers/2/fire", nil)

	calls := e.backend.CallsOf(api.OpFire)
	assert.Equal(t, len(calls), 1)
	assert.Equal(t, calls[0].Pin, 19)

	body := e.get(t, "/")
	assert.Check(t, is.Contains(body, "Launching 2"))
	assert.Check(t, is.Contains(body, `<meta http-equiv="refresh" content="1">`))
}

func TestFireFailureShowsWarning(t *testing.T) {
	e := newTestServer(t)
	e.backend.FireErrors[20] = errors.New("boom")
	e.postOK(t, "/launchers/3/fire", nil)

	body := e.get(t, "/")
	assert.Check(t, is.Contains(body, "Failed to launch: boom"))
	assert.Check(t, is.Contains(body, `<form method="post" action="/launchers/3/fire"><button class="fire" type="submit">`))
}

func TestFireUnknownLauncher(t *testing.T) {
	e := newTestServer(t)
	resp := e.post(t, "/launchers/9/fire", nil)
	assert.Equal(t, resp.StatusCode, http.StatusNotFound)
	assert.Equal(t, e.backend.Count(api.OpFire), 0)
}

func TestFireRequiresPost(t *testing.T) {
	e := newTestServer(t)
	resp, err := e.client.Get(e.ts.URL + "/launchers/2/fire")
	assert.NilError(t, err)
	resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusMethodNotAllowed)
	assert.Equal(t, e.backend.Count(api.OpFire), 0)
}

func TestConfigPanel(t *testing.T) {
	e := newTestServer(t)
	e.postOK(t, "/config/toggle", nil)

	body := e.get(t, "/")
	assert.Check(t, is.Contains(body, "Configs"))
	assert.Check(t, is.Contains(body, `placeholder="2"`))
	assert.Check(t, is.Contains(body, "Disable Launch 1 / Pin 18"))
	assert.Check(t, is.Contains(body, "Disable Launch 2 / Pin 19"))
	assert.Check(t, is.Contains(body, `action="/config/pins/20/disable"`))

	e.postOK(t, "/config/toggle", nil)
	assert.Check(t, !strings.Contains(e.get(t, "/"), "Configs"))
}

func TestSaveDuration(t *testing.T) {
	e := newTestServer(t)
	e.postOK(t, "/config/toggle", nil)
	reads := e.backend.Count(api.OpRead)

	e.postOK(t, "/config/duration", url.Values{"duration": {"3.5"}})

	calls := e.backend.CallsOf(api.OpDuration)
	assert.Equal(t, len(calls), 1)
	assert.Equal(t, calls[0].Duration, 3.5)
	assert.Equal(t, e.backend.Count(api.OpRead), reads+1)
	assert.Check(t, is.Contains(e.get(t, "/"), `placeholder="3.5"`))
}

func TestSaveDurationInvalid(t *testing.T) {
	e := newTestServer(t)
	e.postOK(t, "/config/toggle", nil)
	e.postOK(t, "/config/duration", url.Values{"duration": {"soon"}})

	assert.Equal(t, e.backend.Count(api.OpDuration), 0)
	assert.Check(t, is.Contains(e.get(t, "/"), "invalid input"))
}

func TestEnablePin(t *testing.T) {
	e := newTestServer(t)
	e.postOK(t, "/config/enable", url.Values{"pin": {"21"}})

	calls := e.backend.CallsOf(api.OpEnable)
	assert.Equal(t, len(calls), 1)
	assert.Equal(t, calls[0].Pin, 21)
}

func TestDisablePin(t *testing.T) {
	e := newTestServer(t)
	e.backend.SetConfig(pins.Config{Pins: []int{18, 20}, Triggered: []int{18}, Duration: 2})
	reads := e.backend.Count(api.OpRead)

	e.postOK(t, "/config/pins/19/disable", nil)

	calls := e.backend.CallsOf(api.OpDisable)
	assert.Equal(t, len(calls), 1)
	assert.Equal(t, calls[0].Pin, 19)
	assert.Equal(t, e.backend.Count(api.OpRead), reads+1)

	body := e.get(t, "/")
	assert.Check(t, is.Contains(body, "Launcher 2"))
	assert.Check(t, !strings.Contains(body, "Launcher 3"))
}

func TestCloseConfig(t *testing.T) {
	e := newTestServer(t)
	e.postOK(t, "/config/toggle", nil)
	reads := e.backend.Count(api.OpRead)

	e.postOK(t, "/config/close", nil)

	assert.Equal(t, e.backend.Count(api.OpRead), reads+1)
	assert.Check(t, !strings.Contains(e.get(t, "/"), "Configs"))
}

func TestJSONEndpoint(t *testing.T) {
	e := newTestServer(t)
	e.postOK(t, "/launchers/2/fire", nil)

	resp, err := e.client.Get(e.ts.URL + "/index.json")
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, resp.Header.Get("Content-Type"), "application/json")

	var vj ViewJSON
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&vj))

	assert.DeepEqual(t, vj.Config.Pins, []int{18, 19, 20})
	assert.Equal(t, len(vj.Launchers), 3)
	assert.Check(t, vj.Launchers[0].Disabled)
	assert.Equal(t, vj.Launchers[1].Pin, 19)
	assert.Check(t, vj.Launchers[1].Notice)
	assert.Check(t, vj.NoticeVisible)
	assert.Check(t, !vj.Panel.Shown)
	assert.Check(t, vj.Status.Fetched)
	assert.Equal(t, vj.Status.Config.APIURL, "http://localhost:8000")
}

func TestStatusEndpoint(t *testing.T) {
	e := newTestServer(t)

	resp, err := e.client.Get(e.ts.URL + "/status.json")
	assert.NilError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, resp.Header.Get("Content-Type"), "application/json")

	var sj status.StatusJSON
	assert.NilError(t, json.NewDecoder(resp.Body).Decode(&sj))
	assert.Check(t, sj.Status.Fetched)
	assert.DeepEqual(t, sj.Status.Pins.Triggered, []int{18})
	assert.Equal(t, sj.Status.Event, "")
	assert.Equal(t, sj.Status.Config.HTTPAddr, ":8080")
}
