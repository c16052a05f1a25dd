package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/session"
	"github.com/autosense/senseboard/internal/views"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// listPaths answer with a JSON array by default.
var listPaths = map[string]bool{
	"/api/last-records":       true,
	"/api/security/open-ports": true,
	"/api/disk/partitions":    true,
	"/api/apps/processes":     true,
	"/api/apps/startup":       true,
	"/api/apps/installed":     true,
	"/api/large-files":        true,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeAPI serves plausible replies for every endpoint; overrides win.
func fakeAPI(t *testing.T, overrides map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	defaults := map[string]interface{}{
		"/status":            api.Status{CPU: 12, RAM: 40, Disk: 55, HealthScore: 88},
		"/api/network-stats": api.NetworkSample{UploadMbps: 1.5, DownloadMbps: 9.25},
		"/api/ai/predict":    api.Prediction{RiskScore: 20, RiskLevel: api.RiskStable, Explanation: "All good"},
		"/api/security/scan": api.SecurityScan{Status: api.SecurityClean},
		"/api/auth/me":       api.Me{Username: "ana"},
		"/api/system-specs":  api.SystemSpecs{OS: "Linux", Processor: "x86_64", RAMTotalGB: 16},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := overrides[r.URL.Path]; ok {
			h(w, r)
			return
		}
		if v, ok := defaults[r.URL.Path]; ok {
			writeJSON(w, http.StatusOK, v)
			return
		}
		if listPaths[r.URL.Path] {
			writeJSON(w, http.StatusOK, []interface{}{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testApp struct {
	*App
	clock   *clockwork.FakeClock
	session *session.MemoryStore
}

func newTestApp(t *testing.T, srv *httptest.Server, token string) testApp {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := session.NewMemoryStore(token)
	guard := session.NewGuard(store, logger.Noop())
	require.NoError(t, guard.Load())

	client, err := api.NewClient(api.Options{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		MaxRPS:         1000,
		Token:          guard.Token,
		OnUnauthorized: guard.ClearSession,
		Logger:         logger.Noop(),
	})
	require.NoError(t, err)

	app := New(Options{Client: client, Guard: guard, Clock: clock, Logger: logger.Noop()})
	t.Cleanup(app.Close)
	return testApp{App: app, clock: clock, session: store}
}

// drainUntil runs queued continuations until cond holds.
func drainUntil(t *testing.T, a testApp, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		a.Queue().Drain()
		return cond()
	}, waitFor, tick)
}

func TestStartWithoutSessionShowsLogin(t *testing.T) {
	a := newTestApp(t, fakeAPI(t, nil), "")

	assert.Equal(t, router.Login, a.Start())
	assert.False(t, a.Widgets().Running())
	assert.Zero(t, a.Scheduler().Active())
}

func TestStartWithSessionRunsWidgets(t *testing.T) {
	a := newTestApp(t, fakeAPI(t, nil), "tok")

	assert.Equal(t, router.Home, a.Start())
	assert.True(t, a.Widgets().Running())
	assert.Len(t, a.Widgets().Handles(), 5)

	drainUntil(t, a, func() bool {
		_, ok := views.Value[api.Status](a.Store(), views.TagStatus)
		return ok
	})
	st, _ := views.Value[api.Status](a.Store(), views.TagStatus)
	assert.Equal(t, 88.0, st.HealthScore)

	drainUntil(t, a, func() bool { return a.Widgets().Network().Len() == 1 })
	down, ok := a.Widgets().Network().Newest(SeriesDownload)
	require.True(t, ok)
	assert.Equal(t, 9.25, down)
}

func TestStartOpensInitialView(t *testing.T) {
	srv := fakeAPI(t, nil)
	a := newTestApp(t, srv, "tok")
	a.initial = router.Security

	assert.Equal(t, router.Security, a.Start())
}

func TestWidgetsKeepPollingOnTheirCadence(t *testing.T) {
	a := newTestApp(t, fakeAPI(t, nil), "tok")
	a.Start()

	gauges := a.Widgets().Gauges()
	drainUntil(t, a, func() bool { return gauges.Len() == 1 })

	// Let the first status run finish so the next tick is not skipped.
	require.Eventually(t, func() bool {
		for _, h := range a.Widgets().Handles() {
			if h.Name() == "widget:status" {
				return h.Runs() >= 1
			}
		}
		return false
	}, waitFor, tick)

	a.clock.Advance(DefaultStatusInterval)
	drainUntil(t, a, func() bool { return gauges.Len() == 2 })

	// Navigating does not disturb the widgets.
	a.Navigate(router.Cleaner)
	assert.True(t, a.Widgets().Running())
}

func TestHomeRecordsPollEndsOnNavigation(t *testing.T) {
	a := newTestApp(t, fakeAPI(t, nil), "tok")
	require.Equal(t, router.Home, a.Start())

	// Five widgets plus the records poll owned by Home.
	assert.Equal(t, 6, a.Scheduler().Active())

	a.Navigate(router.Cleaner)
	assert.Equal(t, 5, a.Scheduler().Active())
	assert.True(t, a.Widgets().Running())

	a.Navigate(router.Home)
	assert.Equal(t, 6, a.Scheduler().Active())
}

// A 401 in the middle of a session clears it, returns to login and stops
// every task, the dashboard-wide ones included.
func TestUnauthorizedMidSessionStopsEverything(t *testing.T) {
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	})
	a := newTestApp(t, srv, "tok")
	require.Equal(t, router.Home, a.Start())

	// The heartbeat runs immediately and hits the 401.
	require.Eventually(t, func() bool { return !a.Guard().HasSession() }, waitFor, tick)
	assert.Empty(t, a.session.Saved())

	drainUntil(t, a, func() bool { return a.Router().Active() == router.Login })
	assert.Zero(t, a.Scheduler().Active())
	assert.False(t, a.Widgets().Running())
	assert.Equal(t, router.Unauthenticated, a.Router().State())

	// Time passing does not bring anything back.
	a.clock.Advance(time.Minute)
	a.Queue().Drain()
	assert.Zero(t, a.Scheduler().Active())
}

func TestLoginAgainRestartsWidgets(t *testing.T) {
	a := newTestApp(t, fakeAPI(t, nil), "tok")
	a.Start()

	a.Logout()
	drainUntil(t, a, func() bool { return a.Router().Active() == router.Login })
	assert.False(t, a.Widgets().Running())

	require.NoError(t, a.Guard().SetSession("fresh"))
	drainUntil(t, a, func() bool { return a.Router().Active() == router.Home })
	assert.True(t, a.Widgets().Running())
	assert.Equal(t, "fresh", a.session.Saved())
}

func TestLogoutForgetsCachedLoads(t *testing.T) {
	a := newTestApp(t, fakeAPI(t, nil), "tok")
	a.Start()

	drainUntil(t, a, func() bool {
		_, specs := a.Cache().LastRefreshed(views.TagSpecs)
		_, records := a.Cache().LastRefreshed(views.TagRecords)
		return specs && records
	})

	a.Logout()
	drainUntil(t, a, func() bool { return a.Router().Active() == router.Login })
	assert.Empty(t, a.Cache().Tags(), "the next session starts cold")
	_, ok := a.Store().Get(views.TagSpecs)
	assert.False(t, ok)
}

func TestReloadActive(t *testing.T) {
	a := newTestApp(t, fakeAPI(t, nil), "tok")
	a.Start()

	// Home declares system specs and last records.
	assert.Equal(t, 2, a.ReloadActive())

	a.Logout()
	drainUntil(t, a, func() bool { return a.Router().Active() == router.Login })
	assert.Zero(t, a.ReloadActive())
}

func TestWidgetFailureKeepsLastValue(t *testing.T) {
	var fail atomic.Bool
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"/api/ai/predict": func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, http.StatusOK, api.Prediction{RiskLevel: api.RiskWarning, RiskScore: 60})
		},
	})
	a := newTestApp(t, srv, "tok")
	a.Start()

	drainUntil(t, a, func() bool {
		_, ok := views.Value[api.Prediction](a.Store(), views.TagPredict)
		return ok
	})
	require.Eventually(t, func() bool {
		for _, h := range a.Widgets().Handles() {
			if h.Name() == "widget:predict" {
				return h.Runs() >= 1
			}
		}
		return false
	}, waitFor, tick)

	fail.Store(true)
	a.clock.Advance(DefaultPredictInterval)
	drainUntil(t, a, func() bool { return a.Store().Err(views.TagPredict) != nil })

	p, ok := views.Value[api.Prediction](a.Store(), views.TagPredict)
	require.True(t, ok)
	assert.Equal(t, api.RiskWarning, p.RiskLevel)
}
