package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/history"
	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/poll"
	"github.com/autosense/senseboard/internal/views"
)

// Default widget cadences.
const (
	DefaultStatusInterval    = 3 * time.Second
	DefaultPredictInterval   = 15 * time.Second
	DefaultSecurityInterval  = 30 * time.Second
	DefaultHeartbeatInterval = 60 * time.Second

	DefaultNetworkPoints = 20
	DefaultGaugePoints   = history.DefaultCapacity
)

// Series names.
const (
	SeriesCPU      = "cpu"
	SeriesRAM      = "ram"
	SeriesDisk     = "disk"
	SeriesHealth   = "health"
	SeriesUpload   = "upload"
	SeriesDownload = "download"
)

// Intervals sets how often each always-live widget polls.
type Intervals struct {
	Status    time.Duration
	Predict   time.Duration
	Security  time.Duration
	Heartbeat time.Duration
}

func (i Intervals) withDefaults() Intervals {
	if i.Status <= 0 {
		i.Status = DefaultStatusInterval
	}
	if i.Predict <= 0 {
		i.Predict = DefaultPredictInterval
	}
	if i.Security <= 0 {
		i.Security = DefaultSecurityInterval
	}
	if i.Heartbeat <= 0 {
		i.Heartbeat = DefaultHeartbeatInterval
	}
	return i
}

// Widgets are the always-live panels: gauges, network chart, AI risk,
// security badge, and the session heartbeat. They poll on their own
// schedule whichever page is active.
type Widgets struct {
	client    *api.Client
	store     *views.Store
	sched     *poll.Scheduler
	post      func(fn func())
	log       logger.Logger
	intervals Intervals

	gauges  *history.Series[float64]
	network *history.Series[float64]

	mu      sync.Mutex
	handles []*poll.Handle
}

// NewWidgets wires the widgets. post queues a redraw on the UI loop.
func NewWidgets(client *api.Client, store *views.Store, sched *poll.Scheduler, post func(fn func()), intervals Intervals, gaugePoints, networkPoints int, log logger.Logger) *Widgets {
	if gaugePoints <= 0 {
		gaugePoints = DefaultGaugePoints
	}
	if networkPoints <= 0 {
		networkPoints = DefaultNetworkPoints
	}
	return &Widgets{
		client:    client,
		store:     store,
		sched:     sched,
		post:      post,
		log:       logger.OrDefault(log),
		intervals: intervals.withDefaults(),
		gauges:    history.NewSeries[float64](gaugePoints, SeriesCPU, SeriesRAM, SeriesDisk, SeriesHealth),
		network:   history.NewSeries[float64](networkPoints, SeriesUpload, SeriesDownload),
	}
}

// Start schedules every widget task. Calling it while already running is a no-op.
func (w *Widgets) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.runningLocked() {
		return
	}
	w.handles = []*poll.Handle{
		w.sched.Schedule("widget:status", w.intervals.Status, w.pollStatus),
		w.sched.Schedule("widget:network", w.intervals.Status, w.pollNetwork),
		w.sched.Schedule("widget:predict", w.intervals.Predict, w.pollPredict),
		w.sched.Schedule("widget:security", w.intervals.Security, w.pollSecurity),
		w.sched.Schedule("widget:heartbeat", w.intervals.Heartbeat, w.heartbeat),
	}
}

// Stop cancels every widget task.
func (w *Widgets) Stop() {
	w.mu.Lock()
	handles := w.handles
	w.handles = nil
	w.mu.Unlock()
	for _, h := range handles {
		h.Cancel()
	}
}

// Running reports whether any widget task is still live.
func (w *Widgets) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runningLocked()
}

func (w *Widgets) runningLocked() bool {
	for _, h := range w.handles {
		if !h.Cancelled() {
			return true
		}
	}
	return false
}

// Handles returns the widget tasks.
func (w *Widgets) Handles() []*poll.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*poll.Handle, len(w.handles))
	copy(out, w.handles)
	return out
}

// Reset drops the chart history.
func (w *Widgets) Reset() {
	w.gauges.Reset()
	w.network.Reset()
}

// Gauges returns the CPU/RAM/disk/health trend series.
func (w *Widgets) Gauges() *history.Series[float64] { return w.gauges }

// Network returns the upload/download series.
func (w *Widgets) Network() *history.Series[float64] { return w.network }

// record stores a fetch outcome unless the task was cancelled meanwhile,
// then asks for a redraw. It returns whether the value was applied.
// The liveness check runs under the store lock, so a task stopped before
// a session reset never writes into the emptied store.
func record[T any](ctx context.Context, w *Widgets, tag string, res api.Result[T]) bool {
	alive := func() bool { return ctx.Err() == nil }
	if !res.OK() {
		if w.store.FailIf(alive, tag, res.Err) {
			w.log.Debug("widget %s: %v", tag, res.Err)
			w.post(func() {})
		}
		return false
	}
	if !w.store.PutIf(alive, tag, res.Value) {
		return false
	}
	w.post(func() {})
	return true
}

func (w *Widgets) pollStatus(ctx context.Context) {
	res := api.Fetch(ctx, w.client.Status)
	if !record(ctx, w, views.TagStatus, res) {
		return
	}
	s := res.Value
	if err := w.gauges.Push(s.CPU, s.RAM, s.Disk, s.HealthScore); err != nil {
		w.log.Warn("widget status: %v", err)
	}
}

func (w *Widgets) pollNetwork(ctx context.Context) {
	res := api.Fetch(ctx, w.client.NetworkStats)
	if !record(ctx, w, views.TagNetwork, res) {
		return
	}
	if err := w.network.Push(res.Value.UploadMbps, res.Value.DownloadMbps); err != nil {
		w.log.Warn("widget network: %v", err)
	}
}

func (w *Widgets) pollPredict(ctx context.Context) {
	record(ctx, w, views.TagPredict, api.Fetch(ctx, w.client.Predict))
}

func (w *Widgets) pollSecurity(ctx context.Context) {
	record(ctx, w, views.TagSecurity, api.Fetch(ctx, w.client.SecurityScan))
}

// heartbeat checks the session. A 401 clears it through the client's
// unauthorized hook; nothing else needs doing here.
func (w *Widgets) heartbeat(ctx context.Context) {
	if _, err := w.client.Me(ctx); err != nil && !api.IsUnauthorized(err) && ctx.Err() == nil {
		w.log.Debug("widget heartbeat: %v", err)
	}
}
