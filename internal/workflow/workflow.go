package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/ligustah/geogate/internal/auditlog"
	"github.com/ligustah/geogate/internal/catalog"
	"github.com/ligustah/geogate/internal/geo"
	"github.com/ligustah/geogate/internal/locale"
	"github.com/ligustah/geogate/internal/logging"
	"github.com/ligustah/geogate/internal/metrics"
)

// ErrBusy is returned by Run when a run is already in progress.
var ErrBusy = errors.New("workflow: run already in progress")

// Acquirer resolves the current position.
type Acquirer interface {
	Acquire(ctx context.Context) (geo.Coordinates, error)
}

// AuditLog records capture events.
type AuditLog interface {
	Append(ctx context.Context, action string, coords geo.Coordinates) (auditlog.Entry, error)
}

// Retriever fetches a document and saves it under a name derived from the
// item name, returning where it was saved.
type Retriever interface {
	Download(ctx context.Context, name, url string) (string, error)
}

// Capture is published after every successful audit append.
type Capture struct {
	Item        catalog.Item
	Coordinates geo.Coordinates
	Entry       auditlog.Entry
	Cached      bool
}

// Snapshot is the externally visible workflow state.
type Snapshot struct {
	State State
	// Message is the localized failure message while in Error.
	Message string
	// Saved is the key of the last successful save while in Success.
	Saved string
}

// Timings are the fixed durations of a run.
type Timings struct {
	VerifyDelay    time.Duration
	SuccessDisplay time.Duration
	ErrorDisplay   time.Duration
}

// DefaultTimings returns the portal timings.
func DefaultTimings() Timings {
	return Timings{
		VerifyDelay:    1500 * time.Millisecond,
		SuccessDisplay: 3000 * time.Millisecond,
		ErrorDisplay:   4000 * time.Millisecond,
	}
}

// withDefaults fills every unset duration from DefaultTimings.
func (t Timings) withDefaults() Timings {
	def := DefaultTimings()
	if t.VerifyDelay <= 0 {
		t.VerifyDelay = def.VerifyDelay
	}
	if t.SuccessDisplay <= 0 {
		t.SuccessDisplay = def.SuccessDisplay
	}
	if t.ErrorDisplay <= 0 {
		t.ErrorDisplay = def.ErrorDisplay
	}
	return t
}

// Config wires a workflow to its collaborators.
type Config struct {
	Item    catalog.Item
	Variant Variant

	Cache     *geo.Cache
	Log       AuditLog
	Retriever Retriever
	// Acquirer may be nil, meaning no location capability.
	Acquirer Acquirer

	// Clock drives the verification delay and display windows.
	// Default: clockwork.NewRealClock()
	Clock   clockwork.Clock
	Timings Timings

	// Locale selects the failure message language.
	// Default: locale.Default
	Locale language.Tag

	OnCapture    func(Capture)
	OnTransition func(from, to State)

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Workflow is the download state machine for one catalog item.
type Workflow struct {
	cfg     Config
	message string

	mu    sync.Mutex
	state State
	saved string
	err   string
	gen   uint64
	reset clockwork.Timer

	wg sync.WaitGroup
}

// New creates an idle workflow.
func New(cfg Config) (*Workflow, error) {
	if cfg.Item.ID == "" {
		return nil, errors.New("workflow: item is required")
	}
	if cfg.Cache == nil || cfg.Log == nil || cfg.Retriever == nil {
		return nil, errors.New("workflow: cache, log and retriever are required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	cfg.Timings = cfg.Timings.withDefaults()
	if cfg.Locale == language.Und {
		cfg.Locale = locale.Default
	}
	cfg.Logger = logging.OrNop(cfg.Logger).With(
		zap.String("item", cfg.Item.ID),
		zap.Stringer("variant", cfg.Variant))

	key := locale.VerificationFailed
	if cfg.Variant == Emergency {
		key = locale.EmergencyFailed
	}

	return &Workflow{
		cfg:     cfg,
		message: locale.Text(cfg.Locale, key),
	}, nil
}

// Item returns the item this workflow downloads.
func (w *Workflow) Item() catalog.Item {
	return w.cfg.Item
}

// Variant returns whether this is a standard or emergency workflow.
func (w *Workflow) Variant() Variant {
	return w.cfg.Variant
}

// Snapshot returns the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{State: w.state, Message: w.err, Saved: w.saved}
}

// Busy reports whether a run is in progress.
func (w *Workflow) Busy() bool {
	s := w.Snapshot().State
	return s == Locating || s == Downloading
}

// Trigger starts a run in the background. It is accepted only while idle or
// showing an error and reports whether it was.
func (w *Workflow) Trigger(ctx context.Context) bool {
	r, ok := w.begin()
	if !ok {
		return false
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.execute(ctx, r)
	}()
	return true
}

// Run performs a run on the calling goroutine and returns the terminal
// snapshot it reached. The auto-reset to idle still happens afterwards.
func (w *Workflow) Run(ctx context.Context) (Snapshot, error) {
	r, ok := w.begin()
	if !ok {
		return w.Snapshot(), ErrBusy
	}
	w.wg.Add(1)
	defer w.wg.Done()
	return w.execute(ctx, r), nil
}

// Wait blocks until every triggered run has reached a terminal state.
func (w *Workflow) Wait() {
	w.wg.Wait()
}

type run struct {
	gen     uint64
	coords  geo.Coordinates
	cached  bool
	started time.Time
}

// begin claims the workflow for a new run. The cache is read here so the
// first state already reflects whether a location is needed.
func (w *Workflow) begin() (run, bool) {
	w.mu.Lock()
	if w.state != Idle && w.state != Error {
		w.mu.Unlock()
		return run{}, false
	}
	stale := w.reset
	w.reset = nil

	coords, cached := w.cfg.Cache.Get()
	next := Locating
	if cached {
		next = Downloading
	}

	w.gen++
	r := run{gen: w.gen, coords: coords, cached: cached, started: w.cfg.Clock.Now()}
	from := w.state
	w.state = next
	w.err = ""
	w.saved = ""
	w.mu.Unlock()

	if stale != nil {
		stale.Stop()
	}
	w.notify(from, next)
	return r, true
}

func (w *Workflow) execute(ctx context.Context, r run) Snapshot {
	log := w.cfg.Logger

	if !r.cached {
		coords, err := w.acquire(ctx)
		if err != nil {
			return w.fail(r, "acquire location", err)
		}
		w.cfg.Cache.Set(coords)
		r.coords = coords
	}

	entry, err := w.cfg.Log.Append(ctx, w.cfg.Variant.Label(w.cfg.Item.Name, r.cached), r.coords)
	if err != nil {
		return w.fail(r, "record capture", err)
	}
	w.cfg.Metrics.IncrementCapture(r.cached)
	log.Info("location captured",
		zap.String("audit_id", entry.ID),
		zap.Stringer("coordinates", r.coords),
		zap.Bool("cached", r.cached))
	if w.cfg.OnCapture != nil {
		w.cfg.OnCapture(Capture{Item: w.cfg.Item, Coordinates: r.coords, Entry: entry, Cached: r.cached})
	}

	if !r.cached {
		w.transition(Locating, Downloading)
	}

	delay := w.cfg.Clock.NewTimer(w.cfg.Timings.VerifyDelay)
	select {
	case <-delay.Chan():
	case <-ctx.Done():
		delay.Stop()
		return w.fail(r, "verify", ctx.Err())
	}

	key, err := w.cfg.Retriever.Download(ctx, w.cfg.Item.Name, w.cfg.Item.SourceURL)
	if err != nil {
		return w.fail(r, "retrieve document", err)
	}

	log.Info("document downloaded", zap.String("key", key))
	return w.finish(r, Success, key, "")
}

func (w *Workflow) acquire(ctx context.Context) (geo.Coordinates, error) {
	if w.cfg.Acquirer == nil {
		return geo.Coordinates{}, geo.ErrCapabilityUnavailable
	}
	return w.cfg.Acquirer.Acquire(ctx)
}

func (w *Workflow) fail(r run, step string, err error) Snapshot {
	w.cfg.Logger.Warn("download failed", zap.String("step", step), zap.Error(err))
	return w.finish(r, Error, "", w.message)
}

// finish enters a terminal state and schedules the return to idle.
func (w *Workflow) finish(r run, terminal State, saved, message string) Snapshot {
	display := w.cfg.Timings.SuccessDisplay
	if terminal == Error {
		display = w.cfg.Timings.ErrorDisplay
	}

	w.mu.Lock()
	from := w.state
	w.state = terminal
	w.saved = saved
	w.err = message
	w.mu.Unlock()

	w.cfg.Metrics.IncrementOutcome(w.cfg.Variant.String(), terminal.String())
	w.cfg.Metrics.ObserveRun(w.cfg.Clock.Now().Sub(r.started))
	w.notify(from, terminal)

	w.mu.Lock()
	if w.gen == r.gen && w.state == terminal {
		w.reset = w.cfg.Clock.AfterFunc(display, func() { w.expire(r.gen) })
	}
	w.mu.Unlock()
	return Snapshot{State: terminal, Message: message, Saved: saved}
}

// expire returns a terminal state to idle unless a newer run has started.
func (w *Workflow) expire(gen uint64) {
	w.mu.Lock()
	if w.gen != gen || !w.state.Terminal() {
		w.mu.Unlock()
		return
	}
	from := w.state
	w.state = Idle
	w.err = ""
	w.saved = ""
	w.reset = nil
	w.mu.Unlock()

	w.notify(from, Idle)
}

func (w *Workflow) transition(from, to State) {
	w.mu.Lock()
	if w.state != from {
		w.mu.Unlock()
		return
	}
	w.state = to
	w.mu.Unlock()

	w.notify(from, to)
}

func (w *Workflow) notify(from, to State) {
	w.cfg.Logger.Debug("state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	if w.cfg.OnTransition != nil {
		w.cfg.OnTransition(from, to)
	}
}
