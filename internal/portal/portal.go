package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/ligustah/geogate/internal/auditlog"
	"github.com/ligustah/geogate/internal/catalog"
	"github.com/ligustah/geogate/internal/geo"
	"github.com/ligustah/geogate/internal/logging"
	"github.com/ligustah/geogate/internal/metrics"
	"github.com/ligustah/geogate/internal/workflow"
)

// captureBuffer bounds undelivered capture notifications.
const captureBuffer = 32

// Transition describes a state change of one workflow.
type Transition struct {
	Item     catalog.Item
	Variant  workflow.Variant
	From, To workflow.State
	Snapshot workflow.Snapshot
}

// Config wires a Portal.
type Config struct {
	Catalog   *catalog.Catalog
	Log       *auditlog.Store
	Acquirer  workflow.Acquirer
	Retriever workflow.Retriever

	Clock   clockwork.Clock
	Timings workflow.Timings
	Locale  language.Tag

	// OnTransition is called for every workflow state change.
	OnTransition func(Transition)

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Portal is the application context. It owns the location cache and the
// audit log and shares them with every workflow.
type Portal struct {
	catalog   *catalog.Catalog
	cache     *geo.Cache
	log       *auditlog.Store
	workflows map[string]*workflow.Workflow
	emergency *workflow.Workflow
	captures  chan workflow.Capture
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New restores the audit log and builds one workflow per catalog item plus
// the direct-download workflow for the primary item. A malformed persisted
// log is treated as empty.
func New(ctx context.Context, cfg Config) (*Portal, error) {
	if cfg.Catalog == nil || cfg.Log == nil || cfg.Retriever == nil {
		return nil, errors.New("portal: catalog, log and retriever are required")
	}
	logger := logging.OrNop(cfg.Logger)

	if err := cfg.Log.Load(ctx); err != nil {
		if !errors.Is(err, auditlog.ErrMalformedLog) {
			return nil, fmt.Errorf("load audit log: %w", err)
		}
		logger.Warn("discarding malformed audit log", zap.Error(err))
	}
	cfg.Metrics.SetAuditEntries(cfg.Log.Len())

	p := &Portal{
		catalog:   cfg.Catalog,
		cache:     geo.NewCache(),
		log:       cfg.Log,
		workflows: make(map[string]*workflow.Workflow),
		captures:  make(chan workflow.Capture, captureBuffer),
		metrics:   cfg.Metrics,
		logger:    logger,
	}

	for _, item := range cfg.Catalog.Items() {
		w, err := p.newWorkflow(cfg, item, workflow.Standard)
		if err != nil {
			return nil, err
		}
		p.workflows[item.ID] = w
	}

	w, err := p.newWorkflow(cfg, cfg.Catalog.Primary(), workflow.Emergency)
	if err != nil {
		return nil, err
	}
	p.emergency = w

	return p, nil
}

func (p *Portal) newWorkflow(cfg Config, item catalog.Item, variant workflow.Variant) (*workflow.Workflow, error) {
	var w *workflow.Workflow
	var onTransition func(from, to workflow.State)
	if cfg.OnTransition != nil {
		onTransition = func(from, to workflow.State) {
			cfg.OnTransition(Transition{
				Item:     item,
				Variant:  variant,
				From:     from,
				To:       to,
				Snapshot: w.Snapshot(),
			})
		}
	}

	w, err := workflow.New(workflow.Config{
		Item:         item,
		Variant:      variant,
		Cache:        p.cache,
		Log:          p.log,
		Retriever:    cfg.Retriever,
		Acquirer:     cfg.Acquirer,
		Clock:        cfg.Clock,
		Timings:      cfg.Timings,
		Locale:       cfg.Locale,
		OnCapture:    p.publish,
		OnTransition: onTransition,
		Metrics:      cfg.Metrics,
		Logger:       p.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("portal: %s workflow for %s: %w", variant, item.ID, err)
	}
	return w, nil
}

// publish delivers a capture notification, dropping it when nobody keeps up.
func (p *Portal) publish(c workflow.Capture) {
	p.metrics.SetAuditEntries(p.log.Len())
	select {
	case p.captures <- c:
	default:
		p.logger.Debug("capture notification dropped", zap.String("audit_id", c.Entry.ID))
	}
}

// Items returns the catalog in display order.
func (p *Portal) Items() []catalog.Item {
	return p.catalog.Items()
}

// Workflow returns the standard workflow for an item.
func (p *Portal) Workflow(id string) (*workflow.Workflow, error) {
	if _, err := p.catalog.Find(id); err != nil {
		return nil, err
	}
	return p.workflows[id], nil
}

// EmergencyWorkflow returns the direct-download workflow.
func (p *Portal) EmergencyWorkflow() *workflow.Workflow {
	return p.emergency
}

// Download triggers the workflow for id and reports whether it was accepted.
func (p *Portal) Download(ctx context.Context, id string) (bool, error) {
	w, err := p.Workflow(id)
	if err != nil {
		return false, err
	}
	return w.Trigger(ctx), nil
}

// Emergency triggers the direct download and reports whether it was accepted.
func (p *Portal) Emergency(ctx context.Context) bool {
	return p.emergency.Trigger(ctx)
}

// Logs returns the audit log, newest first.
func (p *Portal) Logs() []auditlog.Entry {
	return p.log.All()
}

// Location returns the cached position, if any.
func (p *Portal) Location() (geo.Coordinates, bool) {
	return p.cache.Get()
}

// Captures delivers a notification for every recorded capture.
func (p *Portal) Captures() <-chan workflow.Capture {
	return p.captures
}

// Wait blocks until every triggered run has reached a terminal state.
func (p *Portal) Wait() {
	for _, w := range p.workflows {
		w.Wait()
	}
	p.emergency.Wait()
}

// WaitTimeout is Wait bounded by d of wall time. It reports whether all runs
// finished.
func (p *Portal) WaitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
