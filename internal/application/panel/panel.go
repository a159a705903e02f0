package panel

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/facetmap/internal/application/aggregate"
	"github.com/turtacn/facetmap/internal/application/query"
	domain "github.com/turtacn/facetmap/internal/domain/panel"
	"github.com/turtacn/facetmap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/facetmap/pkg/errors"
)

// Option configures a Panel.
type Option func(*Panel)

// WithRenderer sets the renderer. The default discards frames.
func WithRenderer(r Renderer) Option {
	return func(p *Panel) { p.renderer = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Panel) { p.metrics = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Panel) { p.logger = l }
}

// Panel owns one refresh cycle.
type Panel struct {
	composer Composer
	executor Executor
	renderer Renderer
	metrics  Recorder
	logger   logging.Logger

	cfg   atomic.Pointer[domain.Config]
	last  atomic.Pointer[Frame]
	state atomic.Int32

	inFlight atomic.Bool
	pending  atomic.Bool

	// background cycles started by Signal
	baseCtx context.Context
	wg      sync.WaitGroup
}

// New validates cfg and returns an idle Panel. ctx bounds cycles started
// by Signal.
func New(ctx context.Context, cfg domain.Config, composer Composer, executor Executor, opts ...Option) (*Panel, error) {
	p := &Panel{
		composer: composer,
		executor: executor,
		renderer: RendererFunc(func(context.Context, Frame) {}),
		metrics:  nopRecorder{},
		logger:   logging.NewNopLogger(),
		baseCtx:  ctx,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("panel")
	if err := p.setConfig(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// State returns the current cycle state.
func (p *Panel) State() State {
	return State(p.state.Load())
}

// Config returns the configuration the next cycle will use.
func (p *Panel) Config() domain.Config {
	return *p.cfg.Load()
}

// Snapshot returns the last rendered frame, if any.
func (p *Panel) Snapshot() (Frame, bool) {
	f := p.last.Load()
	if f == nil {
		return Frame{}, false
	}
	return *f, true
}

// Field returns the facet field clicks should filter on.
func (p *Panel) Field() string {
	if f, ok := p.Snapshot(); ok && f.Field != "" {
		return f.Field
	}
	return p.Config().Field
}

// UpdateConfig swaps the configuration. The running cycle keeps the config
// it started with. When refresh is true a new cycle is signalled.
func (p *Panel) UpdateConfig(cfg domain.Config, refresh bool) error {
	if err := p.setConfig(cfg); err != nil {
		return err
	}
	p.logger.Info("panel config updated",
		logging.String("field", cfg.Field),
		logging.Int("size", cfg.Size),
		logging.Bool("refresh", refresh))
	if refresh {
		return p.Signal(p.baseCtx)
	}
	return nil
}

func (p *Panel) setConfig(cfg domain.Config) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfg.Store(&cfg)
	return nil
}

// Compose builds the query for the current config without executing it.
func (p *Panel) Compose(ctx context.Context) (*query.Query, error) {
	return p.composer.Compose(ctx, p.Config())
}

// Inspect returns the structured query as indented JSON. It is only
// available when the panel is spyable.
func (p *Panel) Inspect(ctx context.Context) (string, error) {
	if !p.Config().Spyable {
		return "", errors.New(errors.ErrCodeFeatureDisabled, "panel is not spyable")
	}
	q, err := p.Compose(ctx)
	if err != nil {
		return "", err
	}
	return q.Inspect()
}

// Signal requests a refresh without waiting for it. If a cycle is in flight
// the request is folded into a single follow-up cycle.
func (p *Panel) Signal(_ context.Context) error {
	p.pending.Store(true)
	if p.inFlight.Load() {
		p.metrics.RecordCoalesced()
		p.logger.Debug("refresh coalesced")
		return nil
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.drain(p.baseCtx)
	}()
	return nil
}

// Wait blocks until cycles started by Signal have finished.
func (p *Panel) Wait() {
	p.wg.Wait()
}

// Refresh runs cycles until no refresh is pending and returns the error of
// the last cycle it ran. If another caller holds the cycle, Refresh marks the
// request pending and returns nil immediately.
func (p *Panel) Refresh(ctx context.Context) error {
	p.pending.Store(true)
	return p.drain(ctx)
}

// drain runs cycles while a refresh is pending and this caller can take the
// cycle. It never marks a refresh pending itself, so a request already served
// by another holder does not cost a second cycle.
func (p *Panel) drain(ctx context.Context) error {
	var err error
	for p.pending.Load() {
		if !p.inFlight.CompareAndSwap(false, true) {
			p.metrics.RecordCoalesced()
			return nil
		}
		for p.pending.Swap(false) {
			err = p.runCycle(ctx)
		}
		p.inFlight.Store(false)
		// re-check: a request may have been marked pending after the inner
		// loop drained but before inFlight was released
	}
	return err
}

func (p *Panel) setState(s State) {
	p.state.Store(int32(s))
}

func (p *Panel) runCycle(ctx context.Context) error {
	cfg := p.Config()
	id := uuid.NewString()
	log := p.logger.With(logging.String("cycle_id", id))
	start := time.Now()

	if len(cfg.ActiveIndices()) == 0 {
		log.Debug("no indices configured, cycle skipped")
		p.metrics.RecordCycle(OutcomeSkipped, time.Since(start))
		return errors.ErrNoIndices
	}

	p.setState(StateLoading)
	defer p.setState(StateIdle)

	frame := Frame{
		CycleID: id,
		Field:   cfg.Field,
		Counts:  aggregate.CategoryCounts{},
		Colors:  cfg.Colors,
		Exclude: cfg.ExcludeList(),
		Map:     cfg.Map,
	}

	q, err := p.composer.Compose(ctx, cfg)
	if err != nil {
		log.Warn("query composition failed", logging.Err(err))
		frame.Status = StatusNoData
		frame.Err = err.Error()
		p.render(ctx, frame)
		p.metrics.RecordCycle(OutcomeNoData, time.Since(start))
		return err
	}
	log.Debug("query composed", logging.String("flat", q.Flat()), logging.Strings("indices", q.Indices))

	resp, err := p.executor.Execute(ctx, q)
	if p.pending.Load() {
		log.Debug("newer refresh pending, result discarded")
		p.metrics.RecordCycle(OutcomeStale, time.Since(start))
		return nil
	}
	malformed := errors.IsCode(err, errors.ErrCodeMalformedFacetPayload)
	if err != nil && !malformed {
		log.Error("query execution failed", logging.Err(err))
		frame.Status = StatusError
		frame.Err = err.Error()
		p.render(ctx, frame)
		p.metrics.RecordCycle(OutcomeError, time.Since(start))
		return err
	}

	if resp == nil {
		resp = &aggregate.FacetResponse{}
	}
	outcome := OutcomeOK
	counts := aggregate.CategoryCounts{}
	if !malformed {
		counts, err = aggregate.Aggregate(resp, q.Field())
		malformed = err != nil
	}
	if malformed {
		log.Warn("malformed facet payload, rendering nothing", logging.Err(err))
		counts = aggregate.CategoryCounts{}
		outcome = OutcomeMalformed
	}

	p.setState(StateRendering)
	frame.Status = StatusOK
	frame.Counts = counts
	frame.Hits = resp.NumFound
	p.render(ctx, frame)
	p.metrics.RecordCategories(len(counts))
	p.metrics.RecordCycle(outcome, time.Since(start))
	log.Debug("cycle complete",
		logging.Int("categories", len(counts)),
		logging.Int64("hits", resp.NumFound),
		logging.Duration("took", time.Since(start)))
	return nil
}

func (p *Panel) render(ctx context.Context, f Frame) {
	f.At = time.Now().UTC()
	p.last.Store(&f)
	p.renderer.Render(ctx, f)
}

//Personal.AI order the ending
