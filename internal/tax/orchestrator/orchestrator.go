// Package orchestrator runs tax calculations against the remote service and
// degrades to the local engines when the remote path fails.
//
// Every calculation walks the same explicit state machine:
//
//	PREPROCESS → REMOTE_ATTEMPT → SUCCESS ────────────────→ DONE
//	                            ↘ REMOTE_FAILED → LOCAL_FALLBACK → DONE
//
// PREPROCESS may short-circuit to DONE for exempt taxpayers. Remote failures
// of any kind are absorbed; only input validation errors reach the caller.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"taxcalc/internal/tax/metrics"
	"taxcalc/internal/tax/ratetable"
	"taxcalc/internal/tax/remote"
	"taxcalc/internal/tax/tracer"
	dErrors "taxcalc/pkg/domain-errors"
)

// Calculator is the remote calculation service.
type Calculator interface {
	CalculatePIT(ctx context.Context, req remote.PITRequest) (*remote.PITResponse, error)
	CalculateCIT(ctx context.Context, req remote.CITRequest) (*remote.CITResponse, error)
	CalculateCGT(ctx context.Context, req remote.CGTRequest) (*remote.CGTResponse, error)
}

// State is a step of the calculation state machine.
type State string

const (
	StatePreprocess    State = "PREPROCESS"
	StateRemoteAttempt State = "REMOTE_ATTEMPT"
	StateSuccess       State = "SUCCESS"
	StateRemoteFailed  State = "REMOTE_FAILED"
	StateLocalFallback State = "LOCAL_FALLBACK"
	StateDone          State = "DONE"
)

const (
	kindPIT      = "pit"
	kindBusiness = "business"
)

// deps holds the collaborators shared by both orchestrators.
type deps struct {
	rates   *ratetable.Registry
	calc    Calculator
	logger  *slog.Logger
	tracer  tracer.Tracer
	metrics *metrics.Metrics
}

// Option configures an orchestrator.
type Option func(*deps)

func WithLogger(logger *slog.Logger) Option {
	return func(d *deps) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(d *deps) {
		if t != nil {
			d.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) {
		d.metrics = m
	}
}

func newDeps(rates *ratetable.Registry, calc Calculator, opts []Option) deps {
	d := deps{
		rates:  rates,
		calc:   calc,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// table resolves the rate table; an unsupported year is a validation error.
func (d *deps) table(year int) (*ratetable.Table, error) {
	t, err := d.rates.Get(year)
	if err != nil {
		return nil, &dErrors.Error{
			Code:    dErrors.CodeValidation,
			Message: fmt.Sprintf("unsupported tax year %d", year),
			Err:     err,
		}
	}
	return t, nil
}

// enter logs and traces a state transition.
func (d *deps) enter(ctx context.Context, span tracer.Span, kind string, state State) {
	d.logger.DebugContext(ctx, "tax_state_transition", "calculation", kind, "state", string(state))
	span.AddEvent(tracer.EventStateTransition, tracer.String("state", string(state)))
}

func (d *deps) remoteFailed(ctx context.Context, kind string, err error) {
	d.logger.WarnContext(ctx, "tax_remote_failed_using_fallback",
		"calculation", kind,
		"category", string(remote.GetCategory(err)),
		"error", err,
	)
}

func (d *deps) record(kind, source string) {
	if d.metrics != nil {
		d.metrics.RecordCalculation(kind, source)
	}
}
