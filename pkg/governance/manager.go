package governance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fieldstack/callisto/pkg/audit"
	"fieldstack/callisto/pkg/governance/budget"
	"fieldstack/callisto/pkg/governance/ratelimit"
	"fieldstack/callisto/pkg/registry"
)

// ProviderResolver resolves provider configurations for admitted
// requests. *registry.CachedRepository implements it.
type ProviderResolver interface {
	DefaultProvider(ctx context.Context, accountID string) (*registry.ProviderConfig, error)
	ProviderByName(ctx context.Context, name, accountID string) (*registry.ProviderConfig, error)
	ProvidersByUseCase(ctx context.Context, useCase, accountID string) ([]registry.ProviderConfig, error)
}

// Options contains the components a Manager coordinates.
type Options struct {
	Limiter   *ratelimit.Limiter
	Estimator *budget.Estimator
	Tracker   *budget.Tracker
	Providers ProviderResolver

	// Audit receives an event for every governed request outcome.
	// Optional: a nil queue disables auditing.
	Audit *audit.Queue

	// Metrics instruments admission decisions and committed cost.
	// Optional.
	Metrics *Metrics
}

// Manager coordinates rate limiting, budget tracking, provider
// resolution, and audit logging for governed LLM requests.
type Manager struct {
	limiter   *ratelimit.Limiter
	estimator *budget.Estimator
	tracker   *budget.Tracker
	providers ProviderResolver
	audit     *audit.Queue
	metrics   *Metrics
	logger    *slog.Logger
}

// NewManager creates a governance manager from the given components.
func NewManager(opts Options) *Manager {
	return &Manager{
		limiter:   opts.Limiter,
		estimator: opts.Estimator,
		tracker:   opts.Tracker,
		providers: opts.Providers,
		audit:     opts.Audit,
		metrics:   opts.Metrics,
		logger:    slog.Default().With("component", "governance.manager"),
	}
}

// Admit decides whether a request may proceed to the provider call.
//
// The check order is fixed: rate limit, then provider resolution so
// the resolved model prices the estimate, then budget pre-check at the
// worst-case estimated cost. A rejection returns a
// *ratelimit.RateLimitError or *budget.BudgetExceededError; those are
// the only errors that should change the request outcome. Provider
// resolution errors mean the request cannot be routed at all and are
// returned wrapped; a resolution that matches no active configuration
// returns a *NoProviderError.
func (m *Manager) Admit(ctx context.Context, req Request) (*Admission, error) {
	start := time.Now()
	defer func() {
		if m.metrics != nil {
			m.metrics.ObserveAdmitDuration("admit", time.Since(start).Seconds())
		}
	}()

	if req.AccountID == "" {
		return nil, errors.New("account id is required")
	}

	if err := m.limiter.CheckLimit(req.AccountID); err != nil {
		m.recordRejection(req, "rate_limit", err)
		var rateErr *ratelimit.RateLimitError
		if m.metrics != nil && errors.As(err, &rateErr) {
			m.metrics.RecordRateLimitHit(req.AccountID)
		}
		return nil, err
	}

	provider, err := m.resolveProvider(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider for account %s: %w", req.AccountID, err)
	}
	if provider == nil {
		noProvErr := &NoProviderError{
			AccountID: req.AccountID,
			Provider:  req.Provider,
			UseCase:   req.UseCase,
		}
		m.recordRejection(req, "no_provider", noProvErr)
		return nil, noProvErr
	}

	model := req.Model
	if model == "" {
		model = provider.Model
	}

	estimated := m.estimator.EstimateCost(model, req.InputTokens, req.MaxOutputTokens)
	if err := m.tracker.CheckCost(req.AccountID, estimated, model); err != nil {
		m.recordRejection(req, "budget", err)
		if m.metrics != nil {
			m.metrics.RecordBudgetHit(req.AccountID)
		}
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.RecordAdmission(req.AccountID, true)
	}

	m.enqueue(audit.Event{
		Type:      audit.EventRequest,
		AccountID: req.AccountID,
		Provider:  provider.Name,
		Model:     model,
		Metadata: map[string]any{
			"estimated_cost": estimated,
			"input_tokens":   req.InputTokens,
		},
	})

	return &Admission{
		Request:       req,
		Provider:      *provider,
		Model:         model,
		EstimatedCost: estimated,
	}, nil
}

// Commit charges the actual cost of a completed provider call against
// the account's budget and audits the outcome. The returned error is a
// *budget.BudgetExceededError when the actual charge no longer fits the
// budget; the call has already happened, so callers typically log it
// and surface the exhausted budget on the next Admit.
func (m *Manager) Commit(ctx context.Context, adm *Admission, usage Usage) error {
	actual := m.estimator.EstimateCost(adm.Model, usage.InputTokens, usage.OutputTokens)

	trackErr := m.tracker.TrackCost(adm.Request.AccountID, actual, adm.Model)

	if m.metrics != nil {
		m.metrics.RecordCost(adm.Request.AccountID, adm.Provider.Name, adm.Model, actual)
		status := m.tracker.Status(adm.Request.AccountID)
		m.metrics.UpdateBudgetUsage(adm.Request.AccountID, "daily", status.DailyPercentage)
		m.metrics.UpdateBudgetUsage(adm.Request.AccountID, "monthly", status.MonthlyPercentage)
	}

	m.enqueue(audit.Event{
		Type:      audit.EventResponse,
		AccountID: adm.Request.AccountID,
		Provider:  adm.Provider.Name,
		Model:     adm.Model,
		Metadata: map[string]any{
			"cost":          actual,
			"input_tokens":  usage.InputTokens,
			"output_tokens": usage.OutputTokens,
		},
	})

	if trackErr != nil {
		m.logger.Warn("post-call charge exceeded budget",
			"account_id", adm.Request.AccountID,
			"cost", actual,
			"error", trackErr,
		)
	}

	return trackErr
}

// RecordError audits a failed provider call. No cost is charged.
func (m *Manager) RecordError(ctx context.Context, adm *Admission, callErr error) {
	message := ""
	if callErr != nil {
		message = callErr.Error()
	}

	m.enqueue(audit.Event{
		Type:      audit.EventError,
		AccountID: adm.Request.AccountID,
		Provider:  adm.Provider.Name,
		Model:     adm.Model,
		Metadata: map[string]any{
			"error": message,
		},
	})
}

// RateLimitStatus returns the account's current rate limit snapshot.
func (m *Manager) RateLimitStatus(accountID string) ratelimit.Status {
	return m.limiter.Status(accountID)
}

// BudgetStatus returns the account's current budget snapshot.
func (m *Manager) BudgetStatus(accountID string) budget.BudgetStatus {
	return m.tracker.Status(accountID)
}

func (m *Manager) resolveProvider(ctx context.Context, req Request) (*registry.ProviderConfig, error) {
	if req.Provider != "" {
		return m.providers.ProviderByName(ctx, req.Provider, req.AccountID)
	}

	if req.UseCase != "" {
		candidates, err := m.providers.ProvidersByUseCase(ctx, req.UseCase, req.AccountID)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			return &candidates[0], nil
		}
		// No tagged provider, fall through to the default.
	}

	return m.providers.DefaultProvider(ctx, req.AccountID)
}

// recordRejection audits an admission rejection. The provider is
// unresolved at rejection time, so the event carries only the request.
func (m *Manager) recordRejection(req Request, reason string, cause error) {
	if m.metrics != nil {
		m.metrics.RecordAdmission(req.AccountID, false)
	}

	m.enqueue(audit.Event{
		Type:      audit.EventError,
		AccountID: req.AccountID,
		Provider:  req.Provider,
		Model:     req.Model,
		Metadata: map[string]any{
			"reason": reason,
			"error":  cause.Error(),
		},
	})
}

func (m *Manager) enqueue(event audit.Event) {
	if m.audit != nil {
		m.audit.Enqueue(event)
	}
}
