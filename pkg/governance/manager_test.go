package governance

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"fieldstack/callisto/pkg/audit"
	"fieldstack/callisto/pkg/governance/budget"
	"fieldstack/callisto/pkg/governance/ratelimit"
	"fieldstack/callisto/pkg/registry"
)

// fakeResolver serves a fixed provider set without a store or cache.
type fakeResolver struct {
	providers []registry.ProviderConfig
	err       error
}

func (f *fakeResolver) DefaultProvider(ctx context.Context, accountID string) (*registry.ProviderConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.providers {
		if f.providers[i].IsDefault {
			return &f.providers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeResolver) ProviderByName(ctx context.Context, name, accountID string) (*registry.ProviderConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.providers {
		if f.providers[i].Name == name {
			return &f.providers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeResolver) ProvidersByUseCase(ctx context.Context, useCase, accountID string) ([]registry.ProviderConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matched []registry.ProviderConfig
	for _, p := range f.providers {
		for _, uc := range p.UseCases {
			if uc == useCase {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched, nil
}

// collectSink gathers audit records in memory.
type collectSink struct {
	mu      sync.Mutex
	records []Record
}

type Record = audit.Record

func (c *collectSink) WriteBatch(ctx context.Context, records []Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
	return nil
}

func (c *collectSink) Close() error { return nil }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testResolver() *fakeResolver {
	return &fakeResolver{
		providers: []registry.ProviderConfig{
			{
				ID:        "prov-1",
				Name:      "openai-default",
				Provider:  "openai",
				Model:     "gpt-4o-mini",
				IsDefault: true,
				IsActive:  true,
			},
			{
				ID:       "prov-2",
				Name:     "anthropic-chat",
				Provider: "anthropic",
				Model:    "claude-3-5-sonnet-20241022",
				UseCases: []string{"chat"},
				IsActive: true,
			},
		},
	}
}

func newTestManager(t *testing.T, rateCfg ratelimit.Config, budgetCfg budget.Config, resolver ProviderResolver) (*Manager, *collectSink, *audit.Queue) {
	t.Helper()

	limiter := ratelimit.NewLimiter(rateCfg)
	t.Cleanup(limiter.Close)

	sink := &collectSink{}
	queue := audit.NewQueue(sink, audit.Config{BatchSize: 100, MaxQueueSize: 1000})

	manager := NewManager(Options{
		Limiter:   limiter,
		Estimator: budget.NewEstimator(nil),
		Tracker:   budget.NewTracker(budgetCfg),
		Providers: resolver,
		Audit:     queue,
	})

	return manager, sink, queue
}

func TestAdmitAllowed(t *testing.T) {
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	adm, err := manager.Admit(context.Background(), Request{
		AccountID:       "acc-1",
		InputTokens:     1000,
		MaxOutputTokens: 1000,
	})
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	if adm.Provider.Name != "openai-default" {
		t.Errorf("Expected default provider, got %s", adm.Provider.Name)
	}
	if adm.Model != "gpt-4o-mini" {
		t.Errorf("Expected provider model, got %s", adm.Model)
	}
	// 1000 input + 1000 output on gpt-4o-mini.
	if !almostEqual(adm.EstimatedCost, 0.00075) {
		t.Errorf("Expected estimated cost 0.00075, got %f", adm.EstimatedCost)
	}
}

func TestAdmitRequiresAccount(t *testing.T) {
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	if _, err := manager.Admit(context.Background(), Request{}); err == nil {
		t.Error("Expected error for missing account id")
	}
}

func TestAdmitRateLimited(t *testing.T) {
	cfg := ratelimit.Config{RequestsPerSecond: 1, BurstCapacity: 1}
	manager, _, _ := newTestManager(t, cfg, budget.DefaultConfig(), testResolver())

	if _, err := manager.Admit(context.Background(), Request{AccountID: "acc-1"}); err != nil {
		t.Fatalf("First admit failed: %v", err)
	}

	_, err := manager.Admit(context.Background(), Request{AccountID: "acc-1"})
	var rateErr *ratelimit.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Expected RateLimitError, got %v", err)
	}
	if rateErr.Status != 429 {
		t.Errorf("Expected status 429, got %d", rateErr.Status)
	}
	if rateErr.RetryAfter <= 0 {
		t.Error("Expected positive RetryAfter")
	}
}

func TestAdmitBudgetExceeded(t *testing.T) {
	// A fallback-priced request of 3M combined tokens costs $6.
	budgetCfg := budget.Config{DailyBudget: 5, MonthlyBudget: 1000, AlertThreshold: 80}
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budgetCfg, testResolver())

	_, err := manager.Admit(context.Background(), Request{
		AccountID:       "acc-1",
		Model:           "unknown-model",
		InputTokens:     1_500_000,
		MaxOutputTokens: 1_500_000,
	})

	var budgetErr *budget.BudgetExceededError
	if !errors.As(err, &budgetErr) {
		t.Fatalf("Expected BudgetExceededError, got %v", err)
	}
	if budgetErr.Status != 402 {
		t.Errorf("Expected status 402, got %d", budgetErr.Status)
	}
	if budgetErr.BudgetStatus.DailyUsed != 0 {
		t.Errorf("Expected pre-check to leave ledger untouched, got %f", budgetErr.BudgetStatus.DailyUsed)
	}
}

func TestAdmitPreCheckDoesNotCharge(t *testing.T) {
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	for i := 0; i < 3; i++ {
		if _, err := manager.Admit(context.Background(), Request{
			AccountID:       "acc-1",
			InputTokens:     1000,
			MaxOutputTokens: 1000,
		}); err != nil {
			t.Fatalf("Admit failed: %v", err)
		}
	}

	status := manager.BudgetStatus("acc-1")
	if status.DailyUsed != 0 {
		t.Errorf("Expected no spend before Commit, got %f", status.DailyUsed)
	}
}

func TestAdmitProviderResolutionError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("database locked")}
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), resolver)

	_, err := manager.Admit(context.Background(), Request{AccountID: "acc-1"})
	if err == nil {
		t.Fatal("Expected resolution error")
	}

	var rateErr *ratelimit.RateLimitError
	var budgetErr *budget.BudgetExceededError
	if errors.As(err, &rateErr) || errors.As(err, &budgetErr) {
		t.Error("Expected a plain error, not an admission rejection")
	}
	if !strings.Contains(err.Error(), "acc-1") {
		t.Errorf("Expected account in error context, got %v", err)
	}
}

func TestAdmitEmptyRegistry(t *testing.T) {
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), &fakeResolver{})

	_, err := manager.Admit(context.Background(), Request{AccountID: "acc-1"})
	if err == nil {
		t.Fatal("Expected error for account with no providers")
	}

	var noProvErr *NoProviderError
	if !errors.As(err, &noProvErr) {
		t.Fatalf("Expected NoProviderError, got %T: %v", err, err)
	}
	if noProvErr.AccountID != "acc-1" {
		t.Errorf("Expected account acc-1, got %s", noProvErr.AccountID)
	}
}

func TestAdmitUnknownProviderName(t *testing.T) {
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	_, err := manager.Admit(context.Background(), Request{
		AccountID: "acc-1",
		Provider:  "does-not-exist",
	})

	var noProvErr *NoProviderError
	if !errors.As(err, &noProvErr) {
		t.Fatalf("Expected NoProviderError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "does-not-exist") {
		t.Errorf("Expected provider name in error, got %v", err)
	}
}

func TestAdmitNoMatchIsAudited(t *testing.T) {
	manager, sink, queue := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), &fakeResolver{})

	_, err := manager.Admit(context.Background(), Request{AccountID: "acc-1"})
	var noProvErr *NoProviderError
	if !errors.As(err, &noProvErr) {
		t.Fatalf("Expected NoProviderError, got %T: %v", err, err)
	}

	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.records) != 1 {
		t.Fatalf("Expected 1 audit record, got %d", len(sink.records))
	}
	meta := sink.records[0].NewValues
	if meta["reason"] != "no_provider" {
		t.Errorf("Expected no_provider rejection reason, got %v", meta["reason"])
	}
}

func TestAdmitExplicitProvider(t *testing.T) {
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	adm, err := manager.Admit(context.Background(), Request{
		AccountID: "acc-1",
		Provider:  "anthropic-chat",
	})
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if adm.Provider.Provider != "anthropic" {
		t.Errorf("Expected anthropic provider, got %s", adm.Provider.Provider)
	}
}

func TestAdmitUseCaseFallsBackToDefault(t *testing.T) {
	manager, _, _ := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	adm, err := manager.Admit(context.Background(), Request{
		AccountID: "acc-1",
		UseCase:   "chat",
	})
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if adm.Provider.Name != "anthropic-chat" {
		t.Errorf("Expected use-case provider, got %s", adm.Provider.Name)
	}

	adm, err = manager.Admit(context.Background(), Request{
		AccountID: "acc-1",
		UseCase:   "summarize",
	})
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}
	if adm.Provider.Name != "openai-default" {
		t.Errorf("Expected fallback to default provider, got %s", adm.Provider.Name)
	}
}

func TestCommitChargesActualCost(t *testing.T) {
	manager, sink, queue := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	adm, err := manager.Admit(context.Background(), Request{
		AccountID:       "acc-1",
		InputTokens:     1000,
		MaxOutputTokens: 2000,
	})
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	if err := manager.Commit(context.Background(), adm, Usage{
		InputTokens:  1000,
		OutputTokens: 1000,
	}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	status := manager.BudgetStatus("acc-1")
	if !almostEqual(status.DailyUsed, 0.00075) {
		t.Errorf("Expected daily spend 0.00075, got %f", status.DailyUsed)
	}

	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.records) != 2 {
		t.Fatalf("Expected request and response audit records, got %d", len(sink.records))
	}
	if sink.records[0].Action != string(audit.EventRequest) {
		t.Errorf("Expected first record llm_request, got %s", sink.records[0].Action)
	}
	if sink.records[1].Action != string(audit.EventResponse) {
		t.Errorf("Expected second record llm_response, got %s", sink.records[1].Action)
	}
	cost, ok := sink.records[1].NewValues["cost"].(float64)
	if !ok || !almostEqual(cost, 0.00075) {
		t.Errorf("Expected cost metadata, got %v", sink.records[1].NewValues["cost"])
	}
}

func TestCommitOverBudgetStillAudited(t *testing.T) {
	budgetCfg := budget.Config{DailyBudget: 0.0005, MonthlyBudget: 1000, AlertThreshold: 80}
	manager, _, queue := newTestManager(t, ratelimit.DefaultConfig(), budgetCfg, testResolver())

	adm := &Admission{
		Request:  Request{AccountID: "acc-1"},
		Provider: testResolver().providers[0],
		Model:    "gpt-4o-mini",
	}

	// Actual usage costs 0.00075, over the 0.0005 daily budget.
	err := manager.Commit(context.Background(), adm, Usage{InputTokens: 1000, OutputTokens: 1000})
	var budgetErr *budget.BudgetExceededError
	if !errors.As(err, &budgetErr) {
		t.Fatalf("Expected BudgetExceededError, got %v", err)
	}

	if queue.Size() != 1 {
		t.Errorf("Expected response audited despite rejection, queue size %d", queue.Size())
	}
}

func TestRecordError(t *testing.T) {
	manager, sink, queue := newTestManager(t, ratelimit.DefaultConfig(), budget.DefaultConfig(), testResolver())

	adm, err := manager.Admit(context.Background(), Request{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("Admit failed: %v", err)
	}

	manager.RecordError(context.Background(), adm, errors.New("upstream timeout"))

	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	last := sink.records[len(sink.records)-1]
	if last.Action != string(audit.EventError) {
		t.Errorf("Expected llm_error, got %s", last.Action)
	}
	if last.NewValues["error"] != "upstream timeout" {
		t.Errorf("Expected error message in metadata, got %v", last.NewValues["error"])
	}

	status := manager.BudgetStatus("acc-1")
	if status.DailyUsed != 0 {
		t.Errorf("Expected no charge on error, got %f", status.DailyUsed)
	}
}

func TestRejectionsAreAudited(t *testing.T) {
	cfg := ratelimit.Config{RequestsPerSecond: 1, BurstCapacity: 1}
	manager, sink, queue := newTestManager(t, cfg, budget.DefaultConfig(), testResolver())

	manager.Admit(context.Background(), Request{AccountID: "acc-1"})
	manager.Admit(context.Background(), Request{AccountID: "acc-1"}) // rejected

	if err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	last := sink.records[len(sink.records)-1]
	if last.Action != string(audit.EventError) {
		t.Errorf("Expected rejection audited as llm_error, got %s", last.Action)
	}
	if last.NewValues["reason"] != "rate_limit" {
		t.Errorf("Expected rate_limit reason, got %v", last.NewValues["reason"])
	}
}
