// Package governance orchestrates admission control for LLM requests.
//
// # Overview
//
// The Manager ties the per-account rate limiter, the budget tracker and
// cost estimator, the cached provider repository, and the audit queue
// into one request lifecycle:
//
//  1. Admit: rate limit check, budget pre-check at the estimated cost,
//     and provider resolution. A rejection carries a structured error
//     (429 rate limit with retry-after, 402 budget exceeded with the
//     account's budget status).
//  2. The caller makes the provider call. That call is outside this
//     package.
//  3. Commit: the actual cost is computed from reported token usage,
//     charged against the account's budget, and audited.
//  4. RecordError: a failed provider call is audited without a charge.
//
// Only admission failures change the outcome of a governed request.
// Cache and audit failures degrade gracefully and never fail the
// request.
//
// # Usage
//
//	manager := governance.NewManager(governance.Options{
//	    Limiter:   limiter,
//	    Estimator: estimator,
//	    Tracker:   tracker,
//	    Providers: repository,
//	    Audit:     queue,
//	})
//
//	adm, err := manager.Admit(ctx, governance.Request{
//	    AccountID:       "acc-1",
//	    Model:           "gpt-4o-mini",
//	    InputTokens:     1200,
//	    MaxOutputTokens: 500,
//	})
//	if err != nil {
//	    // 429 or 402, surface to the caller
//	}
//
//	// ... call the provider ...
//
//	manager.Commit(ctx, adm, governance.Usage{
//	    InputTokens:  1180,
//	    OutputTokens: 342,
//	})
//
// # Thread Safety
//
// Manager is safe for concurrent use; every component it coordinates
// guards its own state.
package governance
