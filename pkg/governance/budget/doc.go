// Package budget provides cost estimation and per-account budget
// enforcement for the governance layer.
//
// # Overview
//
// The Estimator converts token usage into USD using a static per-model
// rate table with a conservative fallback for unrecognized models, so a
// new model name can never fail a request.
//
// The Tracker maintains one ledger per account with independent daily
// and monthly running totals. Windows reset on calendar boundaries
// (UTC day and month), detected lazily on the next access rather than
// by background timers. TrackCost is check-then-commit: a rejected
// charge leaves the ledger untouched.
//
// # Usage
//
//	tracker := budget.NewTracker(budget.Config{
//	    DailyBudget:    100,
//	    MonthlyBudget:  1000,
//	    AlertThreshold: 80,
//	})
//
//	cost := estimator.EstimateCost("gpt-4o-mini", in, out)
//	if err := tracker.TrackCost(accountID, cost, model); err != nil {
//	    // reject with HTTP 402 and the attached BudgetStatus
//	}
//
// # Thread Safety
//
// Estimator and Tracker are safe for concurrent use.
package budget
