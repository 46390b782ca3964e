package budget

import (
	"fmt"
	"sync"
	"time"
)

// ledger holds the per-account budget state.
//
// Invariant: a window total is reset to zero exactly once when the
// wall clock crosses into a new calendar day or month, detected lazily
// on the next access. No background timer is involved.
type ledger struct {
	dailyCost        float64
	monthlyCost      float64
	dailyResetDate   string // YYYY-MM-DD
	monthlyResetDate string // YYYY-MM
}

// Tracker enforces daily and monthly spend limits per account.
//
// TrackCost is strictly check-then-commit: when a charge would exceed
// either configured limit the ledger is left byte-for-byte unchanged
// and a *BudgetExceededError is returned.
type Tracker struct {
	config  Config
	ledgers map[string]*ledger
	mu      sync.Mutex

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewTracker creates a budget tracker. Negative limits are treated as
// unset and fall back to the defaults ($100/day, $1000/month, alert at
// 80%). A zero limit disables that window.
func NewTracker(cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.DailyBudget < 0 {
		cfg.DailyBudget = def.DailyBudget
	}
	if cfg.MonthlyBudget < 0 {
		cfg.MonthlyBudget = def.MonthlyBudget
	}
	if cfg.AlertThreshold <= 0 {
		cfg.AlertThreshold = def.AlertThreshold
	}

	return &Tracker{
		config:  cfg,
		ledgers: make(map[string]*ledger),
		now:     time.Now,
	}
}

// TrackCost charges cost USD against accountID's daily and monthly
// windows. Returns nil when the charge was committed. When either
// configured limit would be exceeded the charge is rejected without
// mutating the ledger and a *BudgetExceededError (status 402) is
// returned. The model name is carried for error context only.
func (t *Tracker) TrackCost(accountID string, cost float64, model string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.getOrCreateLocked(accountID)
	t.rolloverLocked(l)

	if err := t.checkLocked(l, cost, model); err != nil {
		return err
	}

	// Both windows cleared the check: commit atomically.
	l.dailyCost += cost
	l.monthlyCost += cost

	return nil
}

// CheckCost reports whether a charge of cost USD would be accepted,
// without committing anything. Used as the admission pre-check at the
// estimated cost before the provider call is made.
func (t *Tracker) CheckCost(accountID string, cost float64, model string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.getOrCreateLocked(accountID)
	t.rolloverLocked(l)

	return t.checkLocked(l, cost, model)
}

func (t *Tracker) checkLocked(l *ledger, cost float64, model string) error {
	newDaily := l.dailyCost + cost
	newMonthly := l.monthlyCost + cost

	if t.config.DailyBudget > 0 && newDaily > t.config.DailyBudget {
		return &BudgetExceededError{
			Status: 402,
			Code:   "PAYMENT_REQUIRED",
			Message: fmt.Sprintf("daily budget exceeded for model %s: current $%.2f, request $%.4f, limit $%.2f",
				model, l.dailyCost, cost, t.config.DailyBudget),
			BudgetStatus: t.statusLocked(l),
		}
	}

	if t.config.MonthlyBudget > 0 && newMonthly > t.config.MonthlyBudget {
		return &BudgetExceededError{
			Status: 402,
			Code:   "PAYMENT_REQUIRED",
			Message: fmt.Sprintf("monthly budget exceeded for model %s: current $%.2f, request $%.4f, limit $%.2f",
				model, l.monthlyCost, cost, t.config.MonthlyBudget),
			BudgetStatus: t.statusLocked(l),
		}
	}

	return nil
}

// Status returns the current budget status for an account, applying any
// pending calendar rollover first. Alerts are advisory and appear once
// usage crosses the configured threshold.
func (t *Tracker) Status(accountID string) BudgetStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.getOrCreateLocked(accountID)
	t.rolloverLocked(l)

	return t.statusLocked(l)
}

// Reset removes the ledger for an account.
func (t *Tracker) Reset(accountID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ledgers, accountID)
}

// ResetAll removes all ledgers.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ledgers = make(map[string]*ledger)
}

// getOrCreateLocked returns the ledger for accountID, creating a zeroed
// one stamped with the current calendar windows if absent.
// Caller must hold the lock.
func (t *Tracker) getOrCreateLocked(accountID string) *ledger {
	l, ok := t.ledgers[accountID]
	if !ok {
		now := t.now().UTC()
		l = &ledger{
			dailyResetDate:   now.Format("2006-01-02"),
			monthlyResetDate: now.Format("2006-01"),
		}
		t.ledgers[accountID] = l
	}
	return l
}

// rolloverLocked zeroes a window total when the wall clock has crossed
// into a new calendar day or month since the last access.
// Caller must hold the lock.
func (t *Tracker) rolloverLocked(l *ledger) {
	now := t.now().UTC()

	if today := now.Format("2006-01-02"); l.dailyResetDate != today {
		l.dailyResetDate = today
		l.dailyCost = 0
	}

	if month := now.Format("2006-01"); l.monthlyResetDate != month {
		l.monthlyResetDate = month
		l.monthlyCost = 0
	}
}

// statusLocked builds the status snapshot for a ledger.
// Caller must hold the lock.
func (t *Tracker) statusLocked(l *ledger) BudgetStatus {
	status := BudgetStatus{
		DailyUsed:     l.dailyCost,
		DailyBudget:   t.config.DailyBudget,
		MonthlyUsed:   l.monthlyCost,
		MonthlyBudget: t.config.MonthlyBudget,
	}

	if t.config.DailyBudget > 0 {
		status.DailyPercentage = l.dailyCost / t.config.DailyBudget * 100
	}
	if t.config.MonthlyBudget > 0 {
		status.MonthlyPercentage = l.monthlyCost / t.config.MonthlyBudget * 100
	}

	if t.config.DailyBudget > 0 && status.DailyPercentage >= t.config.AlertThreshold {
		status.Alerts = append(status.Alerts,
			fmt.Sprintf("daily budget at %.1f%% ($%.2f/$%.2f)",
				status.DailyPercentage, l.dailyCost, t.config.DailyBudget))
	}
	if t.config.MonthlyBudget > 0 && status.MonthlyPercentage >= t.config.AlertThreshold {
		status.Alerts = append(status.Alerts,
			fmt.Sprintf("monthly budget at %.1f%% ($%.2f/$%.2f)",
				status.MonthlyPercentage, l.monthlyCost, t.config.MonthlyBudget))
	}

	return status
}
