package budget

import "fmt"

// Config contains budget limits for an account ledger.
type Config struct {
	// DailyBudget is the calendar-day spend limit in USD.
	// Zero disables the daily limit. Default: 100.
	DailyBudget float64

	// MonthlyBudget is the calendar-month spend limit in USD.
	// Zero disables the monthly limit. Default: 1000.
	MonthlyBudget float64

	// AlertThreshold is the usage percentage (0-100) at which advisory
	// alerts are emitted. Alerts never block a request. Default: 80.
	AlertThreshold float64
}

// DefaultConfig returns the default budget configuration.
func DefaultConfig() Config {
	return Config{
		DailyBudget:    100,
		MonthlyBudget:  1000,
		AlertThreshold: 80,
	}
}

// BudgetStatus reports an account's spend against both windows, plus any
// advisory alerts that have crossed the configured threshold.
type BudgetStatus struct {
	DailyUsed         float64  `json:"daily_used"`
	DailyBudget       float64  `json:"daily_budget"`
	DailyPercentage   float64  `json:"daily_percentage"`
	MonthlyUsed       float64  `json:"monthly_used"`
	MonthlyBudget     float64  `json:"monthly_budget"`
	MonthlyPercentage float64  `json:"monthly_percentage"`
	Alerts            []string `json:"alerts"`
}

// BudgetExceededError is returned by TrackCost when committing a charge
// would exceed a configured limit. The charge is not applied.
type BudgetExceededError struct {
	// Status is the HTTP status code for this rejection (402).
	Status int

	// Code is the stable error code ("PAYMENT_REQUIRED").
	Code string

	// Message is a human-readable description naming the window and
	// amounts involved.
	Message string

	// BudgetStatus is the account's ledger state at rejection time,
	// for caller-side actionability.
	BudgetStatus BudgetStatus
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
}
