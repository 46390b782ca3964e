package governance

import (
	"fmt"

	"fieldstack/callisto/pkg/registry"
)

// NoProviderError is returned by Admit when provider resolution
// succeeds but matches no active configuration: the named provider
// does not exist, or the account has neither a use-case match nor a
// default provider.
type NoProviderError struct {
	// AccountID is the account the request was resolved for.
	AccountID string

	// Provider is the explicitly requested provider name, if any.
	Provider string

	// UseCase is the requested use case, if any.
	UseCase string
}

// Error implements the error interface.
func (e *NoProviderError) Error() string {
	switch {
	case e.Provider != "":
		return fmt.Sprintf("no active provider %q configured for account %s", e.Provider, e.AccountID)
	case e.UseCase != "":
		return fmt.Sprintf("no provider configured for account %s (use case %q, no default)", e.AccountID, e.UseCase)
	default:
		return fmt.Sprintf("no default provider configured for account %s", e.AccountID)
	}
}

// Request describes an LLM request seeking admission.
type Request struct {
	// AccountID is the governed account. Required.
	AccountID string `json:"account_id"`

	// Provider optionally names an explicit provider configuration.
	// When empty the account's default provider is resolved.
	Provider string `json:"provider,omitempty"`

	// UseCase optionally narrows provider resolution to configurations
	// tagged for a use case. Ignored when Provider is set.
	UseCase string `json:"use_case,omitempty"`

	// Model optionally overrides the resolved provider's model for
	// cost estimation.
	Model string `json:"model,omitempty"`

	// InputTokens is the estimated prompt size.
	InputTokens int `json:"input_tokens"`

	// MaxOutputTokens is the completion ceiling used for the
	// worst-case cost pre-check.
	MaxOutputTokens int `json:"max_output_tokens"`
}

// Admission is the result of a successful Admit call. It carries the
// resolved provider and enough context for Commit and RecordError.
type Admission struct {
	// Request is the admitted request.
	Request Request `json:"request"`

	// Provider is the resolved provider configuration.
	Provider registry.ProviderConfig `json:"provider"`

	// Model is the model the cost pre-check was made against.
	Model string `json:"model"`

	// EstimatedCost is the worst-case cost the budget pre-check used.
	EstimatedCost float64 `json:"estimated_cost"`
}

// Usage is the token usage reported by a completed provider call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
