// Callisto is a governance layer for LLM API requests.
//
// It sits in front of LLM provider calls and enforces per-account
// admission control:
//   - Token-bucket rate limiting per account
//   - Daily and monthly budget enforcement with cost estimation
//   - Cached provider configuration resolution
//   - Asynchronous batched audit logging
//
// Usage:
//
//	# Start the admin server with default configuration
//	callisto run
//
//	# Start with custom configuration file
//	callisto run --config /path/to/config.yaml
//
//	# Show version information
//	callisto version
//
//	# Validate a configuration file without starting
//	callisto validate --config /path/to/config.yaml
package main

func main() {
	Execute()
}
