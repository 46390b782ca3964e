// Package telemetry provides observability building blocks for Callisto.
//
// # Overview
//
// The telemetry package groups the observability concerns of the
// governance runtime. Structured logging lives in the logging
// subpackage; Prometheus metrics are registered by the packages that
// own them and exposed by the admin server.
//
// # Components
//
//   - logging: slog-based structured logging with configurable level
//     and format
//
// # Usage
//
//	cfg := config.GetConfig()
//	if err := logging.Setup(logging.Config{
//		Level:  cfg.Telemetry.Logging.Level,
//		Format: cfg.Telemetry.Logging.Format,
//	}); err != nil {
//		return err
//	}
//	slog.Info("governance runtime starting")
package telemetry
