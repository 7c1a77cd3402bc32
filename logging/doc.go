// Package logging provides a minimal logging interface and slog adapters for cart-ai.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, agents and tools use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.New(logging.Config{Level: logging.LevelInfo, Format: "json"})
//	eng := engine.New(router, func(o *engine.Options) { o.Logger = logger })
//
// Messages are dotted event names ("engine.step.route") followed by key/value pairs.
package logging
