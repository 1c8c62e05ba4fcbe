// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Document persistence, unique per (user, hash)
//   - SourceStore: Monitored sources and their watermarks
//   - Platform: The authorized Telegram user session
//   - ConfigStore: Application configuration
//
// There are no optional ports: the core never runs against a placeholder
// store. cmd/tgindex picks a backend and fails at startup when it is
// unreachable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
