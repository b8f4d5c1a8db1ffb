// Package provider contains credits provider implementations backed by
// structured music databases.
//
// The Provider interface is defined in internal/credits (credits.Provider),
// following the Go convention of defining interfaces where they are consumed.
// Each sub-package here implements that interface for a specific service.
// The Wikipedia provider lives in internal/wikipedia alongside its parser.
package provider
