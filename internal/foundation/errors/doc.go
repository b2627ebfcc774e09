// Package errors provides type-safe error primitives used across trac2md.
//
// Errors are classified by category (config, source, conversion, attachment, ...)
// and severity. The category decides how the CLI reports the failure and which
// exit code it uses; the severity decides whether a batch run stops.
//
// Example usage:
//
//	err := errors.SourceError("query wiki pages").
//		WithContext("environment", envPath).
//		WithCause(dbErr).
//		Build()
package errors
