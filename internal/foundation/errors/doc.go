// Package errors provides the classified error primitives used across the site builder.
//
// Every failure that crosses a package boundary carries a category (what kind of
// subsystem failed), a severity (how much of the build it affects) and a retry
// strategy (whether trying again can help). Callers add structured context and an
// optional cause through the fluent builder:
//
//	err := errors.FetchError("feature image lookup failed").
//		WithContext("url", endpoint).
//		WithCause(err).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
