// Package errors provides the classified error primitives used across docversions.
//
// Every failure that reaches the CLI is either a ClassifiedError or wraps one. The
// category drives the process exit code and the severity drives log level; the cause
// chain is preserved so callers can still match package sentinels with errors.Is.
//
// Key features:
//   - ErrorCategory: broad classification (config, validation, git, command, build, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ErrorBuilder: fluent construction with context and cause
//   - CLIErrorAdapter: exit code mapping and terminal rendering
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryBuild, "content directory not found").
//		WithCause(docsbuild.ErrMissingContent).
//		WithContext("path", contentDir).
//		Build()
package errors
