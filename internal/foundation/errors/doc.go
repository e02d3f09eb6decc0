// Package errors provides classified error primitives used across continuity.
//
// Every error that crosses a package boundary carries a category, a severity and
// optional structured context, built through the fluent ErrorBuilder:
//
//	err := errors.NewError(errors.CategoryFileSystem, "failed to read document").
//		WithSeverity(errors.SeverityWarning).
//		WithContext("path", path).
//		WithCause(readErr).
//		Build()
//
// Structural findings (broken links, cycles, terminology drift) are never errors;
// they are issue records in the report. This package only covers tool failures.
package errors
