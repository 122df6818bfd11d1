// Package errors provides centralized error handling for dairytrack-go.
// Errors carry a category, the component they originated in and arbitrary
// context data, so that log output and API responses stay consistent
// across packages.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"time"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	CategorySheetFetch       ErrorCategory = "sheet-fetch"
	CategoryCSVParsing       ErrorCategory = "csv-parsing"
	CategorySchemaResolution ErrorCategory = "schema-resolution"
	CategoryDateParse        ErrorCategory = "date-parse"
	CategoryNumericCoercion  ErrorCategory = "numeric-coercion"
	CategoryConfiguration    ErrorCategory = "configuration"
	CategoryValidation       ErrorCategory = "validation"
	CategoryNetwork          ErrorCategory = "network"
	CategoryHTTP             ErrorCategory = "http-request"
	CategoryFileIO           ErrorCategory = "file-io"
	CategoryGeneric          ErrorCategory = "generic"
)

// ComponentUnknown is used when the component cannot be determined.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with additional context and metadata
type EnhancedError struct {
	Err       error          // Original error
	component string         // Component where error occurred (lazily detected)
	Category  ErrorCategory  // Error category for better grouping
	Context   map[string]any // Additional context data
	Timestamp time.Time      // When the error occurred
}

// Error implements the error interface
func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

// Unwrap implements the error unwrapping interface
func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// Is implements error type checking
func (ee *EnhancedError) Is(target error) bool {
	if ee2, ok := target.(*EnhancedError); ok {
		return ee.Category == ee2.Category
	}
	return Is(ee.Err, target)
}

// GetComponent returns the component name, detecting it lazily if needed
func (ee *EnhancedError) GetComponent() string {
	if ee.component == "" {
		ee.component = detectComponent()
		if ee.component == "" {
			ee.component = ComponentUnknown
		}
	}
	return ee.component
}

// GetCategory returns the error category
func (ee *EnhancedError) GetCategory() string {
	return string(ee.Category)
}

// GetContext returns a context value by key
func (ee *EnhancedError) GetContext(key string) (any, bool) {
	if ee.Context == nil {
		return nil, false
	}
	v, ok := ee.Context[key]
	return v, ok
}

// ErrorBuilder provides a fluent interface for building enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder from an existing error
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{
		err:      err,
		category: CategoryGeneric,
	}
}

// Newf creates a new error builder from a format string
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component where the error occurred
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds a key-value pair to the error context
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build creates the enhanced error
func (eb *ErrorBuilder) Build() *EnhancedError {
	var ctx map[string]any
	if eb.context != nil {
		ctx = make(map[string]any, len(eb.context))
		maps.Copy(ctx, eb.context)
	}
	return &EnhancedError{
		Err:       eb.err,
		component: eb.component,
		Category:  eb.category,
		Context:   ctx,
		Timestamp: time.Now(),
	}
}

// componentsByPackage maps internal package path fragments to component names
// for lazy component detection from the call stack.
var componentsByPackage = map[string]string{
	"internal/sheets":    "sheets",
	"internal/records":   "records",
	"internal/aggregate": "aggregate",
	"internal/reconcile": "reconcile",
	"internal/audit":     "audit",
	"internal/refresh":   "refresh",
	"internal/api":       "api",
	"internal/conf":      "conf",
	"internal/keyword":   "keyword",
	"internal/logging":   "logging",
	"cmd/":               "cli",
}

// detectComponent walks the call stack looking for the first frame that
// belongs to one of our packages. Returns "" if nothing matched.
func detectComponent() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		// Skip frames inside this package itself
		if strings.Contains(frame.File, "internal/errors") {
			if !more {
				break
			}
			continue
		}
		for fragment, component := range componentsByPackage {
			if strings.Contains(frame.File, fragment) {
				return component
			}
		}
		if !more {
			break
		}
	}
	return ""
}

// Standard library compatibility re-exports so callers only import this package.

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
