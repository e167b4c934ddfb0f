// Package dispatch maps provider/function requests onto provider module calls.
package dispatch

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// NotFoundError reports a provider/function pair that maps to no module file.
// Always recoverable: the caller fixes the path or runs the build step.
type NotFoundError struct {
	Provider string
	Function string
	Path     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider %q has no %q module", e.Provider, e.Function)
}

// ExecutionError wraps a failure raised while loading a module or invoking
// one of its functions. Surfaced verbatim to the developer; nothing retries.
type ExecutionError struct {
	Provider string
	Function string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s/%s failed: %s", e.Provider, e.Function, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Stack returns the interpreter traceback when the underlying failure
// carries one.
func (e *ExecutionError) Stack() string {
	var apiErr *lua.ApiError
	if errors.As(e.Err, &apiErr) {
		return apiErr.StackTrace
	}
	return ""
}
