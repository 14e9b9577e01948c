package main

import "fmt"

// Exit codes.
const (
	exitOK = 0
	// exitFindings signals error findings or too many warnings.
	exitFindings = 1
	// exitFailure signals bad usage, bad config or files that failed to lint.
	exitFailure = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func failure(err error) error {
	return &ExitError{Code: exitFailure, Err: err}
}
