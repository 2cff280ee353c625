// Package exitcode carries process exit codes on error values so that
// commands can decide the code where a failure is detected and main only
// has to extract it.
package exitcode

import (
	"fmt"
	"os/exec"

	"github.com/cockroachdb/errors"
)

const (
	OK      = 0
	Failure = 1
	Config  = 2
)

type exitCoder struct {
	cause error
	code  int
}

func (e *exitCoder) Error() string {
	return e.cause.Error()
}

func (e *exitCoder) Cause() error {
	return e.cause
}

func (e *exitCoder) Unwrap() error {
	return e.cause
}

func (e *exitCoder) ExitCode() int {
	return e.code
}

// WithExitCode attaches an exit code to err. A nil err stays nil.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &exitCoder{cause: err, code: code}
}

// ReportedError is a failure whose message has already been printed.
// main exits with Code and prints nothing further.
type ReportedError struct {
	Code int
}

func (e ReportedError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Reported returns an error that only carries code, or nil for OK.
func Reported(code int) error {
	if code == OK {
		return nil
	}
	return ReportedError{Code: code}
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var reported ReportedError
	return errors.As(err, &reported)
}

// Get extracts the exit code from an error chain.
//
// It checks, in order:
//  1. ReportedError.
//  2. A code attached with WithExitCode.
//  3. exec.ExitError from a child process.
//  4. Failure.
func Get(err error) int {
	if err == nil {
		return OK
	}

	var reported ReportedError
	if errors.As(err, &reported) {
		return reported.Code
	}

	var ec *exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return Failure
}
