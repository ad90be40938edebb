package browser

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/playwright-community/playwright-go"
)

// ErrBackendUnreachable reports that the automation backend actively refused
// the connection. It is distinct from every other creation failure so callers
// can tell "the hub is down" apart from browser-side errors.
var ErrBackendUnreachable = errors.New("could not connect to the webdriver backend: is it up and running?")

// ErrAlreadyOpen is returned when a fresh session is requested while the
// manager still owns one.
var ErrAlreadyOpen = errors.New("browser session already open")

// ErrNotOpen is returned by operations that require an open session.
var ErrNotOpen = errors.New("no browser session open")

// DriverError is the error kind raised by automation drivers other than the
// bundled Playwright one. Wrapping a failure in DriverError marks it
// retryable during session creation.
type DriverError struct {
	Op  string
	Err error
}

func (e *DriverError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("webdriver: %s failed", e.Op)
	}
	return fmt.Sprintf("webdriver: %s failed: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// AlertOpenError reports that a modal dialog is blocking the page. A pending
// dialog does not mean the session is dead, so the liveness probe treats it
// as alive.
type AlertOpenError struct {
	Text string
}

func (e *AlertOpenError) Error() string {
	return fmt.Sprintf("unexpected alert open: %s", e.Text)
}

// IsClientError reports whether err originated inside the automation client.
// These are the failures worth another creation attempt.
func IsClientError(err error) bool {
	var pwErr *playwright.Error
	if errors.As(err, &pwErr) {
		return true
	}
	var drvErr *DriverError
	return errors.As(err, &drvErr)
}

// translateConnError rewrites an OS-level connection-refused failure into
// ErrBackendUnreachable. Every other error passes through unchanged.
func translateConnError(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w (%v)", ErrBackendUnreachable, err)
	}
	return err
}
