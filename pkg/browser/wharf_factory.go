package browser

import (
	"errors"
	"strings"

	"github.com/entrhq/drydock/pkg/logging"
	"github.com/entrhq/drydock/pkg/retry"
	"github.com/entrhq/drydock/pkg/wharf"
)

// wharfOuterRetries bounds how many containers a single create call may burn
// through before giving up.
const wharfOuterRetries = 2

// ContainerProvider is the lease protocol the container-backed factory
// consumes. *wharf.Client satisfies it.
type ContainerProvider interface {
	// Checkout reserves a container, or returns the currently held one.
	Checkout() (*wharf.ConnectionInfo, error)

	// Checkin releases the held container. Safe to call when none is held.
	Checkin() error

	// Lease returns the held container, or nil.
	Lease() *wharf.ConnectionInfo
}

// WharfFactory creates sessions inside containers checked out from a wharf
// service. Each failed creation attempt returns its container so the next
// attempt starts from a fresh one.
type WharfFactory struct {
	direct *DirectFactory
	wharf  ContainerProvider
	policy retry.Policy
	log    *logging.Logger
}

// NewWharfFactory creates a container-backed factory. See NewDirectFactory
// for the nil-argument defaults.
func NewWharfFactory(backend string, opts Options, provider ContainerProvider, newDriver DriverFunc, log *logging.Logger) *WharfFactory {
	if log == nil {
		log, _ = logging.NewLogger("browser")
	}
	f := &WharfFactory{
		direct: NewDirectFactory(backend, opts, newDriver, log),
		wharf:  provider,
		policy: retry.Policy{
			Attempts: wharfOuterRetries,
			Retryable: func(err error) bool {
				return errors.Is(err, ErrBackendUnreachable) || IsClientError(err)
			},
		},
		log: log,
	}

	// Chrome sandboxes itself with containers, and wharf already runs the
	// browser inside one; nested container sandboxes do not work, so the
	// browser's own sandbox has to go.
	caps := f.direct.opts.DesiredCapabilities
	if strings.EqualFold(caps.BrowserName(), "chrome") {
		caps.EnsureChromeArg(chromeNoSandboxArg)
	}
	return f
}

// ProcessedOptions implements Factory. The automation endpoint is taken from
// the held container lease.
func (f *WharfFactory) ProcessedOptions() Options {
	opts := f.direct.ProcessedOptions()
	if lease := f.wharf.Lease(); lease != nil {
		opts.CommandExecutor = lease.WebdriverURL
		f.log.Infof("webdriver command executor set to %s", lease.WebdriverURL)
		f.log.Infof("%s", lease.ViewMessage())
	}
	return opts
}

// Create implements Factory. Backend-unreachable and client errors are worth
// a second attempt on a fresh container; everything else propagates after the
// container has been returned.
func (f *WharfFactory) Create() (Driver, error) {
	return retry.DoPolicy(f.policy, f.createOnce)
}

// createOnce is one checkout-create attempt. The deferred checkin guarantees
// the container goes back on every failure path, whatever the cause.
func (f *WharfFactory) createOnce() (drv Driver, err error) {
	defer func() {
		if err != nil {
			f.log.Errorf("failure on webdriver create, returning container: %v", err)
			if cerr := f.wharf.Checkin(); cerr != nil {
				f.log.Errorf("container checkin failed: %v", cerr)
			}
		}
	}()

	if _, err = f.wharf.Checkout(); err != nil {
		return nil, err
	}
	return f.direct.create(f.ProcessedOptions())
}

// Close implements Factory. The container is checked back in on every exit
// path, including a failing session close.
func (f *WharfFactory) Close(drv Driver) error {
	defer func() {
		if err := f.wharf.Checkin(); err != nil {
			f.log.Errorf("container checkin failed: %v", err)
		}
	}()
	return f.direct.Close(drv)
}
