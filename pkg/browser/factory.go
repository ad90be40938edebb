package browser

import (
	"github.com/entrhq/drydock/pkg/logging"
	"github.com/entrhq/drydock/pkg/retry"
)

// createAttempts bounds how many times a single factory create call invokes
// the automation client.
const createAttempts = 2

// Factory turns configuration into live sessions and disposes of them. Two
// implementations exist: DirectFactory talks to the automation client
// directly, WharfFactory runs each session inside a checked-out container.
type Factory interface {
	// ProcessedOptions returns the option bag adjusted for the selected
	// backend. The returned bag is a copy; mutating it does not affect
	// future sessions.
	ProcessedOptions() Options

	// Create builds a ready-to-use session: options processed, client
	// invoked under the retry policy, post-create adjustments applied.
	Create() (Driver, error)

	// Close terminates a session. Passing nil is a no-op.
	Close(Driver) error
}

// DirectFactory creates sessions against the automation client directly.
type DirectFactory struct {
	backend   string
	opts      Options
	newDriver DriverFunc
	policy    retry.Policy
	log       *logging.Logger
}

// NewDirectFactory creates a factory for the named backend. A nil newDriver
// selects the bundled Playwright driver; a nil logger falls back to a
// stderr-backed one.
func NewDirectFactory(backend string, opts Options, newDriver DriverFunc, log *logging.Logger) *DirectFactory {
	if newDriver == nil {
		newDriver = NewPlaywrightDriver
	}
	if log == nil {
		log, _ = logging.NewLogger("browser")
	}
	f := &DirectFactory{
		backend:   backend,
		opts:      opts,
		newDriver: newDriver,
		policy:    retry.Policy{Attempts: createAttempts, Retryable: IsClientError},
		log:       log,
	}
	f.stripUnsupportedOptions()
	return f
}

// stripUnsupportedOptions drops option keys the selected backend does not
// understand. Desired capabilities belong to the remote protocol only, but
// can sneak in from shared config files.
func (f *DirectFactory) stripUnsupportedOptions() {
	if f.backend != BackendRemote {
		f.opts.DesiredCapabilities = nil
	}
}

// ProcessedOptions implements Factory.
func (f *DirectFactory) ProcessedOptions() Options {
	f.stripUnsupportedOptions()

	opts := f.opts.Clone()
	if opts.KeepAlive != nil {
		// Known client limitation with reused connections; not configurable.
		f.log.Warnf("forcing browser keep_alive to false due to automation client connection reuse bugs; " +
			"we are aware of the performance cost and hope to redeem")
		v := false
		opts.KeepAlive = &v
	}
	return opts
}

// Create implements Factory.
func (f *DirectFactory) Create() (Driver, error) {
	return f.create(f.ProcessedOptions())
}

// create runs the client constructor under the retry policy with an explicit
// option bag. The container-backed factory reuses this path with its own
// processed options.
func (f *DirectFactory) create(opts Options) (Driver, error) {
	drv, err := retry.DoPolicy(f.policy, func() (Driver, error) {
		return f.newDriver(opts)
	})
	if err != nil {
		return nil, translateConnError(err)
	}

	if err := drv.DisableFileDetection(); err != nil {
		return nil, err
	}
	if err := drv.MaximizeWindow(); err != nil {
		return nil, err
	}
	return drv, nil
}

// Close implements Factory.
func (f *DirectFactory) Close(drv Driver) error {
	if drv == nil {
		return nil
	}
	return drv.Quit()
}
