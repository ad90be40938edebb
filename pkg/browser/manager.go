package browser

import (
	"errors"
	"strings"

	"github.com/entrhq/drydock/pkg/config"
	"github.com/entrhq/drydock/pkg/logging"
	"github.com/entrhq/drydock/pkg/wharf"
)

// Manager owns at most one live browser session and keeps it usable across a
// test run: it probes the session before handing it out and replaces it when
// the probe says it died.
//
// Manager is single-owner, single-goroutine state. Callers that share one
// across goroutines must synchronize externally.
type Manager struct {
	factory Factory
	log     *logging.Logger

	// driver is the owned session; nil means closed.
	driver Driver
	// cleanups run most-recent first during Quit, before the session closes.
	// The slice belongs to the current driver and is dropped with it.
	cleanups []func()
}

// NewManager creates a manager around a session factory. A nil logger falls
// back to a stderr-backed one.
func NewManager(factory Factory, log *logging.Logger) *Manager {
	if log == nil {
		log, _ = logging.NewLogger("browser")
	}
	return &Manager{factory: factory, log: log}
}

// FromConfig builds a manager from a parsed configuration, applying the
// backend-specific capability adjustments the remote protocols need.
func FromConfig(cfg *config.Config, log *logging.Logger) (*Manager, error) {
	if log == nil {
		log, _ = logging.NewLogger("browser")
	}
	opts := optionsFromConfig(cfg.WebdriverOptions)
	name := strings.ToLower(opts.DesiredCapabilities.BrowserName())

	if cfg.WebdriverWharf != nil {
		if name == "firefox" {
			// The containerized image runs the legacy firefox protocol.
			opts.DesiredCapabilities[capMarionette] = false
		}
		client := wharf.NewClient(*cfg.WebdriverWharf, log.Component("wharf"))
		return NewManager(NewWharfFactory(cfg.Webdriver, opts, client, nil, log), log), nil
	}

	if cfg.Webdriver == BackendRemote {
		switch name {
		case "chrome":
			opts.DesiredCapabilities[capChromeOptions] = map[string]any{
				"args": []any{chromeNoSandboxArg},
			}
			delete(opts.DesiredCapabilities, capMarionette)
		case "firefox":
			opts.DesiredCapabilities[capMarionette] = false
		}
	}
	return NewManager(NewDirectFactory(cfg.Webdriver, opts, nil, log), log), nil
}

// optionsFromConfig converts the serialized option bag into the processing
// form, deep-copied so the config is never aliased by a live session.
func optionsFromConfig(o config.Options) Options {
	return Options{
		CommandExecutor:     o.CommandExecutor,
		KeepAlive:           o.KeepAlive,
		DesiredCapabilities: Capabilities(o.DesiredCapabilities).Clone(),
	}
}

// Current returns the owned session, or nil when closed. It does not probe.
func (m *Manager) Current() Driver {
	return m.driver
}

// isAlive probes the owned session with a cheap read. A pending modal alert
// counts as alive; any other probe failure counts as dead and is logged, not
// surfaced.
func (m *Manager) isAlive() bool {
	m.log.Debugf("alive check")
	if m.driver == nil {
		return false
	}
	if _, err := m.driver.CurrentURL(); err != nil {
		var alert *AlertOpenError
		if errors.As(err, &alert) {
			// A blocked page is still a live session.
			return true
		}
		m.log.Errorf("browser in unknown state, considering dead: %v", err)
		return false
	}
	return true
}

// EnsureOpen returns the owned session if it is still alive, otherwise
// replaces it with a fresh one.
func (m *Manager) EnsureOpen() (Driver, error) {
	if m.isAlive() {
		return m.driver, nil
	}
	return m.Start()
}

// Start quits any owned session and opens a fresh one.
func (m *Manager) Start() (Driver, error) {
	if m.driver != nil {
		m.Quit()
	}
	return m.OpenFresh()
}

// OpenFresh opens a session while closed. Requesting a fresh session while
// one is owned is a caller bug and returns ErrAlreadyOpen.
func (m *Manager) OpenFresh() (Driver, error) {
	if m.driver != nil {
		return nil, ErrAlreadyOpen
	}
	m.log.Infof("starting browser")

	drv, err := m.factory.Create()
	if err != nil {
		return nil, err
	}
	m.driver = drv
	return drv, nil
}

// AddCleanup registers a callback to run when the current session quits.
// Callbacks run most-recent first and are discarded after running. Requires
// an open session.
func (m *Manager) AddCleanup(callback func()) error {
	if m.driver == nil {
		return ErrNotOpen
	}
	m.cleanups = append(m.cleanups, callback)
	return nil
}

// Quit runs pending cleanups, closes the owned session, and always leaves the
// manager closed. Disposal failures are logged and swallowed so teardown
// noise never masks a test result.
func (m *Manager) Quit() {
	m.consumeCleanups()
	if err := m.factory.Close(m.driver); err != nil {
		m.log.Errorf("an error happened during browser shutdown: %v", err)
	}
	m.driver = nil
}

func (m *Manager) consumeCleanups() {
	for len(m.cleanups) > 0 {
		last := len(m.cleanups) - 1
		callback := m.cleanups[last]
		m.cleanups = m.cleanups[:last]
		callback()
	}
}

// Close quits the owned session. It exists so the call site that owns the
// manager can defer the whole teardown, container lease included, instead of
// relying on process-exit hooks.
func (m *Manager) Close() {
	m.Quit()
}
