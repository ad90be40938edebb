// Package browser manages the lifecycle of a browser automation session used
// for end-to-end UI testing: creation, liveness checking, recycling on
// failure, and teardown.
//
// # Architecture
//
// The package is built around three core concepts:
//
// 1. Driver: one live automation session, created through an injectable DriverFunc
// 2. Factory: turns configuration into sessions (direct or container-backed)
// 3. Manager: owns at most one session and keeps it usable across a test run
//
// # Session lifecycle
//
// A Manager moves between two states, closed and open:
//
//  1. EnsureOpen probes the owned session and returns it when alive
//  2. A failed probe (or no session) replaces it through Start
//  3. Quit runs registered cleanups newest-first, then closes the session
//  4. The manager always ends closed, even when disposal fails
//
// # Container-backed sessions
//
// When the configuration carries a webdriver_wharf section, sessions run in
// disposable containers checked out from a wharf service. Each creation
// attempt that fails returns its container before the next attempt checks out
// a fresh one, and closing the session always checks the container back in.
//
// # Example usage
//
//	cfg, err := config.Load("browser.yaml")
//	manager, err := browser.FromConfig(cfg, nil)
//	defer manager.Close()
//
//	drv, err := manager.EnsureOpen()
//	url, err := drv.CurrentURL()
package browser
