package browser

// Driver is one live automation session. It is the opaque handle the
// lifecycle manager owns: the consuming harness gets the full client API by
// asserting to the concrete driver type, the manager only needs the small
// surface below.
type Driver interface {
	// CurrentURL reports the URL of the active page. The read round-trips
	// through the browser, so it doubles as the liveness probe: a dead
	// session fails it.
	CurrentURL() (string, error)

	// MaximizeWindow grows the viewport to the configured maximum.
	MaximizeWindow() error

	// DisableFileDetection turns off local-path resolution for file inputs.
	DisableFileDetection() error

	// Quit terminates the session and releases every client-side resource.
	Quit() error
}

// DriverFunc constructs a live session from a processed option bag. It is the
// injection point for the automation client; tests substitute fakes here.
type DriverFunc func(Options) (Driver, error)

// Capability keys and values recognized by option processing. These mirror
// the wire-level names of the remote automation protocol and must not be
// renamed.
const (
	capBrowserName   = "browserName"
	capChromeOptions = "chromeOptions"
	capMarionette    = "marionette"

	chromeNoSandboxArg = "--no-sandbox"
)

// BackendRemote selects a remote automation endpoint rather than a locally
// launched browser.
const BackendRemote = "Remote"

// Capabilities is the desired-capabilities bag sent to remote backends.
type Capabilities map[string]any

// BrowserName returns the browserName capability, or the empty string when
// not set.
func (c Capabilities) BrowserName() string {
	name, _ := c[capBrowserName].(string)
	return name
}

// Clone returns a deep copy, so processed bags never alias a live session's
// options.
func (c Capabilities) Clone() Capabilities {
	if c == nil {
		return nil
	}
	return cloneValue(map[string]any(c)).(map[string]any)
}

// EnsureChromeArg appends a command-line argument to the chromeOptions
// capability, creating the sub-bag as needed. Adding an argument that is
// already present is a no-op.
func (c Capabilities) EnsureChromeArg(arg string) {
	co, _ := c[capChromeOptions].(map[string]any)
	if co == nil {
		co = map[string]any{}
	}
	args, _ := co["args"].([]any)
	for _, a := range args {
		if a == arg {
			return
		}
	}
	co["args"] = append(args, arg)
	c[capChromeOptions] = co
}

// ChromeArgs returns the chromeOptions args list as strings.
func (c Capabilities) ChromeArgs() []string {
	co, _ := c[capChromeOptions].(map[string]any)
	args, _ := co["args"].([]any)
	out := make([]string, 0, len(args))
	for _, a := range args {
		if s, ok := a.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// Options is the option bag handed to the automation client. It is mutated
// only during the pre-create adjustment phase; once a session is live the
// factory hands out deep copies.
type Options struct {
	// CommandExecutor is the remote automation endpoint. Empty means launch
	// a local browser.
	CommandExecutor string

	// KeepAlive toggles persistent client connections. nil means unset.
	KeepAlive *bool

	// DesiredCapabilities is stripped for backends that do not speak the
	// remote protocol.
	DesiredCapabilities Capabilities
}

// Clone returns a deep copy of the option bag.
func (o Options) Clone() Options {
	clone := o
	clone.DesiredCapabilities = o.DesiredCapabilities.Clone()
	if o.KeepAlive != nil {
		v := *o.KeepAlive
		clone.KeepAlive = &v
	}
	return clone
}

// Viewport defaults for new sessions.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720

	// MaxViewportWidth and MaxViewportHeight are what MaximizeWindow grows
	// the page to.
	MaxViewportWidth  = 1920
	MaxViewportHeight = 1080
)
