// Package wharf implements the client side of the wharf container service,
// which provisions disposable browser containers for e2e test runs.
//
// The protocol is a small HTTP lease API: a checkout reserves one container
// and returns its automation endpoint, a checkin releases it. A client holds
// at most one lease at a time; Checkin is safe to call at any point, including
// when no lease is held or when the service state is unknown.
package wharf

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/drydock/pkg/logging"
)

// DefaultCheckoutTimeout is the container lease duration requested when the
// config does not set one, in seconds.
const DefaultCheckoutTimeout = 60

// Config holds the wharf service settings, typically decoded from the
// webdriver_wharf section of the browser configuration file.
type Config struct {
	// URL is the base URL of the wharf service.
	URL string `yaml:"url"`
	// Image is the container image to check out.
	Image string `yaml:"image"`
	// CheckoutTimeout is the lease duration in seconds.
	CheckoutTimeout int `yaml:"checkout_timeout"`
}

// ConnectionInfo describes a checked-out container.
type ConnectionInfo struct {
	// ContainerID identifies the lease; it is the token passed back on checkin.
	ContainerID string `json:"-"`
	// WebdriverURL is the container's exposed automation endpoint.
	WebdriverURL string `json:"webdriver_url"`
	// VNCDisplay is the display address where the running browser can be watched.
	VNCDisplay string `json:"vnc_display"`
}

// ViewMessage formats the hint telling users where the browser can be watched.
func (ci *ConnectionInfo) ViewMessage() string {
	return fmt.Sprintf("tests can be viewed via vnc on display %s", ci.VNCDisplay)
}

// RequestError is returned when the wharf service answers with a non-success
// status or an undecodable body.
type RequestError struct {
	Op     string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("wharf %s failed: status %d: %s", e.Op, e.Status, e.Body)
}

// Client is a wharf lease holder. It is not safe for concurrent use; the
// browser factory that owns it drives it from a single goroutine.
type Client struct {
	config Config
	http   *http.Client
	log    *logging.Logger

	// current lease, nil when none is held
	lease *ConnectionInfo
}

// NewClient creates a wharf client from config. A nil logger falls back to a
// stderr-backed one.
func NewClient(config Config, log *logging.Logger) *Client {
	if log == nil {
		log, _ = logging.NewLogger("wharf")
	}
	if config.CheckoutTimeout <= 0 {
		config.CheckoutTimeout = DefaultCheckoutTimeout
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: 1 * time.Minute},
		log:    log,
	}
}

// Lease returns the currently held lease, or nil when none is held.
func (c *Client) Lease() *ConnectionInfo {
	return c.lease
}

// Checkout reserves a container and returns its connection info. If a lease
// is already held, the existing lease is returned without contacting the
// service, so a retried create sequence never double-books containers.
func (c *Client) Checkout() (*ConnectionInfo, error) {
	if c.lease != nil {
		c.log.Debugf("checkout requested while holding container %s, reusing it", c.lease.ContainerID)
		return c.lease, nil
	}

	checkoutURL, err := c.endpoint("checkout")
	if err != nil {
		return nil, err
	}
	q := checkoutURL.Query()
	q.Set("image", c.config.Image)
	q.Set("timeout", strconv.Itoa(c.config.CheckoutTimeout))
	checkoutURL.RawQuery = q.Encode()

	resp, err := c.http.Post(checkoutURL.String(), "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("wharf checkout request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wharf checkout response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Op: "checkout", Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	// The service answers with a single-entry object keyed by container id:
	//   {"<container-id>": {"webdriver_url": ..., "vnc_display": ...}}
	var payload map[string]ConnectionInfo
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &RequestError{Op: "checkout", Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	for id, info := range payload {
		info.ContainerID = id
		c.lease = &info
		break
	}
	if c.lease == nil {
		return nil, &RequestError{Op: "checkout", Status: resp.StatusCode, Body: "no container in response"}
	}

	c.log.Infof("checked out container %s (%s)", c.lease.ContainerID, c.lease.WebdriverURL)
	return c.lease, nil
}

// Checkin releases the held container. It is a no-op when no lease is held.
// The local lease state is cleared even when the service call fails, so the
// call is safe to repeat on every teardown path.
func (c *Client) Checkin() error {
	if c.lease == nil {
		return nil
	}

	id := c.lease.ContainerID
	c.lease = nil

	checkinURL, err := c.endpoint("checkin/" + id)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(checkinURL.String(), "application/json", nil)
	if err != nil {
		c.log.Errorf("checkin of container %s failed: %v", id, err)
		return fmt.Errorf("wharf checkin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		err := &RequestError{Op: "checkin", Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		c.log.Errorf("checkin of container %s failed: %v", id, err)
		return err
	}

	c.log.Infof("checked in container %s", id)
	return nil
}

func (c *Client) endpoint(path string) (*url.URL, error) {
	base, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid wharf url %q: %w", c.config.URL, err)
	}
	return base.JoinPath(path), nil
}
