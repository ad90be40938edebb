// Package config loads the browser configuration consumed by drydock.
//
// The configuration is a small YAML document:
//
//	webdriver: Firefox
//	webdriver_options:
//	  command_executor: http://hub:4444/wd/hub
//	  keep_alive: true
//	  desired_capabilities:
//	    browserName: chrome
//	webdriver_wharf:
//	  url: http://wharf:4899/
//	  image: e2e-browser
//	  checkout_timeout: 60
//
// Only the webdriver key has a default; everything else is optional. The
// presence of the webdriver_wharf section selects the container-backed
// session factory.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/drydock/pkg/wharf"
)

// DefaultWebdriver is the backend used when the config does not name one.
const DefaultWebdriver = "Firefox"

// Options is the serialized option bag passed to the automation client.
// Keys the selected backend does not understand are stripped during option
// processing, not here.
type Options struct {
	// CommandExecutor is the remote automation endpoint, for remote backends.
	CommandExecutor string `yaml:"command_executor"`
	// KeepAlive toggles persistent client connections. A nil value means the
	// key was absent from the config, which option processing distinguishes
	// from an explicit false.
	KeepAlive *bool `yaml:"keep_alive"`
	// DesiredCapabilities is the capability map sent to remote backends.
	DesiredCapabilities map[string]any `yaml:"desired_capabilities"`
}

// Config is the top-level browser configuration.
type Config struct {
	Webdriver        string        `yaml:"webdriver"`
	WebdriverOptions Options       `yaml:"webdriver_options"`
	WebdriverWharf   *wharf.Config `yaml:"webdriver_wharf"`
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Webdriver == "" {
		c.Webdriver = DefaultWebdriver
	}
	if c.WebdriverWharf != nil && c.WebdriverWharf.CheckoutTimeout <= 0 {
		c.WebdriverWharf.CheckoutTimeout = wharf.DefaultCheckoutTimeout
	}
}

// Validate checks the configuration for fields that cannot be defaulted.
func (c *Config) Validate() error {
	if c.WebdriverWharf != nil {
		if c.WebdriverWharf.URL == "" {
			return fmt.Errorf("webdriver_wharf.url is required when webdriver_wharf is set")
		}
		if c.WebdriverWharf.Image == "" {
			return fmt.Errorf("webdriver_wharf.image is required when webdriver_wharf is set")
		}
	}
	return nil
}

// BrowserName returns the browserName capability, or the empty string when
// not set.
func (o Options) BrowserName() string {
	name, _ := o.DesiredCapabilities["browserName"].(string)
	return name
}
