package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullDocument(t *testing.T) {
	doc := []byte(`
webdriver: Remote
webdriver_options:
  command_executor: http://hub:4444/wd/hub
  keep_alive: true
  desired_capabilities:
    browserName: chrome
    chromeOptions:
      args:
        - --headless
webdriver_wharf:
  url: http://wharf:4899/
  image: e2e-browser
  checkout_timeout: 120
`)

	cfg, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, "Remote", cfg.Webdriver)
	assert.Equal(t, "http://hub:4444/wd/hub", cfg.WebdriverOptions.CommandExecutor)
	require.NotNil(t, cfg.WebdriverOptions.KeepAlive)
	assert.True(t, *cfg.WebdriverOptions.KeepAlive)
	assert.Equal(t, "chrome", cfg.WebdriverOptions.BrowserName())

	require.NotNil(t, cfg.WebdriverWharf)
	assert.Equal(t, "http://wharf:4899/", cfg.WebdriverWharf.URL)
	assert.Equal(t, "e2e-browser", cfg.WebdriverWharf.Image)
	assert.Equal(t, 120, cfg.WebdriverWharf.CheckoutTimeout)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, DefaultWebdriver, cfg.Webdriver)
	assert.Nil(t, cfg.WebdriverWharf)
	assert.Nil(t, cfg.WebdriverOptions.KeepAlive)
	assert.Equal(t, "", cfg.WebdriverOptions.BrowserName())
}

func TestParse_KeepAliveFalseIsNotAbsent(t *testing.T) {
	cfg, err := Parse([]byte("webdriver_options:\n  keep_alive: false\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.WebdriverOptions.KeepAlive)
	assert.False(t, *cfg.WebdriverOptions.KeepAlive)
}

func TestParse_WharfCheckoutTimeoutDefaulted(t *testing.T) {
	doc := []byte(`
webdriver_wharf:
  url: http://wharf:4899/
  image: e2e-browser
`)
	cfg, err := Parse(doc)
	require.NoError(t, err)
	assert.Greater(t, cfg.WebdriverWharf.CheckoutTimeout, 0)
}

func TestParse_WharfRequiresURL(t *testing.T) {
	doc := []byte(`
webdriver_wharf:
  image: e2e-browser
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webdriver_wharf.url")
}

func TestParse_WharfRequiresImage(t *testing.T) {
	doc := []byte(`
webdriver_wharf:
  url: http://wharf:4899/
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webdriver_wharf.image")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("webdriver: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "browser.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webdriver: Chrome\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Chrome", cfg.Webdriver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
