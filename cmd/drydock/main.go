// Package main provides the drydock smoke-check CLI.
//
// drydock is a library first; this binary exists so a browser configuration
// can be verified from the command line before a test run depends on it: it
// opens a session the same way the harness would, probes it, and tears it
// down again, container lease included.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/entrhq/drydock/pkg/browser"
	"github.com/entrhq/drydock/pkg/config"
	"github.com/entrhq/drydock/pkg/logging"
)

const version = "0.1.0"

// cliConfig holds the command line settings
type cliConfig struct {
	ConfigPath  string
	URL         string
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("drydock v%s\n", version)
		return
	}

	if err := run(cli); err != nil {
		color.Red("FAIL: %v", err)
		os.Exit(1)
	}
}

func run(cli *cliConfig) error {
	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		return err
	}

	log, logErr := logging.NewLogger("drydock")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "file logging unavailable: %v\n", logErr)
	}
	defer log.Close()

	manager, err := browser.FromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer manager.Close()

	drv, err := manager.EnsureOpen()
	if err != nil {
		return fmt.Errorf("opening browser session: %w", err)
	}
	color.Green("OK: browser session open (%s backend)", cfg.Webdriver)

	if cli.URL != "" {
		pwDrv, ok := drv.(*browser.PlaywrightDriver)
		if !ok {
			return fmt.Errorf("configured driver does not support navigation")
		}
		if err := pwDrv.Goto(cli.URL); err != nil {
			return err
		}
	}

	url, err := drv.CurrentURL()
	if err != nil {
		return fmt.Errorf("probing browser session: %w", err)
	}
	color.Green("OK: session alive at %s", url)

	if log.LogPath() != "" {
		fmt.Printf("log: %s\n", log.LogPath())
	}
	return nil
}

// parseFlags parses command line flags
func parseFlags() *cliConfig {
	cli := &cliConfig{}

	flag.StringVar(&cli.ConfigPath, "config", "browser.yaml", "Path to the browser configuration file (YAML)")
	flag.StringVar(&cli.URL, "url", "", "Optional URL to navigate to before probing")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "drydock - browser session smoke check\n\n")
		fmt.Fprintf(os.Stderr, "Usage: drydock [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  drydock -config browser.yaml\n")
		fmt.Fprintf(os.Stderr, "  drydock -config browser.yaml -url https://example.com\n")
	}

	flag.Parse()
	return cli
}
