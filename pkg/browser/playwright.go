package browser

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver is the bundled automation driver, backed by a Playwright
// browser. The lifecycle manager only sees the Driver surface; harnesses that
// need the full client API can assert to this type and use Page directly.
type PlaywrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	// remote is set when the session runs against a CommandExecutor endpoint
	// instead of a locally launched browser.
	remote bool

	// fileDetection controls local-path resolution in UploadFile: on, the
	// path names a local file whose payload is shipped to the browser; off,
	// the path is handed through untouched for files that already live where
	// the browser runs.
	fileDetection bool

	// pendingDialog is the modal currently blocking the page, if any.
	// Dialog events arrive on the client's event-dispatch goroutine while
	// the owning test goroutine probes and clears, so access goes through
	// dialogMu.
	dialogMu      sync.Mutex
	pendingDialog playwright.Dialog
}

// NewPlaywrightDriver starts a Playwright session from a processed option
// bag. A CommandExecutor connects to a remote browser endpoint; otherwise a
// local browser is launched with any configured chrome arguments.
func NewPlaywrightDriver(opts Options) (Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	d := &PlaywrightDriver{pw: pw, fileDetection: true}
	if err := d.connect(opts); err != nil {
		pw.Stop()
		return nil, err
	}
	return d, nil
}

func (d *PlaywrightDriver) connect(opts Options) error {
	browserType := browserTypeFor(d.pw, opts.DesiredCapabilities.BrowserName())

	var browser playwright.Browser
	var err error
	if opts.CommandExecutor != "" {
		browser, err = browserType.Connect(opts.CommandExecutor)
		d.remote = true
	} else {
		browser, err = browserType.Launch(playwright.BrowserTypeLaunchOptions{
			Args: opts.DesiredCapabilities.ChromeArgs(),
		})
	}
	if err != nil {
		return err
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		return err
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return err
	}

	// Dialogs stay open until the harness handles them; auto-dismissing would
	// hide real application bugs.
	page.OnDialog(d.setPendingDialog)

	d.browser = browser
	d.context = context
	d.page = page
	return nil
}

// browserTypeFor maps a browserName capability onto a Playwright browser
// engine. Unknown or empty names fall back to Chromium.
func browserTypeFor(pw *playwright.Playwright, name string) playwright.BrowserType {
	switch strings.ToLower(name) {
	case "firefox":
		return pw.Firefox
	case "webkit", "safari":
		return pw.WebKit
	default:
		return pw.Chromium
	}
}

func (d *PlaywrightDriver) setPendingDialog(dialog playwright.Dialog) {
	d.dialogMu.Lock()
	d.pendingDialog = dialog
	d.dialogMu.Unlock()
}

// takePendingDialog returns the pending dialog and clears it, or nil.
func (d *PlaywrightDriver) takePendingDialog() playwright.Dialog {
	d.dialogMu.Lock()
	defer d.dialogMu.Unlock()
	dialog := d.pendingDialog
	d.pendingDialog = nil
	return dialog
}

// CurrentURL implements Driver. The read evaluates in the page so a dead
// session fails it; a pending modal dialog is reported as AlertOpenError.
func (d *PlaywrightDriver) CurrentURL() (string, error) {
	d.dialogMu.Lock()
	pending := d.pendingDialog
	d.dialogMu.Unlock()
	if pending != nil {
		return "", &AlertOpenError{Text: pending.Message()}
	}
	result, err := d.page.Evaluate("() => window.location.href")
	if err != nil {
		return "", err
	}
	url, _ := result.(string)
	return url, nil
}

// MaximizeWindow implements Driver.
func (d *PlaywrightDriver) MaximizeWindow() error {
	return d.page.SetViewportSize(MaxViewportWidth, MaxViewportHeight)
}

// DisableFileDetection implements Driver.
func (d *PlaywrightDriver) DisableFileDetection() error {
	d.fileDetection = false
	return nil
}

// Quit implements Driver. Resources are closed outermost-last; all failures
// are collected so one close error never blocks the rest of the teardown.
func (d *PlaywrightDriver) Quit() error {
	var errs []error
	if d.page != nil {
		if err := d.page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.context != nil {
		if err := d.context.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing browser session: %v", errs)
	}
	return nil
}

// Goto navigates the session's page and waits for the load to settle.
func (d *PlaywrightDriver) Goto(url string) error {
	_, err := d.page.Goto(url)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// AcceptAlert accepts the pending modal dialog, if any.
func (d *PlaywrightDriver) AcceptAlert() error {
	dialog := d.takePendingDialog()
	if dialog == nil {
		return nil
	}
	return dialog.Accept()
}

// DismissAlert dismisses the pending modal dialog, if any.
func (d *PlaywrightDriver) DismissAlert() error {
	dialog := d.takePendingDialog()
	if dialog == nil {
		return nil
	}
	return dialog.Dismiss()
}

// UploadFile sets the file input matching selector. With file detection on
// (the default) the path names a local file whose contents are resolved and
// shipped to the browser. After DisableFileDetection the path is handed
// through untouched, for files that already exist where the browser runs.
func (d *PlaywrightDriver) UploadFile(selector, path string) error {
	file, err := uploadPayload(path, d.fileDetection)
	if err != nil {
		return err
	}
	return d.page.SetInputFiles(selector, []playwright.InputFile{file})
}

// uploadPayload builds what gets shipped to a file input: the resolved local
// file when detection is on, the bare path reference when it is off.
func uploadPayload(path string, detect bool) (playwright.InputFile, error) {
	if !detect {
		return playwright.InputFile{Name: path}, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return playwright.InputFile{}, fmt.Errorf("resolving upload path %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return playwright.InputFile{}, fmt.Errorf("reading upload file: %w", err)
	}
	return playwright.InputFile{
		Name:     filepath.Base(abs),
		MimeType: mime.TypeByExtension(filepath.Ext(abs)),
		Buffer:   data,
	}, nil
}

// Page exposes the underlying Playwright page for harness use.
func (d *PlaywrightDriver) Page() playwright.Page {
	return d.page
}

// Remote reports whether the session runs against a remote endpoint.
func (d *PlaywrightDriver) Remote() bool {
	return d.remote
}
