package browser

import (
	"io"

	"github.com/entrhq/drydock/pkg/logging"
	"github.com/entrhq/drydock/pkg/wharf"
)

// testLogger returns a logger that discards output.
func testLogger() *logging.Logger {
	return logging.NewWriterLogger("test", io.Discard)
}

// fakeDriver is a controllable Driver for lifecycle tests.
type fakeDriver struct {
	urlErr           error
	quitErr          error
	quitCalls        int
	maximized        bool
	fileDetectionOff bool
}

func (d *fakeDriver) CurrentURL() (string, error) {
	if d.urlErr != nil {
		return "", d.urlErr
	}
	return "about:blank", nil
}

func (d *fakeDriver) MaximizeWindow() error {
	d.maximized = true
	return nil
}

func (d *fakeDriver) DisableFileDetection() error {
	d.fileDetectionOff = true
	return nil
}

func (d *fakeDriver) Quit() error {
	d.quitCalls++
	return d.quitErr
}

// fakeFactory is a controllable Factory for manager tests.
type fakeFactory struct {
	createErr   error
	createCalls int
	created     []*fakeDriver
	closeErr    error
	closed      []Driver
}

func (f *fakeFactory) ProcessedOptions() Options {
	return Options{}
}

func (f *fakeFactory) Create() (Driver, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	drv := &fakeDriver{}
	f.created = append(f.created, drv)
	return drv, nil
}

func (f *fakeFactory) Close(drv Driver) error {
	f.closed = append(f.closed, drv)
	return f.closeErr
}

// fakeProvider is a controllable ContainerProvider. It records the order of
// lease operations in events (shared with the driver func in factory tests).
type fakeProvider struct {
	lease       *wharf.ConnectionInfo
	checkoutErr error
	checkouts   int
	checkins    int
	checkinErr  error
	events      *[]string
}

func (p *fakeProvider) record(event string) {
	if p.events != nil {
		*p.events = append(*p.events, event)
	}
}

func (p *fakeProvider) Checkout() (*wharf.ConnectionInfo, error) {
	p.record("checkout")
	p.checkouts++
	if p.checkoutErr != nil {
		return nil, p.checkoutErr
	}
	if p.lease == nil {
		p.lease = &wharf.ConnectionInfo{
			ContainerID:  "c1",
			WebdriverURL: "http://container:4444/wd/hub",
			VNCDisplay:   ":99",
		}
	}
	return p.lease, nil
}

func (p *fakeProvider) Checkin() error {
	p.record("checkin")
	p.checkins++
	p.lease = nil
	return p.checkinErr
}

func (p *fakeProvider) Lease() *wharf.ConnectionInfo {
	return p.lease
}
