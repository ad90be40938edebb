package browser

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDialog is a controllable playwright.Dialog.
type fakeDialog struct {
	message   string
	accepts   int
	dismisses int
}

func (d *fakeDialog) Accept(texts ...string) error { d.accepts++; return nil }
func (d *fakeDialog) DefaultValue() string         { return "" }
func (d *fakeDialog) Dismiss() error               { d.dismisses++; return nil }
func (d *fakeDialog) Message() string              { return d.message }
func (d *fakeDialog) Page() playwright.Page        { return nil }
func (d *fakeDialog) Type() string                 { return "alert" }

func TestUploadPayload_ResolvesLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.txt")
	require.NoError(t, os.WriteFile(path, []byte("upload me"), 0600))

	file, err := uploadPayload(path, true)
	require.NoError(t, err)

	assert.Equal(t, "fixture.txt", file.Name)
	assert.Equal(t, []byte("upload me"), file.Buffer)
	assert.Contains(t, file.MimeType, "text/plain")
}

func TestUploadPayload_MissingLocalFile(t *testing.T) {
	_, err := uploadPayload(filepath.Join(t.TempDir(), "nope.txt"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading upload file")
}

func TestUploadPayload_DetectionOffPassesPathThrough(t *testing.T) {
	// The path does not exist locally; with detection off it must not be
	// touched, only referenced.
	file, err := uploadPayload("/remote/host/data.csv", false)
	require.NoError(t, err)

	assert.Equal(t, "/remote/host/data.csv", file.Name)
	assert.Nil(t, file.Buffer)
}

func TestDisableFileDetection_ControlsUploadResolution(t *testing.T) {
	drv := &PlaywrightDriver{fileDetection: true}

	_, err := uploadPayload(filepath.Join(t.TempDir(), "absent.txt"), drv.fileDetection)
	require.Error(t, err)

	require.NoError(t, drv.DisableFileDetection())

	file, err := uploadPayload(filepath.Join(t.TempDir(), "absent.txt"), drv.fileDetection)
	require.NoError(t, err)
	assert.Nil(t, file.Buffer)
}

func TestCurrentURL_ReportsPendingDialog(t *testing.T) {
	drv := &PlaywrightDriver{}
	drv.setPendingDialog(&fakeDialog{message: "are you sure?"})

	_, err := drv.CurrentURL()
	require.Error(t, err)

	var alert *AlertOpenError
	require.ErrorAs(t, err, &alert)
	assert.Equal(t, "are you sure?", alert.Text)
}

func TestAcceptAlert_ClearsPendingDialogOnce(t *testing.T) {
	dialog := &fakeDialog{message: "confirm"}
	drv := &PlaywrightDriver{}
	drv.setPendingDialog(dialog)

	require.NoError(t, drv.AcceptAlert())
	assert.Equal(t, 1, dialog.accepts)

	// Nothing pending anymore.
	require.NoError(t, drv.AcceptAlert())
	assert.Equal(t, 1, dialog.accepts)
}

func TestDismissAlert_ClearsPendingDialog(t *testing.T) {
	dialog := &fakeDialog{message: "confirm"}
	drv := &PlaywrightDriver{}
	drv.setPendingDialog(dialog)

	require.NoError(t, drv.DismissAlert())
	assert.Equal(t, 1, dialog.dismisses)
	require.NoError(t, drv.DismissAlert())
	assert.Equal(t, 1, dialog.dismisses)
}

func TestPendingDialog_ConcurrentEventDelivery(t *testing.T) {
	// Dialog events arrive on the client's event goroutine while the probe
	// reads from the test goroutine; run both under the race detector.
	drv := &PlaywrightDriver{}
	dialog := &fakeDialog{message: "racing"}
	drv.setPendingDialog(dialog)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			drv.setPendingDialog(dialog)
		}
	}()

	for i := 0; i < 100; i++ {
		_, err := drv.CurrentURL()
		require.Error(t, err)
	}
	wg.Wait()
}
