// Desktop front end
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/config"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
)

// Application represents the main window and its state
type Application struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger
	cfg    config.Config

	loader    *imageio.ImageLoader
	processor *Processor

	controls    *ControlPanel
	center      *CenterPanel
	info        *InfoPanel
	status      *StatusManager
	menuHandler *MenuHandler

	// UI goroutine only. One input per source; camera and upload do not share.
	inputs  map[core.Source]gocv.Mat
	names   map[core.Source]string
	request core.Request
	result  core.Result
}

func NewApplication(app fyne.App, cfg config.Config, logger logrus.FieldLogger, handler *core.Handler, loader *imageio.ImageLoader) *Application {
	window := app.NewWindow(config.AppName)
	window.Resize(fyne.NewSize(1600, 900))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		cfg:       cfg,
		loader:    loader,
		processor: NewProcessor(handler, logger),
		inputs:    make(map[core.Source]gocv.Mat),
		names:     make(map[core.Source]string),
		request:   core.DefaultRequest(),
	}

	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeGUI() {
	a.controls = NewControlPanel(a.logger)
	a.center = NewCenterPanel(a.logger, a.cfg.Display.PreviewWidth, a.cfg.Display.PreviewHeight)
	a.info = NewInfoPanel()
	a.status = NewStatusManager()
	a.menuHandler = NewMenuHandler(a.window, a.loader, a.logger)
}

func (a *Application) setupLayout() {
	right := container.NewVScroll(a.info.GetContainer())
	centerAndRight := container.NewHSplit(container.NewPadded(a.center.GetContainer()), right)
	centerAndRight.SetOffset(0.8)

	body := container.NewHSplit(a.controls.GetContainer(), centerAndRight)
	body.SetOffset(0.2)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(container.NewBorder(nil, a.status.GetWidget(), nil, nil, body))
}

func (a *Application) setupCallbacks() {
	a.processor.SetCallbacks(
		// onResult, worker goroutine
		func(res core.Result, name string) {
			fyne.Do(func() {
				a.showResult(res, name)
			})
		},
		// onError, worker goroutine
		func(err error) {
			fyne.Do(func() {
				a.showError("Processing Error", err)
			})
		},
	)

	a.controls.SetCallbacks(
		func(req core.Request) {
			a.request = req
			a.submit()
		},
		a.menuHandler.OpenImage,
		a.captureFrame,
	)

	a.menuHandler.SetCallbacks(
		// onImageLoaded
		func(mat gocv.Mat, name string) {
			a.setInput(core.SourceUpload, mat, name)
			a.status.ShowSuccess(fmt.Sprintf("Loaded: %s", name))
		},
		// onImageSaved
		func(path string) {
			a.status.ShowSuccess(fmt.Sprintf("Saved: %s", path))
		},
		a.captureFrame,
		a.controls.Reset,
	)
	a.menuHandler.SetDownloadSource(func() (core.Download, error) {
		if a.result == nil {
			return core.Download{}, core.ErrNoDownload
		}
		return a.result.Download(a.loader)
	})
}

// setInput takes ownership of mat, switches to source and reprocesses
func (a *Application) setInput(source core.Source, mat gocv.Mat, name string) {
	if old, ok := a.inputs[source]; ok {
		old.Close()
	}
	a.inputs[source] = mat
	a.names[source] = name

	a.controls.SetSource(source)
	a.request = a.controls.Request()
	a.submit()
}

func (a *Application) submit() {
	source := a.request.Source()
	input, ok := a.inputs[source]
	if !ok {
		empty := gocv.NewMat()
		defer empty.Close()
		a.processor.Submit(a.request, empty, "")
		return
	}
	a.processor.Submit(a.request, input, a.names[source])
}

// captureFrame grabs a camera frame off the UI goroutine
func (a *Application) captureFrame() {
	a.status.ShowInfo(fmt.Sprintf("Capturing from camera %d...", a.cfg.Camera.DeviceID))

	go func() {
		mat, err := a.loader.CaptureFrame(a.cfg.Camera.DeviceID)
		fyne.Do(func() {
			if err != nil {
				mat.Close()
				a.showError("Camera Error", err)
				return
			}
			a.setInput(core.SourceCamera, mat, fmt.Sprintf("Camera %d", a.cfg.Camera.DeviceID))
			a.status.ShowSuccess("Frame captured")
		})
	}()
}

// showResult displays res; name describes the input it was computed from
func (a *Application) showResult(res core.Result, name string) {
	if err := a.center.Show(res); err != nil {
		res.Close()
		a.showError("Display Error", err)
		return
	}

	if a.result != nil {
		a.result.Close()
	}
	a.result = res
	a.info.Show(res, name)
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	a.processor.Start()
	a.submit()

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.window.ShowAndRun()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")
	a.processor.Stop()

	for _, mat := range a.inputs {
		mat.Close()
	}
	a.inputs = make(map[core.Source]gocv.Mat)

	if a.result != nil {
		a.result.Close()
		a.result = nil
	}
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
	a.status.ShowError(err)
}
