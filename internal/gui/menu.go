// Menu handler for application actions
package gui

import (
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/config"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
)

// MenuHandler handles menu actions
type MenuHandler struct {
	window fyne.Window
	loader *imageio.ImageLoader
	logger logrus.FieldLogger

	onImageLoaded func(mat gocv.Mat, name string)
	onImageSaved  func(string)
	onCapture     func()
	onReset       func()
	download      func() (core.Download, error)
}

func NewMenuHandler(window fyne.Window, loader *imageio.ImageLoader, logger logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		window: window,
		loader: loader,
		logger: logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mh.OpenImage),
		fyne.NewMenuItem("Capture Frame", func() {
			if mh.onCapture != nil {
				mh.onCapture()
			}
		}),
		fyne.NewMenuItem("Save Result...", mh.SaveResult),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Reset Parameters", func() {
			if mh.onReset != nil {
				mh.onReset()
			}
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, editMenu, helpMenu)
}

// OpenImage shows a file dialog and decodes the chosen image
func (mh *MenuHandler) OpenImage() {
	mh.logger.Debug("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		name := reader.URI().Name()
		if !imageio.IsSupported(name) {
			mh.showError("Unsupported File", errors.Wrapf(imageio.ErrUnsupportedFormat, "%s", name))
			return
		}

		data, err := io.ReadAll(reader)
		if err != nil {
			mh.showError("Failed to Read Image", errors.Wrapf(err, "reading %s", name))
			return
		}

		mat, err := mh.loader.Decode(data)
		if err != nil {
			mh.showError("Failed to Load Image", err)
			return
		}

		mh.logger.WithFields(logrus.Fields{
			"file":   name,
			"width":  mat.Cols(),
			"height": mat.Rows(),
		}).Info("Image loaded successfully")

		if mh.onImageLoaded != nil {
			mh.onImageLoaded(mat, name)
		} else {
			mat.Close()
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(imageio.SupportedExtensions()))
	fileDialog.Show()
}

// SaveResult writes the primary output as PNG
func (mh *MenuHandler) SaveResult() {
	if mh.download == nil {
		return
	}

	dl, err := mh.download()
	if errors.Is(err, core.ErrNoDownload) {
		dialog.ShowInformation("Nothing to Save", "Load or capture an image first.", mh.window)
		return
	}
	if err != nil {
		mh.showError("Failed to Encode Result", err)
		return
	}

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if _, err := writer.Write(dl.Data); err != nil {
			mh.showError("Failed to Save Image", errors.Wrapf(err, "writing %s", writer.URI().Name()))
			return
		}

		path := writer.URI().Path()
		mh.logger.WithFields(logrus.Fields{
			"filepath": path,
			"bytes":    len(dl.Data),
		}).Info("Result saved successfully")

		if mh.onImageSaved != nil {
			mh.onImageSaved(path)
		}
	}, mh.window)

	fileDialog.SetFileName(dl.Filename)
	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel(config.AppName+" v"+config.AppVersion),
		widget.NewSeparator(),
		widget.NewLabel("Sobel, Laplacian and Canny edge detection"),
		widget.NewLabel("with side-by-side comparison."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(360, 220))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(err, mh.window)
}

func (mh *MenuHandler) SetCallbacks(onImageLoaded func(gocv.Mat, string), onImageSaved func(string), onCapture, onReset func()) {
	mh.onImageLoaded = onImageLoaded
	mh.onImageSaved = onImageSaved
	mh.onCapture = onCapture
	mh.onReset = onReset
}

// SetDownloadSource supplies the result offered by Save Result
func (mh *MenuHandler) SetDownloadSource(download func() (core.Download, error)) {
	mh.download = download
}
