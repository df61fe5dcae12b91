// Image display area: one card per result panel
package gui

import (
	"image"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
	"edgevision-studio/internal/metrics"
)

type CenterPanel struct {
	logger        logrus.FieldLogger
	previewWidth  int
	previewHeight int
	metricInfo    map[string]metrics.MetricInfo

	container *fyne.Container
}

func NewCenterPanel(logger logrus.FieldLogger, previewWidth, previewHeight int) *CenterPanel {
	return &CenterPanel{
		logger:        logger,
		previewWidth:  previewWidth,
		previewHeight: previewHeight,
		metricInfo:    metrics.NewEvaluator().Info(),
		container:     container.NewStack(),
	}
}

// Show replaces the displayed panels with those of res. Must run on the UI goroutine.
func (cp *CenterPanel) Show(res core.Result) error {
	panels := res.Panels()
	cards := make([]fyne.CanvasObject, 0, len(panels))

	for _, panel := range panels {
		img, err := cp.render(panel)
		if err != nil {
			return errors.Wrapf(err, "panel %s", panel.Title)
		}

		view := canvas.NewImageFromImage(img)
		view.FillMode = canvas.ImageFillContain
		view.ScaleMode = canvas.ImageScaleSmooth
		view.SetMinSize(fyne.NewSize(320, 240))

		cards = append(cards, widget.NewCard(panel.Title, cp.statsLine(panel.Stats), view))
	}

	cp.container.Objects = []fyne.CanvasObject{container.NewGridWithColumns(len(cards), cards...)}
	cp.container.Refresh()
	return nil
}

func (cp *CenterPanel) render(panel core.Panel) (image.Image, error) {
	display, err := algorithms.ToDisplayable(panel.Image)
	if err != nil {
		return nil, err
	}
	defer display.Close()

	return imageio.PreviewImage(display, cp.previewWidth, cp.previewHeight)
}

func (cp *CenterPanel) statsLine(stats map[string]float64) string {
	if len(stats) == 0 {
		return ""
	}

	parts := make([]string, 0, len(stats))
	for _, k := range sortedKeys(stats) {
		label := k
		if info, ok := cp.metricInfo[k]; ok {
			label = info.Name
		}
		parts = append(parts, formatStat(label, stats[k]))
	}
	return strings.Join(parts, "  ")
}

func (cp *CenterPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}
