// Status line and per-output statistics
package gui

import (
	"fmt"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"edgevision-studio/internal/core"
	"edgevision-studio/internal/metrics"
)

// InfoPanel lists the input properties and the statistics of each output
type InfoPanel struct {
	metricInfo map[string]metrics.MetricInfo

	container      *fyne.Container
	imageContent   *fyne.Container
	metricsContent *fyne.Container
}

func NewInfoPanel() *InfoPanel {
	panel := &InfoPanel{
		metricInfo: metrics.NewEvaluator().Info(),
	}

	panel.initializeUI()
	return panel
}

func (ip *InfoPanel) initializeUI() {
	ip.imageContent = container.NewVBox()
	ip.metricsContent = container.NewVBox()
	ip.Clear()

	ip.container = container.NewVBox(
		widget.NewCard("Image", "", ip.imageContent),
		widget.NewCard("Edge Statistics", "", ip.metricsContent),
	)
}

func (ip *InfoPanel) GetContainer() fyne.CanvasObject {
	return ip.container
}

// Show updates the panel from a result. Must run on the UI goroutine.
func (ip *InfoPanel) Show(res core.Result, name string) {
	if _, ok := res.(*core.PlaceholderResult); ok {
		ip.Clear()
		return
	}

	panels := res.Panels()
	ip.imageContent.RemoveAll()
	if len(panels) > 0 {
		meta := core.MetadataOf(panels[0].Image)
		if name != "" {
			ip.imageContent.Add(widget.NewLabel(name))
		}
		ip.imageContent.Add(widget.NewLabel(fmt.Sprintf("Size: %dx%d", meta.Width, meta.Height)))
		ip.imageContent.Add(widget.NewLabel(fmt.Sprintf("Channels: %d", meta.Channels)))
	}
	ip.imageContent.Refresh()

	ip.metricsContent.RemoveAll()
	for _, panel := range panels {
		if len(panel.Stats) == 0 {
			continue
		}
		ip.metricsContent.Add(widget.NewLabelWithStyle(panel.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		for _, key := range sortedKeys(panel.Stats) {
			ip.metricsContent.Add(ip.createMetricWidget(key, panel.Stats[key]))
		}
		ip.metricsContent.Add(widget.NewSeparator())
	}
	ip.metricsContent.Refresh()
}

func (ip *InfoPanel) createMetricWidget(key string, value float64) fyne.CanvasObject {
	label := key
	description := ""
	if info, ok := ip.metricInfo[key]; ok {
		label = info.Name
		description = info.Description
	}

	text := widget.NewLabel(formatStat(label, value))
	if description == "" {
		return text
	}

	hint := widget.NewLabelWithStyle(description, fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
	return container.NewVBox(text, hint)
}

func (ip *InfoPanel) Clear() {
	ip.imageContent.RemoveAll()
	ip.imageContent.Add(widget.NewLabel("No image loaded"))
	ip.imageContent.Refresh()

	ip.metricsContent.RemoveAll()
	ip.metricsContent.Add(widget.NewLabel("Statistics appear once an image is processed."))
	ip.metricsContent.Refresh()
}

// StatusManager handles status messages and notifications
type StatusManager struct {
	widget    *widget.Card
	container *fyne.Container
}

func NewStatusManager() *StatusManager {
	manager := &StatusManager{}
	manager.initializeUI()
	return manager
}

func (sm *StatusManager) initializeUI() {
	sm.container = container.NewHBox(
		widget.NewIcon(theme.InfoIcon()),
		widget.NewLabel("Ready"),
	)
	sm.widget = widget.NewCard("", "", sm.container)
}

func (sm *StatusManager) GetWidget() fyne.CanvasObject {
	return sm.widget
}

func (sm *StatusManager) ShowInfo(message string) {
	sm.updateStatus(message, theme.InfoIcon())
}

func (sm *StatusManager) ShowSuccess(message string) {
	sm.updateStatus(message, theme.ConfirmIcon())
}

func (sm *StatusManager) ShowError(err error) {
	sm.updateStatus(fmt.Sprintf("Error: %s", err.Error()), theme.ErrorIcon())
}

func (sm *StatusManager) updateStatus(message string, icon fyne.Resource) {
	sm.container.RemoveAll()
	sm.container.Add(widget.NewIcon(icon))
	sm.container.Add(widget.NewLabel(message))
	sm.container.Refresh()
}

func sortedKeys(stats map[string]float64) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatStat(label string, value float64) string {
	return fmt.Sprintf("%s: %.3f", label, value)
}
