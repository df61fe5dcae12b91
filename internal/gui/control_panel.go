// Control panel: input source, algorithm, parameters and comparison
package gui

import (
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/core"
)

const (
	sourceUploadLabel = "Upload Image"
	sourceCameraLabel = "Use Camera"
)

type ControlPanel struct {
	logger logrus.FieldLogger

	container *fyne.Container

	sourceRadio     *widget.RadioGroup
	openBtn         *widget.Button
	captureBtn      *widget.Button
	inputActions    *fyne.Container
	algorithmSelect *widget.Select
	paramsBox       *fyne.Container
	compareCheck    *widget.Check
	secondarySelect *widget.Select
	compareCard     *widget.Card
	resetBtn        *widget.Button

	// State, UI goroutine only. Parameter values are kept per algorithm.
	source    core.Source
	algorithm algorithms.Selector
	params    map[algorithms.Selector]algorithms.Params
	compare   bool
	secondary algorithms.Selector
	updating  bool

	onChanged func(core.Request)
	onOpen    func()
	onCapture func()
}

func NewControlPanel(logger logrus.FieldLogger) *ControlPanel {
	panel := &ControlPanel{
		logger: logger,
	}

	panel.resetState()
	panel.initializeUI()
	return panel
}

func (cp *ControlPanel) resetState() {
	req := core.DefaultRequest()
	cp.source = req.Source()
	cp.algorithm = req.Algorithm()
	cp.compare = req.Compare()
	cp.secondary = req.Secondary()
	cp.params = make(map[algorithms.Selector]algorithms.Params)
	for _, algo := range algorithms.All() {
		cp.params[algo.Selector()] = algo.DefaultParams()
	}
}

func (cp *ControlPanel) initializeUI() {
	cp.sourceRadio = widget.NewRadioGroup([]string{sourceUploadLabel, sourceCameraLabel}, nil)
	cp.sourceRadio.Horizontal = true
	cp.sourceRadio.Required = true

	cp.openBtn = widget.NewButtonWithIcon("Open Image...", theme.FolderOpenIcon(), func() {
		if cp.onOpen != nil {
			cp.onOpen()
		}
	})
	cp.openBtn.Importance = widget.HighImportance

	cp.captureBtn = widget.NewButtonWithIcon("Capture Frame", theme.MediaPhotoIcon(), func() {
		if cp.onCapture != nil {
			cp.onCapture()
		}
	})
	cp.captureBtn.Importance = widget.HighImportance

	cp.inputActions = container.NewStack()
	inputCard := widget.NewCard("Input", "", container.NewVBox(cp.sourceRadio, cp.inputActions))

	names := selectorNames()
	cp.algorithmSelect = widget.NewSelect(names, nil)
	cp.paramsBox = container.NewVBox()
	algorithmCard := widget.NewCard("Algorithm", "", container.NewVBox(cp.algorithmSelect, cp.paramsBox))

	cp.compareCheck = widget.NewCheck("Compare with", nil)
	cp.secondarySelect = widget.NewSelect(names, nil)
	cp.compareCard = widget.NewCard("Compare", "", container.NewVBox(cp.compareCheck, cp.secondarySelect))

	cp.resetBtn = widget.NewButtonWithIcon("Reset Parameters", theme.ViewRefreshIcon(), cp.Reset)

	content := container.NewVBox(
		inputCard,
		algorithmCard,
		cp.compareCard,
		widget.NewSeparator(),
		cp.resetBtn,
	)
	cp.container = container.NewBorder(nil, nil, nil, nil, container.NewVScroll(content))

	cp.syncWidgets()

	// Callbacks are attached after the initial values so construction emits nothing
	cp.sourceRadio.OnChanged = func(value string) {
		cp.source = core.SourceUpload
		if value == sourceCameraLabel {
			cp.source = core.SourceCamera
		}
		cp.syncInputActions()
		cp.emit()
	}
	cp.algorithmSelect.OnChanged = func(value string) {
		sel, err := algorithms.ParseSelector(value)
		if err != nil {
			return
		}
		cp.algorithm = sel
		cp.buildParams()
		cp.emit()
	}
	cp.compareCheck.OnChanged = func(checked bool) {
		cp.compare = checked
		cp.syncCompare()
		cp.emit()
	}
	cp.secondarySelect.OnChanged = func(value string) {
		sel, err := algorithms.ParseSelector(value)
		if err != nil {
			return
		}
		cp.secondary = sel
		cp.emit()
	}
}

// syncWidgets pushes the state into every widget without emitting changes
func (cp *ControlPanel) syncWidgets() {
	cp.updating = true
	defer func() { cp.updating = false }()

	if cp.source == core.SourceCamera {
		cp.sourceRadio.SetSelected(sourceCameraLabel)
	} else {
		cp.sourceRadio.SetSelected(sourceUploadLabel)
	}
	cp.algorithmSelect.SetSelected(string(cp.algorithm))
	cp.compareCheck.SetChecked(cp.compare)
	cp.secondarySelect.SetSelected(string(cp.secondary))

	cp.syncInputActions()
	cp.buildParams()
	cp.syncCompare()
}

func (cp *ControlPanel) syncInputActions() {
	action := fyne.CanvasObject(cp.openBtn)
	if cp.source == core.SourceCamera {
		action = cp.captureBtn
		cp.compareCard.Hide()
	} else {
		cp.compareCard.Show()
	}
	cp.inputActions.Objects = []fyne.CanvasObject{action}
	cp.inputActions.Refresh()
}

func (cp *ControlPanel) syncCompare() {
	if cp.compare {
		cp.secondarySelect.Enable()
	} else {
		cp.secondarySelect.Disable()
	}
}

// buildParams regenerates the parameter widgets for the selected algorithm
func (cp *ControlPanel) buildParams() {
	cp.paramsBox.RemoveAll()

	algo, ok := algorithms.Get(cp.algorithm)
	if !ok {
		cp.paramsBox.Refresh()
		return
	}

	cp.paramsBox.Add(widget.NewLabelWithStyle(algo.Description(), fyne.TextAlignLeading, fyne.TextStyle{Italic: true}))
	values := cp.params[cp.algorithm]
	for _, info := range algo.ParameterInfo() {
		cp.createParameterWidget(info, values)
	}
	cp.paramsBox.Refresh()
}

func (cp *ControlPanel) createParameterWidget(info algorithms.ParameterInfo, values algorithms.Params) {
	current := values.Int(info.Name, info.Default)
	valueLabel := widget.NewLabel(strconv.Itoa(current))
	header := container.NewBorder(nil, nil, widget.NewLabel(info.Label), valueLabel)

	var input fyne.CanvasObject
	switch info.Type {
	case "enum":
		options := make([]string, len(info.Options))
		for i, opt := range info.Options {
			options[i] = strconv.Itoa(opt)
		}
		sel := widget.NewSelect(options, nil)
		sel.SetSelected(strconv.Itoa(current))
		sel.OnChanged = func(value string) {
			v, err := strconv.Atoi(value)
			if err != nil {
				return
			}
			values[info.Name] = v
			valueLabel.SetText(value)
			cp.emit()
		}
		input = sel

	default:
		slider := widget.NewSlider(float64(info.Min), float64(info.Max))
		slider.Step = float64(info.Step)
		slider.SetValue(float64(current))
		slider.OnChanged = func(value float64) {
			v := snap(info, value)
			if v == values[info.Name] {
				return
			}
			values[info.Name] = v
			valueLabel.SetText(strconv.Itoa(v))
			cp.emit()
		}
		input = slider
	}

	cp.paramsBox.Add(header)
	cp.paramsBox.Add(input)
	hint := widget.NewLabel(info.Description)
	hint.Wrapping = fyne.TextWrapWord
	cp.paramsBox.Add(hint)
}

// snap rounds a slider position to the nearest value the parameter accepts
func snap(info algorithms.ParameterInfo, value float64) int {
	step := info.Step
	if step < 1 {
		step = 1
	}
	v := info.Min + int(math.Round((value-float64(info.Min))/float64(step)))*step
	if v < info.Min {
		v = info.Min
	}
	for v > info.Max {
		v -= step
	}
	return v
}

func (cp *ControlPanel) emit() {
	if cp.updating || cp.onChanged == nil {
		return
	}
	req := cp.Request()
	cp.logger.WithFields(logrus.Fields{
		"algorithm": req.Algorithm().String(),
		"params":    req.Params().String(),
		"compare":   req.Compare(),
	}).Debug("Controls changed")
	cp.onChanged(req)
}

// Request returns the current control state
func (cp *ControlPanel) Request() core.Request {
	return core.NewRequest(cp.source, cp.algorithm, cp.params[cp.algorithm], cp.compare, cp.secondary)
}

// SetSource switches the input source without emitting a change
func (cp *ControlPanel) SetSource(source core.Source) {
	cp.source = source
	cp.syncWidgets()
}

// Reset restores every control to its default and emits the result
func (cp *ControlPanel) Reset() {
	source := cp.source
	cp.resetState()
	cp.source = source
	cp.syncWidgets()
	cp.emit()
}

func (cp *ControlPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}

func (cp *ControlPanel) SetCallbacks(onChanged func(core.Request), onOpen, onCapture func()) {
	cp.onChanged = onChanged
	cp.onOpen = onOpen
	cp.onCapture = onCapture
}

func selectorNames() []string {
	sels := algorithms.Selectors()
	names := make([]string, len(sels))
	for i, s := range sels {
		names[i] = string(s)
	}
	return names
}
