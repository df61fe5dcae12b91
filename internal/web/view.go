package web

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/config"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
)

type pageData struct {
	AppName    string
	Version    string
	Accept     string
	Algorithms []algorithmView
	Selected   string
	Secondary  string
	Compare    bool
	UseCamera  bool
	Panels     []panelView
	Download   *downloadView
	Error      string

	// Previously submitted image, base64, and the source it came from
	Original       string
	OriginalSource string
}

type algorithmView struct {
	Name        string
	Lower       string
	Description string
	Params      []paramView
}

type paramView struct {
	Field       string
	Label       string
	Type        string
	Min         int
	Max         int
	Step        int
	Value       int
	Options     []int
	Description string
}

type panelView struct {
	Title string
	Src   template.URL
	Stats []statView
}

type statView struct {
	Label string
	Value string
}

type downloadView struct {
	Filename string
	Href     template.URL
}

func dataURI(contentType string, data []byte) template.URL {
	return template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// newPage fills the controls from req. Parameter values of the selected
// algorithm come from req, all others from defaults.
func newPage(req core.Request) pageData {
	page := pageData{
		AppName:   config.AppName,
		Version:   config.AppVersion,
		Accept:    strings.Join(imageio.SupportedExtensions(), ","),
		Selected:  string(req.Algorithm()),
		Secondary: string(req.Secondary()),
		Compare:   req.Compare(),
		UseCamera: req.Source() == core.SourceCamera,
	}

	current := req.Params()
	for _, algo := range algorithms.All() {
		view := algorithmView{
			Name:        string(algo.Selector()),
			Lower:       algo.Selector().Lower(),
			Description: algo.Description(),
		}

		values := algo.DefaultParams()
		if algo.Selector() == req.Algorithm() {
			values = current.With(values)
		}

		for _, info := range algo.ParameterInfo() {
			view.Params = append(view.Params, paramView{
				Field:       paramField(algo.Selector(), info.Name),
				Label:       info.Label,
				Type:        info.Type,
				Min:         info.Min,
				Max:         info.Max,
				Step:        info.Step,
				Value:       values.Int(info.Name, info.Default),
				Options:     info.Options,
				Description: info.Description,
			})
		}
		page.Algorithms = append(page.Algorithms, view)
	}

	return page
}

// addResult renders the result panels as previews and attaches the download link
func (s *Server) addResult(page *pageData, res core.Result) error {
	for _, panel := range res.Panels() {
		display, err := algorithms.ToDisplayable(panel.Image)
		if err != nil {
			return errors.Wrapf(err, "panel %s", panel.Title)
		}

		data, err := s.loader.EncodePreview(display, s.cfg.Display.PreviewWidth, s.cfg.Display.PreviewHeight)
		display.Close()
		if err != nil {
			return errors.Wrapf(err, "panel %s", panel.Title)
		}

		page.Panels = append(page.Panels, panelView{
			Title: panel.Title,
			Src:   dataURI("image/png", data),
			Stats: s.statViews(panel.Stats),
		})
	}

	dl, err := res.Download(s.loader)
	switch {
	case errors.Is(err, core.ErrNoDownload):
	case err != nil:
		return err
	default:
		page.Download = &downloadView{
			Filename: dl.Filename,
			Href:     dataURI(dl.ContentType, dl.Data),
		}
	}

	return nil
}

func (s *Server) statViews(stats map[string]float64) []statView {
	if len(stats) == 0 {
		return nil
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	views := make([]statView, 0, len(keys))
	for _, k := range keys {
		label := k
		if info, ok := s.metricInfo[k]; ok {
			label = info.Name
		}
		views = append(views, statView{Label: label, Value: fmt.Sprintf("%.3f", stats[k])})
	}
	return views
}
