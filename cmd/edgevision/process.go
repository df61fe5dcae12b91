package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"edgevision-studio/internal/algorithms"
	"edgevision-studio/internal/core"
	imageio "edgevision-studio/internal/io"
)

type processFlags struct {
	input     string
	camera    bool
	algorithm string
	params    map[string]int
	compare   string
	output    string
}

func newProcessCmd(c *cli) *cobra.Command {
	f := &processFlags{}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run an edge detector on an image file or camera frame and write the PNG result",
		Example: `  edgevision process -i photo.jpg -a canny -p threshold1=50 -p threshold2=150
  edgevision process -i photo.png -a sobel --compare laplacian -o out/
  edgevision process --camera -a laplacian -p ksize=5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.process(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "image file (jpg, jpeg, png, bmp)")
	flags.BoolVar(&f.camera, "camera", false, "capture a frame from the configured camera instead of reading a file")
	flags.StringVarP(&f.algorithm, "algorithm", "a", string(algorithms.Sobel), "edge detector: Sobel, Laplacian or Canny")
	flags.StringToIntVarP(&f.params, "param", "p", nil, "algorithm parameter as key=value, repeatable")
	flags.StringVar(&f.compare, "compare", "", "also run this detector with the same parameters (file input only)")
	flags.StringVarP(&f.output, "output", "o", ".", "directory the result PNGs are written to")
	cmd.MarkFlagsMutuallyExclusive("input", "camera")

	return cmd
}

func (f *processFlags) request() (core.Request, error) {
	primary, err := algorithms.ParseSelector(f.algorithm)
	if err != nil {
		return core.Request{}, err
	}
	algo, _ := algorithms.Get(primary)

	known := make(map[string]bool)
	for _, info := range algo.ParameterInfo() {
		known[info.Name] = true
	}
	for key := range f.params {
		if !known[key] {
			return core.Request{}, errors.Errorf("%s has no parameter %q", primary, key)
		}
	}

	secondary := algorithms.Sobel
	if f.compare != "" {
		if secondary, err = algorithms.ParseSelector(f.compare); err != nil {
			return core.Request{}, err
		}
	}

	source := core.SourceUpload
	if f.camera {
		source = core.SourceCamera
	}

	params := algorithms.Params(f.params).With(algo.DefaultParams())
	req := core.NewRequest(source, primary, params, f.compare != "", secondary)
	if err := req.Validate(); err != nil {
		return req, errors.Wrap(err, "invalid parameters")
	}
	return req, nil
}

func (c *cli) process(cmd *cobra.Command, f *processFlags) error {
	if f.input == "" && !f.camera {
		return errors.New("either --input or --camera is required")
	}

	req, err := f.request()
	if err != nil {
		return err
	}

	loader := c.newLoader()
	input, err := c.readInput(loader, f)
	if err != nil {
		return err
	}
	defer input.Close()

	res, err := c.newHandler().Handle(req, input)
	if err != nil {
		return err
	}
	defer res.Close()

	if err := os.MkdirAll(f.output, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", f.output)
	}

	dl, err := res.Download(loader)
	if err != nil {
		return err
	}
	if err := c.writeOutput(cmd, f.output, dl.Filename, dl.Data); err != nil {
		return err
	}

	if cmp, ok := res.(*core.ComparisonResult); ok && cmp.Secondary != cmp.Primary {
		data, err := encodeDisplayable(loader, cmp.Second.Image)
		if err != nil {
			return errors.Wrapf(err, "%s output", cmp.Secondary)
		}
		if err := c.writeOutput(cmd, f.output, core.DownloadName(cmp.Secondary), data); err != nil {
			return err
		}
	}

	for _, panel := range res.Panels() {
		if len(panel.Stats) == 0 {
			continue
		}
		fields := logrus.Fields{"panel": panel.Title}
		for k, v := range panel.Stats {
			fields[k] = v
		}
		c.logger.WithFields(fields).Info("Edge statistics")
	}

	return nil
}

func (c *cli) readInput(loader *imageio.ImageLoader, f *processFlags) (gocv.Mat, error) {
	if f.camera {
		return loader.CaptureFrame(c.cfg.Camera.DeviceID)
	}
	return loader.LoadImage(f.input)
}

func (c *cli) writeOutput(cmd *cobra.Command, dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func encodeDisplayable(loader *imageio.ImageLoader, mat gocv.Mat) ([]byte, error) {
	rgb, err := algorithms.ToDisplayable(mat)
	if err != nil {
		return nil, err
	}
	defer rgb.Close()
	return loader.EncodePNG(rgb)
}
