package io

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when a capture device yields no image
var ErrNoFrame = errors.New("camera returned no frame")

// Frames read and discarded before the capture while the sensor adjusts exposure
const warmupFrames = 5

// CaptureFrame grabs a single frame from a capture device as an RGB Mat
func (il *ImageLoader) CaptureFrame(deviceID int) (gocv.Mat, error) {
	cam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return gocv.NewMat(), errors.Wrapf(err, "failed to open camera %d", deviceID)
	}
	defer cam.Close()

	if !cam.IsOpened() {
		return gocv.NewMat(), errors.Errorf("camera %d is not available", deviceID)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for i := 0; i <= warmupFrames; i++ {
		if ok := cam.Read(&frame); !ok {
			return gocv.NewMat(), errors.Wrapf(ErrNoFrame, "device %d", deviceID)
		}
	}
	if frame.Empty() {
		return gocv.NewMat(), errors.Wrapf(ErrNoFrame, "device %d", deviceID)
	}

	rgb := gocv.NewMat()
	gocv.CvtColor(frame, &rgb, gocv.ColorBGRToRGB)

	il.logger.WithFields(logrus.Fields{
		"device": deviceID,
		"width":  rgb.Cols(),
		"height": rgb.Rows(),
	}).Info("Camera frame captured")

	return rgb, nil
}
