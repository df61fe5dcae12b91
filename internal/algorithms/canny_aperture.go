package algorithms

import (
	"fmt"
	"runtime"

	"gocv.io/x/gocv"
)

const (
	tan22 = 0.41421356237309503 // tan(22.5°)
	tan67 = 2.41421356237309510 // tan(67.5°)
)

const (
	pixelNone uint8 = iota
	pixelCandidate
	pixelEdge
)

// cannyWithAperture runs Canny over Sobel gradients of the given aperture.
// It follows OpenCV's L1-norm variant: four-direction non-maximum
// suppression, then 8-connected hysteresis grown from strong pixels.
func cannyWithAperture(gray gocv.Mat, low, high float64, aperture int) (gocv.Mat, error) {
	if low > high {
		low, high = high, low
	}

	rows, cols := gray.Rows(), gray.Cols()

	dx := gocv.NewMat()
	defer dx.Close()
	dy := gocv.NewMat()
	defer dy.Close()

	gocv.Sobel(gray, &dx, gocv.MatTypeCV32F, 1, 0, aperture, 1, 0, gocv.BorderReplicate)
	gocv.Sobel(gray, &dy, gocv.MatTypeCV32F, 0, 1, aperture, 1, 0, gocv.BorderReplicate)
	if dx.Empty() || dy.Empty() {
		return gocv.NewMat(), fmt.Errorf("canny gradient with aperture %d produced no output", aperture)
	}

	gx, err := dx.DataPtrFloat32()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("canny x gradient access failed: %w", err)
	}
	gy, err := dy.DataPtrFloat32()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("canny y gradient access failed: %w", err)
	}

	mag := make([]float32, rows*cols)
	for i := range mag {
		mag[i] = abs32(gx[i]) + abs32(gy[i])
	}

	at := func(r, c int) float32 {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return 0
		}
		return mag[r*cols+c]
	}

	state := make([]uint8, rows*cols)
	stack := make([]int, 0, rows*cols/16+1)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			m := mag[i]
			if float64(m) <= low {
				continue
			}

			xs, ys := gx[i], gy[i]
			x, y := abs32(xs), abs32(ys)

			var isMax bool
			switch {
			case y < x*tan22:
				isMax = m > at(r, c-1) && m >= at(r, c+1)
			case y > x*tan67:
				isMax = m > at(r-1, c) && m >= at(r+1, c)
			default:
				s := 1
				if (xs < 0) != (ys < 0) {
					s = -1
				}
				isMax = m > at(r-1, c-s) && m > at(r+1, c+s)
			}
			if !isMax {
				continue
			}

			if float64(m) > high {
				state[i] = pixelEdge
				stack = append(stack, i)
			} else {
				state[i] = pixelCandidate
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r, c := i/cols, i%cols

		for nr := r - 1; nr <= r+1; nr++ {
			for nc := c - 1; nc <= c+1; nc++ {
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				n := nr*cols + nc
				if state[n] == pixelCandidate {
					state[n] = pixelEdge
					stack = append(stack, n)
				}
			}
		}
	}

	data := make([]byte, rows*cols)
	for i, s := range state {
		if s == pixelEdge {
			data[i] = 255
		}
	}

	view, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("canny mask creation failed: %w", err)
	}
	defer view.Close()

	// view borrows data; the clone owns its pixels
	edges := view.Clone()
	runtime.KeepAlive(data)
	return edges, nil
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
