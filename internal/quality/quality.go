// Package quality measures the distortion an embed introduced.
package quality

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const maxValue = 255.0

// Report compares two channel buffers of identical layout.
type Report struct {
	// MSE is the mean squared error over every channel byte.
	MSE float64
	// PSNR in dB; +Inf when the buffers are identical.
	PSNR float64
	// Changed counts bytes that differ.
	Changed int
	// MaxDelta is the largest absolute difference of a single byte.
	MaxDelta int
}

func Compare(original, modified []uint8) (Report, error) {
	if len(original) != len(modified) {
		return Report{}, fmt.Errorf("buffer length mismatch: %d != %d", len(original), len(modified))
	}
	var r Report
	if len(original) == 0 {
		r.PSNR = math.Inf(1)
		return r, nil
	}
	sq := make([]float64, len(original))
	for i := range original {
		d := int(modified[i]) - int(original[i])
		if d != 0 {
			r.Changed++
		}
		if d < 0 {
			d = -d
		}
		if d > r.MaxDelta {
			r.MaxDelta = d
		}
		sq[i] = float64(d * d)
	}
	r.MSE = stat.Mean(sq, nil)
	r.PSNR = psnr(r.MSE)
	return r, nil
}

func psnr(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(maxValue*maxValue/mse)
}
