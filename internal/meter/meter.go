// Package meter summarizes rendered audio for status lines and tests.
package meter

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// Peak returns the largest absolute sample value, or 0 for no samples.
func Peak(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	return vek32.Max(vek32.Abs(samples))
}

// RMS returns the root mean square of samples, or 0 for no samples.
func RMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	return math32.Sqrt(vek32.Dot(samples, samples) / float32(len(samples)))
}

// WindowPeaks splits samples into consecutive windows of size samples and
// returns each window's peak. A trailing partial window is dropped.
func WindowPeaks(samples []float32, size int) []float32 {
	if size <= 0 {
		return nil
	}
	n := len(samples) / size
	peaks := make([]float32, n)
	for i := range peaks {
		peaks[i] = Peak(samples[i*size : (i+1)*size])
	}
	return peaks
}

// DBFS converts a linear level to decibels relative to full scale. Silence
// maps to negative infinity.
func DBFS(level float32) float32 {
	if level <= 0 {
		return math32.Inf(-1)
	}
	return 20 * math32.Log10(level)
}
