// Package estimate predicts the size of the generated PDF from the declared
// sizes of the source images, without decoding or composing anything.
package estimate

import (
	"fmt"

	"img2pdf/internal/domain"
)

// documentOverhead accounts for page objects, xref and image dictionaries.
const documentOverhead = 1.3

const (
	kib = 1024
	mib = 1024 * 1024
)

// Estimate is a predicted output size.
type Estimate struct {
	Bytes     int64  `json:"estimated_size"`
	Formatted string `json:"formatted_size"`
}

// Ratio returns the expected JPEG compression ratio for q (clamped first).
func Ratio(q domain.Quality) float64 {
	switch q = q.Clamped(); {
	case q >= 90:
		return 0.8
	case q >= 75:
		return 0.5
	case q >= 50:
		return 0.3
	default:
		return 0.15
	}
}

// Size estimates the PDF size for images of the given original sizes.
func Size(sizes []int64, q domain.Quality) Estimate {
	ratio := Ratio(q)

	var total float64
	for _, s := range sizes {
		total += float64(s) * ratio
	}
	total *= documentOverhead

	return Estimate{
		Bytes:     int64(total),
		Formatted: Format(total),
	}
}

// Format renders n bytes as "<x.x>MB" above one MiB and "<x>KB" otherwise.
func Format(n float64) string {
	if n > mib {
		return fmt.Sprintf("%.1fMB", n/mib)
	}
	return fmt.Sprintf("%.0fKB", n/kib)
}
