package domain

import "errors"

const (
	MinQuality = 10
	MaxQuality = 100

	DefaultUploadQuality   = 85
	DefaultEstimateQuality = 75

	// DefaultMaxImagePixels caps width*height of a single image before it
	// is decoded.
	DefaultMaxImagePixels int64 = 178956970
)

// Quality controls the lossy re-encode fidelity of every image in a request.
type Quality int

// ClampQuality bounds q to [MinQuality, MaxQuality].
func ClampQuality(q int) Quality {
	switch {
	case q < MinQuality:
		return MinQuality
	case q > MaxQuality:
		return MaxQuality
	}
	return Quality(q)
}

// Clamped returns q bounded to the valid range.
func (q Quality) Clamped() Quality {
	return ClampQuality(int(q))
}

// ImageBuffer is one uploaded image as received: its encoded bytes and the
// size the client declared for it.
type ImageBuffer struct {
	Name string
	Data []byte
	Size int64
}

var (
	// ErrNoPages signals that none of the images could be laid out.
	ErrNoPages = errors.New("no image could be decoded")
	// ErrImageTooLarge signals an image whose declared dimensions exceed
	// the pixel limit.
	ErrImageTooLarge = errors.New("image exceeds pixel limit")
)

// ExceedsPixels reports whether a width x height image is over limit.
// A limit <= 0 disables the check.
func ExceedsPixels(width, height int, limit int64) bool {
	return limit > 0 && int64(width)*int64(height) > limit
}
