package compose

import "math"

// PointsPerInch converts paper sizes given in inches to PDF user space.
const PointsPerInch = 72.0

// DefaultFitRatio leaves a 10% margin band around every image.
const DefaultFitRatio = 0.9

// PageSize is a page size in points.
type PageSize struct {
	Width  float64
	Height float64
}

// Letter is the US Letter page, 8.5 x 11 inches.
var Letter = PageSize{Width: 612, Height: 792}

// PageSizeInches returns the page size for dimensions given in inches.
func PageSizeInches(width, height float64) PageSize {
	return PageSize{Width: width * PointsPerInch, Height: height * PointsPerInch}
}

// Landscape returns p with the longer side horizontal.
func (p PageSize) Landscape() PageSize {
	if p.Width >= p.Height {
		return p
	}
	return PageSize{Width: p.Height, Height: p.Width}
}

// Placement is where an image lands on its page, in points from the lower
// left corner.
type Placement struct {
	Scale  float64
	X, Y   float64
	Width  float64
	Height float64
}

// Fit scales an imgW x imgH image uniformly to fit page, shrinks it by
// ratio and centers it.
func Fit(imgW, imgH int, page PageSize, ratio float64) Placement {
	w, h := float64(imgW), float64(imgH)
	s := math.Min(page.Width/w, page.Height/h) * ratio
	sw, sh := w*s, h*s
	return Placement{
		Scale:  s,
		X:      (page.Width - sw) / 2,
		Y:      (page.Height - sh) / 2,
		Width:  sw,
		Height: sh,
	}
}
