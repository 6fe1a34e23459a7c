// Package compose lays raster images out as the pages of a PDF document, one
// image per page, scaled to fit and centered.
package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"img2pdf/internal/domain"
	"img2pdf/internal/infra/logging"
)

var disableConfigDir sync.Once

// Option configures a Composer.
type Option func(*Composer)

// WithFitRatio sets the share of the page an image may occupy along its
// constraining axis. Values outside (0, 1] are ignored.
func WithFitRatio(r float64) Option {
	return func(c *Composer) {
		if r > 0 && r <= 1 {
			c.fitRatio = r
		}
	}
}

// WithMaxImagePx downsamples embedded pixels so neither side exceeds px.
// Zero disables downsampling.
func WithMaxImagePx(px int) Option {
	return func(c *Composer) {
		if px >= 0 {
			c.maxPx = px
		}
	}
}

// WithMaxPixels rejects images whose width*height exceeds n before they
// are decoded. Zero disables the check.
func WithMaxPixels(n int64) Option {
	return func(c *Composer) {
		if n >= 0 {
			c.maxPixels = n
		}
	}
}

// Composer turns image buffers into a PDF. It holds no per-request state and
// is safe for concurrent use.
type Composer struct {
	page      PageSize
	fitRatio  float64
	maxPx     int
	maxPixels int64
}

// New returns a Composer producing pages of the given size.
func New(page PageSize, opts ...Option) *Composer {
	disableConfigDir.Do(api.DisableConfigDir)
	c := &Composer{page: page, fitRatio: DefaultFitRatio, maxPixels: domain.DefaultMaxImagePixels}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Result is a composed document.
type Result struct {
	// Data is nil when no page was laid out.
	Data []byte
	// Pages is the number of images laid out.
	Pages int
	// Skipped holds the input indexes of images that could not be decoded.
	Skipped []int
}

// Err returns domain.ErrNoPages when every image was skipped.
func (r *Result) Err() error {
	if r.Pages == 0 {
		return domain.ErrNoPages
	}
	return nil
}

// Compose lays out images in order, one per page, re-encoding each as JPEG at
// quality q. Images that cannot be decoded are skipped; check Result.Err for
// an empty outcome. The returned error reports a failure to build the
// document itself.
func (c *Composer) Compose(images []domain.ImageBuffer, q domain.Quality) (*Result, error) {
	q = q.Clamped()
	res := &Result{}

	pages := make([]io.Reader, 0, len(images))
	for i, in := range images {
		p, err := c.prepare(in.Data, q)
		if err != nil {
			logging.Debug("Skipping image", "index", i, "name", in.Name, "error", err)
			res.Skipped = append(res.Skipped, i)
			continue
		}
		pages = append(pages, bytes.NewReader(p.jpeg))
	}
	res.Pages = len(pages)
	if res.Pages == 0 {
		return res, nil
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, pages, c.importConfig(), configuration()); err != nil {
		return nil, fmt.Errorf("compose: import images: %w", err)
	}
	res.Data = buf.Bytes()
	return res, nil
}

// importConfig centers each image on the page, scaled relative to the page
// so that its constraining side covers fitRatio of it.
func (c *Composer) importConfig() *pdfcpu.Import {
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: c.page.Width, Height: c.page.Height}
	imp.PageSize = ""
	imp.UserDim = true
	imp.Pos = types.Center
	imp.Scale = c.fitRatio
	imp.ScaleAbs = false
	imp.InpUnit = types.POINTS
	return imp
}

// configuration leaves stream and object compression to the compress pass.
func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

type preparedImage struct {
	jpeg []byte
	// decoded dimensions
	width, height int
}

// prepare decodes data, flattens it to opaque RGB and encodes it as JPEG.
func (c *Composer) prepare(data []byte, q domain.Quality) (*preparedImage, error) {
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && domain.ExceedsPixels(cfg.Width, cfg.Height, c.maxPixels) {
		return nil, fmt.Errorf("decode: %dx%d: %w", cfg.Width, cfg.Height, domain.ErrImageTooLarge)
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode: empty image %dx%d", b.Dx(), b.Dy())
	}

	rgb := toRGB(src)
	if c.maxPx > 0 && (b.Dx() > c.maxPx || b.Dy() > c.maxPx) {
		rgb = imaging.Fit(rgb, c.maxPx, c.maxPx, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgb, imaging.JPEG, imaging.JPEGQuality(int(q))); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return &preparedImage{
		jpeg:   buf.Bytes(),
		width:  b.Dx(),
		height: b.Dy(),
	}, nil
}

// toRGB composites img over opaque white so every pixel is fully opaque and
// the JPEG encoder emits three color components.
func toRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
