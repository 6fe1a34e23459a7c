package handlers

import (
	"img2pdf/internal/compose"
	"img2pdf/internal/compress"
	"img2pdf/internal/config"
	"img2pdf/internal/infra/cache"
)

// ConversionService bundles configuration and dependencies for the upload and
// estimate endpoints.
type ConversionService struct {
	Config     *config.Config
	Compressor *compress.Compressor
	Cache      *cache.PDFCache
}

// NewConversionService creates a service. pdfCache may be nil to disable
// response caching.
func NewConversionService(cfg config.Config, pdfCache *cache.PDFCache) *ConversionService {
	return &ConversionService{
		Config:     &cfg,
		Compressor: compress.New(),
		Cache:      pdfCache,
	}
}

// composer returns a Composer for the requested page.
func (svc *ConversionService) composer(page compose.PageSize) *compose.Composer {
	return compose.New(page,
		compose.WithFitRatio(svc.Config.PDF.FitRatio),
		compose.WithMaxImagePx(svc.Config.PDF.MaxImagePx),
		compose.WithMaxPixels(svc.Config.Limits.MaxImagePixels),
	)
}
