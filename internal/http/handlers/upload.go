package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"img2pdf/internal/compose"
	"img2pdf/internal/compress"
	"img2pdf/internal/config"
	"img2pdf/internal/domain"
	"img2pdf/internal/infra/cache"
	"img2pdf/internal/infra/logging"
)

// UploadRequest holds a validated upload.
type UploadRequest struct {
	Images      []domain.ImageBuffer
	Quality     domain.Quality
	Format      string
	Orientation string
	Page        compose.PageSize
}

// HandleUpload composes the uploaded images into a compressed PDF download.
func (svc *ConversionService) HandleUpload(c *fiber.Ctx) error {
	req, err := validateAndExtractUpload(c, *svc.Config)
	if err != nil {
		return err
	}
	return svc.processUpload(c, req)
}

func (svc *ConversionService) processUpload(c *fiber.Ctx, req *UploadRequest) error {
	requestID := requestID(c)
	key := cache.Key(req.Images, req.Quality, req.Format, req.Orientation)

	if cached := svc.Cache.Get(c.Context(), key); cached != nil {
		return svc.sendPDF(c, cached)
	}

	res, err := svc.composer(req.Page).Compose(req.Images, req.Quality)
	if err != nil {
		logging.Error("PDF composition failed", "error", err, "request_id", requestID)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to process images")
	}
	if err := res.Err(); errors.Is(err, domain.ErrNoPages) {
		return fiber.NewError(fiber.StatusBadRequest, "No valid images found")
	}
	if len(res.Skipped) > 0 {
		logging.Warn("Images skipped during composition", "skipped", res.Skipped, "request_id", requestID)
	}

	data := res.Data
	if svc.Config.PDF.Compress {
		cr := svc.Compressor.Compress(data)
		logCompressionFallback(cr, requestID)
		data = cr.Data
	}

	svc.Cache.Set(c.Context(), key, data)

	logging.Info("PDF generated",
		"pages", res.Pages,
		"quality", int(req.Quality),
		"composed_bytes", len(res.Data),
		"bytes", len(data),
		"request_id", requestID,
	)
	return svc.sendPDF(c, data)
}

// logCompressionFallback reports why a document was sent uncompressed. A
// rewrite that gained nothing is routine; anything else is a real failure.
func logCompressionFallback(cr compress.Result, requestID string) {
	switch {
	case cr.Compressed:
	case errors.Is(cr.Fallback, compress.ErrNotSmaller):
		logging.Debug("PDF compression gained nothing", "request_id", requestID)
	default:
		logging.Warn("PDF compression failed", "error", cr.Fallback, "request_id", requestID)
	}
}

func (svc *ConversionService) sendPDF(c *fiber.Ctx, data []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+svc.Config.PDF.DownloadName)
	return c.Send(data)
}

// validateAndExtractUpload checks the multipart form and reads every file.
// A single bad file rejects the whole request.
func validateAndExtractUpload(c *fiber.Ctx, cfg config.Config) (*UploadRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	}

	files := form.File["files"]
	if len(files) == 0 {
		// A file input with nothing chosen is sent as a part without a
		// filename, which the multipart reader files as a plain value.
		if _, ok := form.Value["files"]; ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, "No files selected")
		}
		return nil, fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	}
	if cfg.Limits.MaxFiles > 0 && len(files) > cfg.Limits.MaxFiles {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Too many files: at most %d allowed", cfg.Limits.MaxFiles))
	}

	quality := domain.ClampQuality(cfg.PDF.DefaultQuality)
	if v := strings.TrimSpace(formValue(form, "quality")); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid quality: must be an integer")
		}
		quality = domain.ClampQuality(q)
	}

	format := strings.ToUpper(formValue(form, "format"))
	if format == "" {
		format = cfg.PDF.DefaultPaper
	}
	paper, ok := cfg.PDF.PaperSizes[format]
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid format: not supported")
	}

	orientation := strings.ToLower(formValue(form, "orientation"))
	if orientation != "" && orientation != "portrait" && orientation != "landscape" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid orientation: must be 'portrait' or 'landscape'")
	}
	page := compose.PageSizeInches(paper.Width, paper.Height)
	if orientation == "landscape" {
		page = page.Landscape()
	}

	images := make([]domain.ImageBuffer, 0, len(files))
	for _, fh := range files {
		if !allowedFile(fh.Filename, cfg.Limits.AllowedExtensions) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid file type: "+fh.Filename)
		}
		data, err := readFile(fh)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid image: "+fh.Filename)
		}
		ic, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil || domain.ExceedsPixels(ic.Width, ic.Height, cfg.Limits.MaxImagePixels) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid image: "+fh.Filename)
		}
		images = append(images, domain.ImageBuffer{Name: fh.Filename, Data: data, Size: fh.Size})
	}
	if len(images) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No valid images found")
	}

	return &UploadRequest{
		Images:      images,
		Quality:     quality,
		Format:      format,
		Orientation: orientation,
		Page:        page,
	}, nil
}

// allowedFile reports whether name has one of the allowed extensions.
func allowedFile(name string, allowed []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && slices.Contains(allowed, ext)
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func requestID(c *fiber.Ctx) string {
	if id := c.GetRespHeader(fiber.HeaderXRequestID); id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
