package handlers

import (
	"github.com/gofiber/fiber/v2"

	"img2pdf/internal/config"
	"img2pdf/internal/domain"
	"img2pdf/internal/estimate"
	"img2pdf/internal/infra/logging"
)

// EstimateFile describes one file the client is about to upload.
type EstimateFile struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Size *int64 `json:"size"`
}

// EstimateRequest is the JSON body of POST /estimate-size.
type EstimateRequest struct {
	Files   []EstimateFile `json:"files"`
	Quality *int           `json:"quality"`
}

// HandleEstimate predicts the PDF size for the declared files.
func (svc *ConversionService) HandleEstimate(c *fiber.Ctx) error {
	sizes, q, err := validateAndExtractEstimate(c, *svc.Config)
	if err != nil {
		return err
	}
	return c.JSON(estimate.Size(sizes, q))
}

func validateAndExtractEstimate(c *fiber.Ctx, cfg config.Config) ([]int64, domain.Quality, error) {
	body := c.Body()
	if len(body) == 0 {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "No file data provided")
	}

	var req EstimateRequest
	if err := c.App().Config().JSONDecoder(body, &req); err != nil {
		logging.Debug("Estimate body rejected", "error", err)
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}
	if req.Files == nil {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "No file data provided")
	}

	sizes := make([]int64, len(req.Files))
	for i, f := range req.Files {
		if f.Size == nil || *f.Size < 0 {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid file data: size must be a non-negative integer")
		}
		sizes[i] = *f.Size
	}

	q := domain.ClampQuality(cfg.PDF.EstimateQuality)
	if req.Quality != nil {
		q = domain.ClampQuality(*req.Quality)
	}
	return sizes, q, nil
}
