// File: internal/ocr/ocr.go

// Package ocr provides text extraction from screenshots via external OCR
// engines. The exploration core only sees the schemas.TextExtractor
// interface; the engine behind it is chosen by configuration.
package ocr

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/config"
)

// New creates the configured text extractor.
func New(cfg config.OCRConfig, logger *zap.Logger) (schemas.TextExtractor, error) {
	switch cfg.Engine {
	case "google_vision", "google_cloud_vision":
		return NewVisionClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}
