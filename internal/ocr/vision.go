// File: internal/ocr/vision.go
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// defaultAnnotationConfidence stands in for the per-word confidence the
// TEXT_DETECTION feature does not report.
const defaultAnnotationConfidence = 0.9

// VisionClient extracts text from screenshots through the Google Cloud
// Vision images:annotate endpoint.
type VisionClient struct {
	logger     *zap.Logger
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewVisionClient builds a Vision API client. The API key comes from
// configuration or the LOCASCOPE_VISION_API_KEY environment binding.
func NewVisionClient(cfg config.OCRConfig, logger *zap.Logger) (*VisionClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google vision API key is not configured (set LOCASCOPE_VISION_API_KEY)")
	}
	return &VisionClient{
		logger:     logger.Named("vision"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
	}, nil
}

// -- Wire types (subset of the annotate request/response) --

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	TextAnnotations []textAnnotation `json:"textAnnotations"`
	Error           *visionError     `json:"error"`
}

type textAnnotation struct {
	Description  string       `json:"description"`
	BoundingPoly boundingPoly `json:"boundingPoly"`
}

type boundingPoly struct {
	Vertices []vertex `json:"vertices"`
}

type vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type visionError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Extract uploads the image and converts the annotation list into text
// blocks. The first annotation aggregates the whole image's text and is
// skipped; only the individual word and phrase annotations are returned.
func (vc *VisionClient) Extract(ctx context.Context, imagePath string) ([]schemas.TextBlock, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot %s: %w", imagePath, err)
	}

	payload, err := json.Marshal(annotateRequest{
		Requests: []imageRequest{{
			Image:    imageContent{Content: base64.StdEncoding.EncodeToString(raw)},
			Features: []feature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotate request: %w", err)
	}

	requestURL := vc.endpoint + "?key=" + url.QueryEscape(vc.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := vc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("annotate request returned %s: %s", resp.Status, truncate(string(body), 200))
	}

	var parsed annotateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode annotate response: %w", err)
	}
	if len(parsed.Responses) == 0 {
		vc.logger.Warn("Vision API returned no responses", zap.String("image", imagePath))
		return nil, nil
	}
	first := parsed.Responses[0]
	if first.Error != nil {
		return nil, fmt.Errorf("vision API error %d: %s", first.Error.Code, first.Error.Message)
	}
	if len(first.TextAnnotations) == 0 {
		vc.logger.Debug("No text detected", zap.String("image", imagePath))
		return nil, nil
	}

	// Index 0 is the aggregate of the entire image.
	blocks := make([]schemas.TextBlock, 0, len(first.TextAnnotations)-1)
	for _, annotation := range first.TextAnnotations[1:] {
		text := strings.TrimSpace(annotation.Description)
		if text == "" {
			continue
		}
		blocks = append(blocks, schemas.TextBlock{
			Text:       text,
			BBox:       toBoundingBox(annotation.BoundingPoly.Vertices),
			Confidence: defaultAnnotationConfidence,
		})
	}

	vc.logger.Info("Extracted text blocks",
		zap.String("image", imagePath),
		zap.Int("blocks", len(blocks)),
	)
	return blocks, nil
}

// toBoundingBox converts the annotate vertex list into the fixed
// quadrilateral, tolerating missing vertices.
func toBoundingBox(vertices []vertex) schemas.BoundingBox {
	var box schemas.BoundingBox
	if len(vertices) != 4 {
		return box
	}
	for i, v := range vertices {
		box[i] = schemas.Point{X: v.X, Y: v.Y}
	}
	return box
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
