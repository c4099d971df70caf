package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/config"
)

// writeTestImage drops a tiny fake screenshot on disk; the Vision client only
// base64-encodes the bytes, so content does not matter.
func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, os.WriteFile(path, []byte("not-really-a-png"), 0o644))
	return path
}

func newTestClient(t *testing.T, endpoint string) *VisionClient {
	t.Helper()
	client, err := NewVisionClient(config.OCRConfig{
		Engine:         "google_vision",
		Endpoint:       endpoint,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := NewVisionClient(config.OCRConfig{Endpoint: "https://vision.example.com"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCASCOPE_VISION_API_KEY")
}

func TestNewSelectsEngine(t *testing.T) {
	cfg := config.OCRConfig{APIKey: "k", Endpoint: "https://vision.example.com"}

	cfg.Engine = "google_vision"
	_, err := New(cfg, zap.NewNop())
	assert.NoError(t, err)

	cfg.Engine = "google_cloud_vision"
	_, err = New(cfg, zap.NewNop())
	assert.NoError(t, err)

	cfg.Engine = "tesseract"
	_, err = New(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestExtractSkipsAggregateAnnotation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"responses": [{
				"textAnnotations": [
					{"description": "Welcome\nBienvenue"},
					{
						"description": "Welcome",
						"boundingPoly": {"vertices": [{"x": 10, "y": 20}, {"x": 110, "y": 20}, {"x": 110, "y": 40}, {"x": 10, "y": 40}]}
					},
					{
						"description": " Bienvenue ",
						"boundingPoly": {"vertices": [{"x": 10, "y": 60}]}
					},
					{"description": "   "}
				]
			}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	blocks, err := client.Extract(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	// The first annotation aggregates the whole image and must not appear;
	// the whitespace-only one is dropped too.
	require.Len(t, blocks, 2)

	assert.Equal(t, "Welcome", blocks[0].Text)
	assert.Equal(t, 0.9, blocks[0].Confidence)
	assert.Equal(t, schemas.BoundingBox{
		{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 110, Y: 40}, {X: 10, Y: 40},
	}, blocks[0].BBox)

	assert.Equal(t, "Bienvenue", blocks[1].Text, "descriptions are trimmed")
	assert.Equal(t, schemas.BoundingBox{}, blocks[1].BBox, "incomplete polygons map to the zero box")
}

func TestExtractNoTextDetected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"responses": [{}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	blocks, err := client.Extract(context.Background(), writeTestImage(t))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestExtractSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"responses": [{"error": {"code": 7, "message": "API key not valid"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Extract(context.Background(), writeTestImage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestExtractSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Extract(context.Background(), writeTestImage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestExtractMissingScreenshot(t *testing.T) {
	client := newTestClient(t, "https://vision.example.com")
	_, err := client.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestExtractHonorsContextCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		// Hold the request open until the client gives up. The release
		// channel lets the handler exit even when the server never notices
		// the disconnect, so Close does not hang on this request.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Extract(ctx, writeTestImage(t))
	assert.Error(t, err)
}
