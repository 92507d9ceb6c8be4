package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// Engine produces recognized text from an encoded raster image. Engines let
// us stub recognition in tests.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Config for the Tesseract engine.
type Config struct {
	Language    string // trained language, default "eng"
	TessdataDir string // override for the tessdata directory; empty uses the system default
}

// TesseractEngine implements Engine on top of a single gosseract client.
// Loading trained data is expensive, so the client is created lazily on the
// first recognition and reused for the life of the process. The client is
// not safe for concurrent use; every call is serialized on mu.
type TesseractEngine struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	client *gosseract.Client
}

func NewTesseractEngine(cfg Config, logger *slog.Logger) *TesseractEngine {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractEngine{cfg: cfg, logger: logger}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs OCR over the image bytes and returns the raw recognized
// text. Engine failures propagate; there are no retries.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		start := time.Now()
		client := gosseract.NewClient()
		if err := client.SetLanguage(e.cfg.Language); err != nil {
			_ = client.Close()
			return "", fmt.Errorf("set language %q: %w", e.cfg.Language, err)
		}
		if e.cfg.TessdataDir != "" {
			if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
				_ = client.Close()
				return "", fmt.Errorf("set tessdata dir: %w", err)
			}
		}
		e.client = client
		e.logger.Info("ocr.engine.init",
			"engine", e.Name(),
			"language", e.cfg.Language,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}

	if err := e.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// Close releases the underlying client. Only useful in tests; in the server
// the engine lives for the process lifetime.
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
