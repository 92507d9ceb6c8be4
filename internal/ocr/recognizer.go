package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/receiptworks/expense-processor/internal/common"
	"github.com/receiptworks/expense-processor/internal/entity"
)

// Recognizer turns an image payload into ordered text lines. It is owned by
// the service root and shared across requests; the engine behind it
// serializes access internally.
type Recognizer struct {
	engine Engine
	logger *slog.Logger
}

func NewRecognizer(engine Engine, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{engine: engine, logger: logger}
}

// Recognize validates that the payload decodes as a raster image, then runs
// the engine over it. Decode failures and engine failures surface as
// distinct errors so the caller can map them separately.
func (r *Recognizer) Recognize(ctx context.Context, img entity.RawImage) (entity.OcrText, error) {
	start := time.Now()

	if _, format, err := image.DecodeConfig(bytes.NewReader(img.Bytes)); err != nil {
		r.logger.Warn("ocr.recognize.decode_error",
			"filename", img.Filename,
			"bytes", len(img.Bytes),
			"error", err,
		)
		return entity.OcrText{}, common.NewAppError("INVALID_IMAGE", "cannot decode image payload", common.ErrInvalidImage)
	} else if format == "" {
		return entity.OcrText{}, common.NewAppError("INVALID_IMAGE", "unknown image format", common.ErrInvalidImage)
	}

	text, err := r.engine.Recognize(ctx, img.Bytes)
	if err != nil {
		r.logger.Error("ocr.recognize.engine_error",
			"filename", img.Filename,
			"engine", r.engine.Name(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.OcrText{}, common.NewAppError("OCR_FAILED", "recognition engine failed", errors.Join(common.ErrRecognition, err))
	}

	lines := SplitLines(Normalize(text))
	r.logger.Info("ocr.recognize.ok",
		"filename", img.Filename,
		"engine", r.engine.Name(),
		"lines", len(lines),
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.OcrText{Lines: lines}, nil
}
