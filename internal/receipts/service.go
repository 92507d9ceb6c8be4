package receipts

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/receiptworks/expense-processor/internal/common"
	"github.com/receiptworks/expense-processor/internal/entity"
	"github.com/receiptworks/expense-processor/internal/extract"
)

// TextRecognizer recovers ordered text lines from an image payload.
type TextRecognizer interface {
	Recognize(ctx context.Context, img entity.RawImage) (entity.OcrText, error)
}

// Extractor turns raw OCR text into a structured record. It never fails.
type Extractor interface {
	Orchestrate(ctx context.Context, text string) extract.Result
}

// Service runs the receipt pipeline: decode payload, recognize text, reject
// empty results, extract fields. Everything it returns an error for is a
// request-scoped client error; nothing here is fatal to the process.
type Service struct {
	recognizer TextRecognizer
	extractor  Extractor
	logger     *slog.Logger
}

func NewService(recognizer TextRecognizer, extractor Extractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{recognizer: recognizer, extractor: extractor, logger: logger}
}

// ProcessReceipt converts a base64-encoded receipt image into an expense
// record.
func (s *Service) ProcessReceipt(ctx context.Context, imageB64, filename string) (entity.ExpenseRecord, error) {
	start := time.Now()
	if filename == "" {
		filename = "receipt.jpg"
	}

	data, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return entity.ExpenseRecord{}, common.NewAppError("INVALID_IMAGE", "image payload is not valid base64", common.ErrInvalidImage)
	}

	text, err := s.recognizer.Recognize(ctx, entity.RawImage{Bytes: data, Filename: filename})
	if err != nil {
		return entity.ExpenseRecord{}, err
	}
	if text.Empty() {
		s.logger.Warn("receipts.process.no_text", "filename", filename)
		return entity.ExpenseRecord{}, common.NewAppError("NO_TEXT_EXTRACTED", "could not extract text from image", common.ErrNoTextExtracted)
	}

	res := s.extractor.Orchestrate(ctx, text.Join())

	s.logger.Info("receipts.process.ok",
		"filename", filename,
		"lines", len(text.Lines),
		"outcome", string(res.Outcome),
		"amount", res.Record.Amount,
		"category", res.Record.Category,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res.Record, nil
}
