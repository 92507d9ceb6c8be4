package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/receiptworks/expense-processor/internal/common"
)

type processReceiptRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

// processReceipt runs the pipeline on a base64-encoded image. Every failure
// maps to a 400 with a detail message; unexpected panics inside the pipeline
// are recovered into the same shape rather than leaking a 500, matching the
// process-receipt contract of "any pipeline failure is a client error".
func (h *Handler) processReceipt(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("receipts.process.panic", "panic", p)
			writeDetail(w, fmt.Sprintf("Error processing receipt: %v", p))
		}
	}()

	var req processReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, "invalid request body")
		return
	}
	if req.Filename == "" {
		req.Filename = "receipt.jpg"
	}

	record, err := h.receipts.ProcessReceipt(r.Context(), req.Image, req.Filename)
	if err != nil {
		writeDetail(w, detailMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// detailMessage extracts the human-readable message for the detail field,
// dropping internal error codes when an AppError carries one.
func detailMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fmt.Sprintf("Error processing receipt: %v", err)
}

func writeDetail(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": msg})
}
