package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"route-scenario-service/internal/api/dto"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/services"
	"time"

	"go.uber.org/zap"
)

// MaxBatchUploadBytes bounds the multipart body of one batch.
const MaxBatchUploadBytes = 64 << 20

type BatchHandler struct {
	Orchestrator *services.BatchOrchestrator
}

func readSourceFiles(headers []*multipart.FileHeader) ([]domain.SourceFile, error) {
	files := make([]domain.SourceFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", fh.Filename, err)
		}
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", fh.Filename, err)
		}
		files = append(files, domain.SourceFile{Name: fh.Filename, Content: b})
	}
	return files, nil
}

// Run processes the uploaded `files` one at a time and streams NDJSON: one
// progress event per item state change, then the batch outcome. Closing the
// connection stops the batch after the file in flight.
func (h *BatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBatchUploadBytes)
	if err := r.ParseMultipartForm(MaxBatchUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, r, http.StatusBadRequest, "no files uploaded")
		return
	}

	files, err := readSourceFiles(headers)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rc := http.NewResponseController(w)
	// A batch can outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	send := func(ev dto.BatchEvent) {
		if err := enc.Encode(ev); err != nil {
			zap.S().Debugw("batch stream write failed", "err", err)
			return
		}
		_ = rc.Flush()
	}

	out, err := h.Orchestrator.Run(r.Context(), files, func(p domain.BatchProgress) {
		send(dto.BatchEvent{Type: dto.BatchEventProgress, Progress: &p})
	})
	if err != nil {
		zap.S().Warnw("batch failed to start", "err", err)
		return
	}
	send(dto.BatchEvent{Type: dto.BatchEventOutcome, Outcome: &out})
}
