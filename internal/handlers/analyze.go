package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/macrocam/macrocam/internal/config"
	"github.com/macrocam/macrocam/internal/models"
)

// Generic messages returned to clients. Details only go to the log.
const (
	msgImageTooLarge = "Image file is too large."
	msgAnalysisError = "Error analyzing image"

	// failureAnalyzer is recorded on failed analyses in place of the
	// analyzer's own output.
	failureAnalyzer = "analyzer failed"
)

// HandleAnalyze accepts a multipart "image" upload, saves it, runs the
// analyzer and returns {"macros": stdout}.
func (h *Handler) HandleAnalyze(c *gin.Context) {
	start := time.Now()

	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			h.writeError(c, msgImageTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, msgImageTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		slog.Warn("Upload without image", "err", err)
		h.writeError(c, msgAnalysisError, http.StatusInternalServerError)
		return
	}

	file, err := header.Open()
	if err != nil {
		slog.Error("Failed to open upload", "err", err)
		h.writeError(c, msgAnalysisError, http.StatusInternalServerError)
		return
	}
	defer file.Close()

	imagePath, size, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		slog.Error("Failed to save upload", "err", err)
		h.writeError(c, msgAnalysisError, http.StatusInternalServerError)
		return
	}
	if h.uploadPolicy == config.UploadPolicyDelete {
		defer func() {
			if err := h.uploads.Remove(imagePath); err != nil {
				slog.Warn("Failed to remove processed upload", "path", imagePath, "err", err)
			}
		}()
	}

	analysis := &models.Analysis{
		ID:        uuid.NewString(),
		Filename:  filepath.Base(imagePath),
		Size:      size,
		CreatedAt: start,
	}

	info, err := inspectImage(imagePath)
	if err != nil {
		slog.Warn("Failed to inspect image", "filename", analysis.Filename, "error", err)
	} else {
		analysis.ImageFormat = info.Format
		analysis.ImageWidth = info.Width
		analysis.ImageHeight = info.Height
	}

	slog.Info("Image saved", "id", analysis.ID, "filename", analysis.Filename, "size", size, "format", analysis.ImageFormat)

	macros, err := h.analyzer.Analyze(c.Request.Context(), imagePath)
	analysis.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		analysis.Status = models.StatusFailed
		analysis.Error = failureAnalyzer
		h.analyses.Set(analysis)
		slog.Error("Error executing analyzer", "id", analysis.ID, "err", err)
		h.writeError(c, msgAnalysisError, http.StatusInternalServerError)
		return
	}

	analysis.Status = models.StatusSucceeded
	analysis.Macros = macros
	h.analyses.Set(analysis)
	slog.Info("Image analyzed", "id", analysis.ID, "duration_ms", analysis.DurationMS, "length", len(macros))

	h.writeJSON(c, gin.H{"macros": macros})
}
