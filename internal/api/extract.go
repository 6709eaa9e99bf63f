package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"mediaextract/internal/logging"
	"mediaextract/internal/media"
	"mediaextract/internal/pipeline"
	"mediaextract/internal/services"
)

const (
	defaultMaxUploadBytes = 10 << 20
	// formOverheadBytes leaves room for multipart framing and the query field.
	formOverheadBytes = 64 << 10
)

type extractHandler struct {
	runner    Runner
	maxUpload int64
	logger    *slog.Logger
}

func (h *extractHandler) handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formOverheadBytes)

	image, status, err := h.readImage(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	query := strings.TrimSpace(c.PostForm("query"))
	if query == "" {
		query = strings.TrimSpace(c.Query("query"))
	}
	if len(image) == 0 && query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide an image or a query"})
		return
	}
	if h.runner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pipeline is not configured"})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), pipeline.Input{Image: image, Query: query})
	if err != nil {
		h.writeFailure(c, err)
		return
	}
	records := result.Records
	if records == nil {
		records = []media.Metadata{}
	}
	c.JSON(http.StatusOK, records)
}

// readImage returns the uploaded file, or nil when none was sent.
func (h *extractHandler) readImage(c *gin.Context) ([]byte, int, error) {
	header, err := c.FormFile("file")
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, http.StatusOK, nil
	case isTooLarge(err):
		return nil, http.StatusRequestEntityTooLarge, h.tooLarge()
	default:
		return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	if header.Size > h.maxUpload {
		return nil, http.StatusRequestEntityTooLarge, h.tooLarge()
	}
	image, err := readPart(header)
	if err != nil {
		if isTooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge, h.tooLarge()
		}
		return nil, http.StatusBadRequest, fmt.Errorf("read upload: %w", err)
	}
	return image, http.StatusOK, nil
}

func (h *extractHandler) tooLarge() error {
	return fmt.Errorf("image exceeds the %s upload limit", humanize.IBytes(uint64(h.maxUpload)))
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}

// writeFailure maps a run error to a status code. Batch-fatal pipeline errors
// are written as {"error", "raw"}.
func (h *extractHandler) writeFailure(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	logger := logging.WithContext(c.Request.Context(), h.logger)
	if perr, ok := media.AsPipelineError(err); ok {
		if status == http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		logging.WarnWithContext(logger, "extraction failed", "extract_failed",
			logging.String("stage", perr.Stage),
			logging.Int("status", status),
			logging.Error(err),
			logging.String(logging.FieldImpact, "request returned an error object"),
		)
		c.JSON(status, perr)
		return
	}
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logger, "extraction failed", "extract_failed", logging.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
