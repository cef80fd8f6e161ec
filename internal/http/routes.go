package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atomikkus/therapies-api/internal/config"
	"github.com/atomikkus/therapies-api/internal/domain"
	"github.com/atomikkus/therapies-api/internal/services"
	"github.com/atomikkus/therapies-api/internal/storage"
)

const apiVersion = "1.0.0"

type API struct {
	cfg    config.Config
	files  *storage.FileManager
	ai     *services.Provider
	logger *zap.Logger
}

func NewAPI(cfg config.Config, fm *storage.FileManager, ai *services.Provider, logger *zap.Logger) *API {
	return &API{cfg: cfg, files: fm, ai: ai, logger: logger}
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/", api.handleRoot)
	r.GET("/health", api.handleHealth)
	r.POST("/therapies", func(c *gin.Context) { api.processReport(c, domain.KindTherapy) })
	r.POST("/radiation", func(c *gin.Context) { api.processReport(c, domain.KindRadiation) })
}

type reportResponse struct {
	Success               bool    `json:"success"`
	Message               string  `json:"message"`
	Data                  any     `json:"data"`
	ProcessingTimeSeconds float64 `json:"processingTimeSeconds"`
}

type healthResponse struct {
	Status                      string `json:"status"`
	ExtractionServiceConfigured bool   `json:"extractionServiceConfigured"`
}

func (a *API) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Medical Report Processing API",
		"version":     apiVersion,
		"description": "Process therapy and radiation PDF reports and extract structured data",
		"endpoints": gin.H{
			"health":    "GET /health - Check API health status",
			"therapies": "POST /therapies - Process therapy PDF report (chemotherapy, biological, etc.)",
			"radiation": "POST /radiation - Process radiation therapy PDF report",
		},
		"docs": "/docs",
	})
}

func (a *API) handleHealth(c *gin.Context) {
	configured := a.ai.Configured()

	if configured {
		if _, _, err := a.ai.Clients(); err != nil {
			a.logger.Error("health check failed", zap.Error(err))
			respondDetail(c, http.StatusInternalServerError, fmt.Sprintf("Service unhealthy: %s", err))
			return
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:                      "healthy",
		ExtractionServiceConfigured: configured,
	})
}

// processReport runs the full pipeline for one uploaded report: validate the
// filename, persist the upload to a scratch file, OCR it, extract structured
// fields, attempt schema construction, respond. Cleanup of the scratch file is
// scheduled on every exit path once the file exists, and never blocks the
// response.
func (a *API) processReport(c *gin.Context, kind domain.ReportKind) {
	start := time.Now()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondDetail(c, http.StatusBadRequest, "Only PDF files are supported")
		return
	}

	if fileHeader.Filename == "" || !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		respondDetail(c, http.StatusBadRequest, "Only PDF files are supported")
		return
	}

	upload, err := fileHeader.Open()
	if err != nil {
		a.logger.Error("failed to open upload", zap.Error(err))
		respondDetail(c, http.StatusInternalServerError, "Internal server error: unable to read uploaded file")
		return
	}
	defer upload.Close()

	scratchPath, err := a.files.SaveScratchPDF(upload)
	if err != nil {
		a.logger.Error("failed to save upload", zap.Error(err))
		respondDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	defer a.scheduleCleanup(scratchPath)

	a.logger.Info("processing report",
		zap.String("kind", string(kind)),
		zap.String("filename", fileHeader.Filename),
		zap.Int64("bytes", fileHeader.Size),
	)

	converter, extractor, err := a.ai.Clients()
	if err != nil {
		a.logger.Error("extraction clients unavailable", zap.Error(err))
		respondDetail(c, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %s", err))
		return
	}

	ctx := c.Request.Context()

	markdown, err := converter.ConvertPDF(ctx, scratchPath, false)
	if err != nil {
		a.logger.Error("pdf conversion failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
		respondDetail(c, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %s", err))
		return
	}

	if strings.TrimSpace(markdown) == "" {
		respondDetail(c, http.StatusBadRequest, "Failed to extract text from PDF")
		return
	}

	raw, err := extractor.Extract(ctx, markdown, kind)
	if err != nil {
		a.logger.Error("structured extraction failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
		respondDetail(c, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %s", err))
		return
	}

	if len(raw) == 0 {
		respondDetail(c, http.StatusBadRequest, "Failed to extract structured data from document")
		return
	}

	// Lenient by design: a record that fails schema construction is served as
	// the raw unvalidated mapping rather than failing the request.
	outcome, verr := domain.BuildReport(kind, raw)
	if verr != nil {
		a.logger.Warn("data validation warning", zap.String("filename", fileHeader.Filename), zap.Error(verr))
	}

	elapsed := time.Since(start).Seconds()
	a.logger.Info("successfully processed report",
		zap.String("filename", fileHeader.Filename),
		zap.Bool("validated", outcome.Validated),
		zap.Float64("seconds", elapsed),
	)

	c.JSON(http.StatusOK, reportResponse{
		Success:               true,
		Message:               fmt.Sprintf("Successfully processed %s: %s", kind.Label(), fileHeader.Filename),
		Data:                  outcome.Data,
		ProcessingTimeSeconds: elapsed,
	})
}

// scheduleCleanup removes a scratch file off the request path. It runs via
// defer after the response has been written; failures are logged and ignored.
func (a *API) scheduleCleanup(path string) {
	go func() {
		if err := a.files.Remove(path); err != nil {
			a.logger.Error("failed to clean up scratch file", zap.String("path", path), zap.Error(err))
			return
		}
		a.logger.Info("cleaned up scratch file", zap.String("path", path))
	}()
}

func respondDetail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}
