package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/analysis"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/dto"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/middleware"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/extractor"
)

// AnalysisHandler serves the resume analysis endpoint
type AnalysisHandler struct {
	orchestrator *analysis.Orchestrator
	logger       coreport.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(orchestrator *analysis.Orchestrator, logger coreport.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Analyze handles POST /api/cv/analyze. The request is multipart form data
// with a `file` part holding the resume and one or more `job_links` fields.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrTokenInvalid)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: resume file is required", errs.ErrInvalidRequest))
		return
	}
	if fileHeader.Size > extractor.MaxFileSize {
		middleware.WriteError(c, errs.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: cannot read upload", errs.ErrInvalidRequest))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, extractor.MaxFileSize+1))
	if err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: cannot read upload", errs.ErrInvalidRequest))
		return
	}
	if int64(len(data)) > extractor.MaxFileSize {
		middleware.WriteError(c, errs.ErrFileTooLarge)
		return
	}

	result, err := h.orchestrator.Analyze(c.Request.Context(), analysis.Request{
		UserID: user.ID,
		Upload: svcport.ResumeUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		},
		JobLinks: c.PostFormArray("job_links"),
	})
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AnalysisResponse{
		Analysis:          result.Report,
		RemainingAnalyses: result.Remaining,
	})
}
