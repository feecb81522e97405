package service

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// ResumeAnalyzer compares a resume against job descriptions through the
// completion API and returns a structured report
type ResumeAnalyzer interface {
	// Analyze returns ErrLLMResponse when the provider response is not valid
	// JSON or does not satisfy the report schema
	Analyze(ctx context.Context, resume *entity.ResumeDocument, jobs []entity.JobDescription) (*entity.AnalysisReport, error)
}
