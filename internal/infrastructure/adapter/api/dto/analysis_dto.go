package dto

import (
	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// AnalysisResponse is a completed resume analysis together with the
// post-debit credit count
type AnalysisResponse struct {
	Analysis          *entity.AnalysisReport `json:"analysis"`
	RemainingAnalyses int                    `json:"remainingAnalyses"`
}
