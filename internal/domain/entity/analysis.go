package entity

import (
	"fmt"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
)

// AnalysisReport is the canonical result of one resume-versus-jobs analysis.
// This is the authoritative response schema; the completion API must produce
// every field and at least one extracted keyword for the analysis to count.
type AnalysisReport struct {
	ExtractedKeywords ExtractedKeywords `json:"extracted_keywords"`
	Keywords          KeywordMatch      `json:"keywords"`
	Recommendations   []string          `json:"recommendations"`
	Conclusion        string            `json:"conclusion"`
}

// ExtractedKeywords holds every keyword pulled from the job descriptions
type ExtractedKeywords struct {
	AllKeywords []string `json:"all_keywords"`
}

// KeywordMatch splits the extracted keywords into those found in the resume
// and those missing from it
type KeywordMatch struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

// Validate checks that the report satisfies the required-field contract
func (r *AnalysisReport) Validate() error {
	if len(r.ExtractedKeywords.AllKeywords) == 0 {
		return fmt.Errorf("%w: no keywords extracted", errs.ErrLLMResponse)
	}
	if r.Keywords.Present == nil || r.Keywords.Missing == nil {
		return fmt.Errorf("%w: keyword match lists missing", errs.ErrLLMResponse)
	}
	if r.Recommendations == nil {
		return fmt.Errorf("%w: recommendations missing", errs.ErrLLMResponse)
	}
	if r.Conclusion == "" {
		return fmt.Errorf("%w: conclusion missing", errs.ErrLLMResponse)
	}
	return nil
}

// ResumeDocument is the extracted plain text of an uploaded resume
type ResumeDocument struct {
	Filename string
	Text     string
}

// JobDescription is the fetched plain text of one job posting
type JobDescription struct {
	URL  string
	Text string
}
