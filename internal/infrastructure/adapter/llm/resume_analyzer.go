package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
)

const systemPrompt = "You are an expert in ATS (Applicant Tracking System) resume screening. " +
	"Compare resumes against job descriptions focusing on exact and semantic keyword matches. " +
	"Return ONLY the requested JSON, with no additional text."

const outputSchema = `{
  "extracted_keywords": {"all_keywords": []},
  "keywords": {"present": [], "missing": []},
  "recommendations": [],
  "conclusion": ""
}`

// ResumeAnalyzer implements the resume-vs-jobs comparison through a chat
// completion with a JSON response format
type ResumeAnalyzer struct {
	client *openai.Client
	model  openai.ChatModel
	logger coreport.Logger
}

// NewResumeAnalyzer creates the analyzer with the given API key and model
func NewResumeAnalyzer(apiKey, model string, logger coreport.Logger) *ResumeAnalyzer {
	return &ResumeAnalyzer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModel(model),
		logger: logger,
	}
}

// Analyze sends one completion request and decodes the structured report.
// Non-JSON or schema-incomplete responses fail the analysis; the caller never
// sees a partial report.
func (a *ResumeAnalyzer) Analyze(ctx context.Context, resume *entity.ResumeDocument, jobs []entity.JobDescription) (*entity.AnalysisReport, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(a.buildPrompt(resume, jobs)),
		}),
		Model:       openai.F(a.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(4000),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			},
		),
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		a.logger.Error("Completion request failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("%w: %v", errs.ErrLLMResponse, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", errs.ErrLLMResponse)
	}

	content := completion.Choices[0].Message.Content

	var report entity.AnalysisReport
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		a.logger.Error("Completion is not valid JSON", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("%w: malformed JSON: %v", errs.ErrLLMResponse, err)
	}

	a.logger.Debug("Analysis report decoded", map[string]any{
		"keywords": len(report.ExtractedKeywords.AllKeywords),
		"present":  len(report.Keywords.Present),
		"missing":  len(report.Keywords.Missing),
	})
	return &report, nil
}

// buildPrompt lays out the analysis steps, the documents and the required
// output shape in one user message
func (a *ResumeAnalyzer) buildPrompt(resume *entity.ResumeDocument, jobs []entity.JobDescription) string {
	var builder strings.Builder

	builder.WriteString("Follow these steps rigorously:\n\n")
	builder.WriteString("1. Extract the key terms of each job description: technical skills, ")
	builder.WriteString("responsibilities, mandatory requirements and contextualized soft skills. ")
	builder.WriteString("Normalize terms (e.g. \"Python 3.11\" -> \"Python\", \"JS\" -> \"JavaScript\").\n")
	builder.WriteString("2. Cross-reference the resume against those terms, recognizing synonyms ")
	builder.WriteString("and quantified achievements.\n")
	builder.WriteString("3. Classify every extracted keyword as present in or missing from the resume.\n")
	builder.WriteString("4. For each relevant missing keyword, recommend where and how to add it.\n")
	builder.WriteString("5. Close with a short personalized conclusion based on the match level.\n\n")

	builder.WriteString("RESUME:\n")
	builder.WriteString(resume.Text)
	builder.WriteString("\n\nJOB DESCRIPTIONS:\n")
	for i, job := range jobs {
		fmt.Fprintf(&builder, "--- Job %d (%s) ---\n%s\n", i+1, job.URL, job.Text)
	}

	builder.WriteString("\nOutput format (JSON):\n")
	builder.WriteString(outputSchema)

	return builder.String()
}
